package handlers

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/example/greenchain/internal/models"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// validPassword enforces the signup password policy: at least 8 characters
// with an upper-case letter, a lower-case letter, a digit and a special
// character.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

func validCompanyName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 2 && n <= 100
}

// validOTP accepts exactly four ASCII digits.
func validOTP(otp string) bool {
	if len(otp) != 4 {
		return false
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resetTokenLength is the hex length of issued reset tokens.
const resetTokenLength = 64

func validateSignup(req *signupRequest) []models.FieldError {
	var errs []models.FieldError

	if !validEmail(req.Email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if !validPassword(req.Password) {
		errs = append(errs, models.FieldError{
			Field:   "password",
			Message: "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a number, and a special character",
		})
	}
	if !validCompanyName(req.CompanyName) {
		errs = append(errs, models.FieldError{Field: "companyName", Message: "Company name must be between 2 and 100 characters"})
	}
	if !req.Role.Valid() {
		errs = append(errs, models.FieldError{Field: "role", Message: "Invalid role selected"})
	}

	switch req.Role {
	case models.RoleProducer:
		if strings.TrimSpace(req.FacilityDetails.FacilityName) == "" {
			errs = append(errs, models.FieldError{Field: "facilityDetails.facilityName", Message: "Facility name is required for producers"})
		}
	case models.RoleVerifier:
		if strings.TrimSpace(req.CertificationBody.BodyName) == "" {
			errs = append(errs, models.FieldError{Field: "certificationBody.bodyName", Message: "Certification body name is required for verifiers"})
		}
	case models.RoleBuyer:
		if !models.ValidIndustryType(req.IndustryType) {
			errs = append(errs, models.FieldError{Field: "industryType", Message: "Industry type is required for buyers"})
		}
	}

	return errs
}
