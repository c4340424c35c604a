package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the deliberately slow work factor used for all stored
// credentials.
const bcryptCost = 12

// HashPassword returns a bcrypt hash of the provided password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hashed password with its possible
// plaintext equivalent. bcrypt's comparison is constant-time.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
