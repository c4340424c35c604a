package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/greenchain/internal/models"
)

// In-memory store implementations backing the test suite. They mirror the
// conditional-update semantics of the GORM stores, including the uniqueness
// guard on email.

// MemoryUserStore is a mutex-guarded UserStore.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

// NewMemoryUserStore returns an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	applyUserFields(user, fields)
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for id, user := range s.users {
		if user.Email == email {
			delete(s.users, id)
		}
	}
	return nil
}

func (s *MemoryUserStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ResetToken != nil && *user.ResetToken == token &&
			user.ResetTokenExpiry != nil && user.ResetTokenExpiry.After(now) {
			user.PasswordHash = newHash
			user.ResetToken = nil
			user.ResetTokenExpiry = nil
			user.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func applyUserFields(user *models.User, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "is_email_verified":
			user.IsEmailVerified = value.(bool)
		case "is_active":
			user.IsActive = value.(bool)
		case "last_login":
			t := value.(time.Time)
			user.LastLogin = &t
		case "company_name":
			user.CompanyName = value.(string)
		case "industry_type":
			user.IndustryType = value.(string)
		case "facility_facility_name":
			user.FacilityDetails.FacilityName = value.(string)
		case "facility_location":
			user.FacilityDetails.Location = value.(string)
		case "facility_capacity":
			user.FacilityDetails.Capacity = value.(float64)
		case "facility_technology":
			user.FacilityDetails.Technology = value.(string)
		case "certification_body_name":
			user.CertificationBody.BodyName = value.(string)
		case "certification_accreditation_number":
			user.CertificationBody.AccreditationNumber = value.(string)
		case "certification_scope":
			user.CertificationBody.Scope = value.(string)
		}
	}
}

// MemoryPasscodeStore is a mutex-guarded PasscodeStore.
type MemoryPasscodeStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*models.Passcode
}

// NewMemoryPasscodeStore returns an empty in-memory passcode store.
func NewMemoryPasscodeStore() *MemoryPasscodeStore {
	return &MemoryPasscodeStore{codes: make(map[uuid.UUID]*models.Passcode)}
}

func (s *MemoryPasscodeStore) Replace(ctx context.Context, code *models.Passcode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.codes {
		if existing.Email == code.Email {
			delete(s.codes, id)
		}
	}

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.UpdatedAt = code.CreatedAt

	stored := *code
	s.codes[code.ID] = &stored
	return nil
}

func (s *MemoryPasscodeStore) FindActive(ctx context.Context, email string, cutoff time.Time) (*models.Passcode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	var newest *models.Passcode
	for _, code := range s.codes {
		if code.Email != email || code.Verified || code.Attempts >= code.MaxAttempts {
			continue
		}
		if !code.CreatedAt.After(cutoff) {
			continue
		}
		if newest == nil || code.CreatedAt.After(newest.CreatedAt) {
			newest = code
		}
	}
	if newest == nil {
		return nil, ErrPasscodeNotFound
	}
	copied := *newest
	return &copied, nil
}

func (s *MemoryPasscodeStore) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[id]
	if !ok || code.Attempts >= code.MaxAttempts {
		return models.PasscodeMaxAttempts, nil
	}
	code.Attempts++
	return code.Attempts, nil
}

func (s *MemoryPasscodeStore) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[id]
	if !ok || code.Verified || code.Attempts >= code.MaxAttempts {
		return false, nil
	}
	code.Verified = true
	return true, nil
}

func (s *MemoryPasscodeStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for id, code := range s.codes {
		if code.Email == email {
			delete(s.codes, id)
		}
	}
	return nil
}

func (s *MemoryPasscodeStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, code := range s.codes {
		if code.CreatedAt.Before(cutoff) {
			delete(s.codes, id)
			removed++
		}
	}
	return removed, nil
}

// All returns a snapshot of the stored passcodes, newest first not
// guaranteed. Test helper.
func (s *MemoryPasscodeStore) All() []models.Passcode {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Passcode, 0, len(s.codes))
	for _, code := range s.codes {
		out = append(out, *code)
	}
	return out
}
