package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenchain/internal/models"
)

var ErrPasscodeNotFound = errors.New("passcode not found")

// PasscodeStore persists one-time verification codes. Attempt accounting
// goes through conditional updates so concurrent guesses serialize at the
// storage layer.
type PasscodeStore interface {
	// Replace deletes every record for the passcode's email and inserts the
	// new one in a single transaction, keeping exactly one authoritative
	// code per address.
	Replace(ctx context.Context, code *models.Passcode) error
	// FindActive returns the newest unverified, unexhausted record for the
	// email created after cutoff.
	FindActive(ctx context.Context, email string, cutoff time.Time) (*models.Passcode, error)
	// IncrementAttempts bumps the attempt counter if it is still below the
	// limit and returns the resulting count.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// MarkVerified flips the record to verified if it is still unverified
	// and unexhausted; false means the record was already spent.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByEmail(ctx context.Context, email string) error
	// DeleteExpired removes records created before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormPasscodeStore is the Postgres-backed PasscodeStore.
type GormPasscodeStore struct{ db *gorm.DB }

// NewGormPasscodeStore wraps a gorm connection.
func NewGormPasscodeStore(db *gorm.DB) *GormPasscodeStore { return &GormPasscodeStore{db: db} }

func (s *GormPasscodeStore) Replace(ctx context.Context, code *models.Passcode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", code.Email).Delete(&models.Passcode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (s *GormPasscodeStore) FindActive(ctx context.Context, email string, cutoff time.Time) (*models.Passcode, error) {
	var code models.Passcode
	err := s.db.WithContext(ctx).
		Where("email = ? AND verified = ? AND attempts < max_attempts AND created_at > ?",
			models.NormalizeEmail(email), false, cutoff).
		Order("created_at desc").
		First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPasscodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (s *GormPasscodeStore) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	res := s.db.WithContext(ctx).Model(&models.Passcode{}).
		Where("id = ? AND attempts < max_attempts", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Counter already at the limit; report it as exhausted.
		return models.PasscodeMaxAttempts, nil
	}

	var code models.Passcode
	if err := s.db.WithContext(ctx).Select("attempts").First(&code, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return code.Attempts, nil
}

func (s *GormPasscodeStore) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Passcode{}).
		Where("id = ? AND verified = ? AND attempts < max_attempts", id, false).
		Update("verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormPasscodeStore) DeleteByEmail(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Delete(&models.Passcode{}).Error
}

func (s *GormPasscodeStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Passcode{})
	return res.RowsAffected, res.Error
}
