package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
)

// PasscodeEngine issues and checks one-time email-verification codes.
type PasscodeEngine struct {
	codes repo.PasscodeStore
	ttl   time.Duration
	now   func() time.Time
}

// NewPasscodeEngine builds an engine over the given store. ttl is how long
// a code stays valid after issuance.
func NewPasscodeEngine(codes repo.PasscodeStore, ttl time.Duration) *PasscodeEngine {
	return &PasscodeEngine{codes: codes, ttl: ttl, now: time.Now}
}

// Issue replaces any outstanding codes for the email with a fresh one and
// returns the code for delivery.
func (e *PasscodeEngine) Issue(ctx context.Context, email string) (string, error) {
	code, err := generatePasscode()
	if err != nil {
		return "", err
	}

	record := &models.Passcode{
		Email:       models.NormalizeEmail(email),
		Code:        code,
		Attempts:    0,
		MaxAttempts: models.PasscodeMaxAttempts,
	}

	if err := e.codes.Replace(ctx, record); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks a submitted code against the newest authoritative record
// for the email. Wrong guesses burn an attempt; the attempt counter is
// incremented through the store so concurrent guesses serialize there.
func (e *PasscodeEngine) Verify(ctx context.Context, email, submitted string) error {
	now := e.now()
	cutoff := now.Add(-e.ttl)

	record, err := e.codes.FindActive(ctx, email, cutoff)
	if err != nil {
		if errors.Is(err, repo.ErrPasscodeNotFound) {
			return ErrCodeInvalidOrExpired
		}
		return err
	}

	// The store filters on created_at too, but physical deletion may lag;
	// never trust a record past its lifetime.
	if record.ExpiredAt(now, e.ttl) {
		return ErrCodeInvalidOrExpired
	}

	if record.Code != submitted {
		attempts, err := e.codes.IncrementAttempts(ctx, record.ID)
		if err != nil {
			return err
		}
		if attempts >= record.MaxAttempts {
			return ErrCodeAttemptsExceeded
		}
		return ErrCodeMismatch
	}

	ok, err := e.codes.MarkVerified(ctx, record.ID)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race: the record was spent between lookup and update.
		return ErrCodeInvalidOrExpired
	}
	return nil
}

// generatePasscode draws a uniform code from 1000-9999. The leading-zero
// space 0000-0999 is intentionally excluded to match the codes users have
// always received; widening it would be a behavior change.
func generatePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}
