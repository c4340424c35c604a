package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/utils"
)

// ResetEngine manages single-use password-reset tokens bound to a user
// record.
type ResetEngine struct {
	users repo.UserStore
	ttl   time.Duration
	now   func() time.Time
}

// NewResetEngine builds an engine over the given store. ttl is how long an
// issued token stays redeemable.
func NewResetEngine(users repo.UserStore, ttl time.Duration) *ResetEngine {
	return &ResetEngine{users: users, ttl: ttl, now: time.Now}
}

// Issue stores a fresh reset token on the user record and returns it for
// inclusion in a reset URL. Reissuing overwrites any outstanding token, so
// at most one is ever redeemable per account.
func (e *ResetEngine) Issue(ctx context.Context, user *models.User) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	if err := e.users.SetResetToken(ctx, user.ID, token, e.now().Add(e.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// Consume redeems a token: the matching user's password is replaced and the
// token cleared in one conditional update, so a token spends exactly once
// even under concurrent requests. The error does not distinguish unknown
// from expired tokens.
func (e *ResetEngine) Consume(ctx context.Context, token, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	ok, err := e.users.ConsumeResetToken(ctx, token, hash, e.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetTokenInvalid
	}
	return nil
}
