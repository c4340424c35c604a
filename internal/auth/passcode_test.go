package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
)

const testEmail = "producer@example.com"

func newPasscodeFixture(t *testing.T) (*PasscodeEngine, *repo.MemoryPasscodeStore) {
	store := repo.NewMemoryPasscodeStore()
	engine := NewPasscodeEngine(store, 10*time.Minute)
	return engine, store
}

// wrongCode returns a 4-digit code different from the given one.
func wrongCode(code string) string {
	if code == "9999" {
		return "1000"
	}
	n, _ := strconv.Atoi(code)
	return strconv.Itoa(n + 1)
}

func TestIssueCreatesFreshRecord(t *testing.T) {
	engine, store := newPasscodeFixture(t)

	code, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)
	require.Len(t, code, 4)

	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1000)
	assert.LessOrEqual(t, n, 9999)

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, testEmail, records[0].Email)
	assert.Equal(t, 0, records[0].Attempts)
	assert.Equal(t, models.PasscodeMaxAttempts, records[0].MaxAttempts)
	assert.False(t, records[0].Verified)
}

func TestIssueReplacesPriorCodes(t *testing.T) {
	engine, store := newPasscodeFixture(t)

	first, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)
	_, err = engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)

	require.Len(t, store.All(), 1)

	// The first code is no longer authoritative even if it happens to
	// differ from the new one.
	if second := store.All()[0].Code; second != first {
		assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, first), ErrCodeMismatch)
	}
}

func TestVerifyCorrectCode(t *testing.T) {
	engine, store := newPasscodeFixture(t)

	code, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)

	require.NoError(t, engine.Verify(context.Background(), testEmail, code))
	assert.True(t, store.All()[0].Verified)

	// A verified record is never matched again.
	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, code), ErrCodeInvalidOrExpired)
}

func TestVerifyWrongCodeBurnsAttempt(t *testing.T) {
	engine, store := newPasscodeFixture(t)

	code, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)

	err = engine.Verify(context.Background(), testEmail, wrongCode(code))
	assert.ErrorIs(t, err, ErrCodeMismatch)
	assert.Equal(t, 1, store.All()[0].Attempts)
}

func TestVerifyAttemptsExceeded(t *testing.T) {
	engine, _ := newPasscodeFixture(t)

	code, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)
	bad := wrongCode(code)

	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, bad), ErrCodeMismatch)
	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, bad), ErrCodeMismatch)
	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, bad), ErrCodeAttemptsExceeded)

	// Even the right code fails once the record is exhausted.
	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, code), ErrCodeInvalidOrExpired)
}

func TestVerifyExpiredCode(t *testing.T) {
	engine, _ := newPasscodeFixture(t)

	code, err := engine.Issue(context.Background(), testEmail)
	require.NoError(t, err)

	issued := time.Now()
	engine.now = func() time.Time { return issued.Add(11 * time.Minute) }

	assert.ErrorIs(t, engine.Verify(context.Background(), testEmail, code), ErrCodeInvalidOrExpired)
}

func TestVerifyUnknownEmail(t *testing.T) {
	engine, _ := newPasscodeFixture(t)

	err := engine.Verify(context.Background(), "nobody@example.com", "1234")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestGeneratePasscodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generatePasscode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1000)
		require.LessOrEqual(t, n, 9999)
	}
}
