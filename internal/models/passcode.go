package models

import "time"

// PasscodeMaxAttempts is the number of wrong guesses allowed per code.
const PasscodeMaxAttempts = 3

// Passcode is a one-time email-verification code. Multiple historical
// records may exist per email; only the newest unverified, unexhausted,
// unexpired one is authoritative.
type Passcode struct {
	BaseModel
	Email       string `gorm:"index" json:"email"`
	Code        string `json:"-"`
	Verified    bool   `json:"verified"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
}

// ExpiredAt reports whether the record is past its lifetime at the given
// instant. Expiry is anchored to creation, independent of attempts left.
func (p *Passcode) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.CreatedAt) > ttl
}
