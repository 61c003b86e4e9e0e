package domain

import (
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OtpChallenge is the one live verification challenge for a phone number.
// New issuances always store a bcrypt hash in CodeHash; Code is only ever
// populated on legacy records that predate hashing. Exactly one of the two
// is set.
type OtpChallenge struct {
	Phone     string
	Code      string // legacy plaintext variant
	CodeHash  string // bcrypt hash variant
	ExpiresAt time.Time
	Attempts  int
}

func (c *OtpChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// MatchesCode compares the supplied code against the stored secret,
// dispatching on which variant the record carries.
func (c *OtpChallenge) MatchesCode(code string) bool {
	if c.Code != "" {
		return subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1
	}
	if c.CodeHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) == nil
}

type OtpIssueRequest struct {
	Phone  string `json:"phone"`
	Digits int    `json:"digits,omitempty"`
}

func (r *OtpIssueRequest) Normalize() {
	r.Phone = normalizePhone(r.Phone)
	if r.Digits == 0 {
		r.Digits = 6
	}
}

func (r *OtpIssueRequest) Validate() error {
	if r.Phone == "" {
		return ErrMissingFields
	}
	if r.Digits < 4 || r.Digits > 10 {
		return ErrMissingFields
	}
	return nil
}

type OtpVerifyRequest struct {
	Phone string `json:"phone"`
	Otp   string `json:"otp"`
}

func (r *OtpVerifyRequest) Normalize() {
	r.Phone = normalizePhone(r.Phone)
}

func (r *OtpVerifyRequest) Validate() error {
	if r.Phone == "" || r.Otp == "" {
		return ErrMissingFields
	}
	return nil
}
