package domain

import "errors"

// Sentinel errors for the credential and payment trust boundary. Handlers
// map these onto HTTP status codes and stable error codes with errors.Is.
var (
	// OTP verification
	ErrNoChallenge     = errors.New("no OTP requested for this number")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrOtpExpired      = errors.New("OTP expired")
	ErrWrongCode       = errors.New("wrong OTP")

	// OTP issuance
	ErrNotificationFailed = errors.New("failed to send OTP")

	// Credential issuance
	ErrMissingFields      = errors.New("missing fields")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Webhook authentication
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
)
