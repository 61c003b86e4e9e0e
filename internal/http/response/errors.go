package response

import (
	"encoding/json"
	"net/http"

	"github.com/restom/restom-backend/pkg/logger"
)

// ErrorResponse is the JSON error envelope. Code is stable and machine
// distinguishable; Error is for humans.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Stable error codes.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeNoChallenge        = "NO_CHALLENGE"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeOtpExpired         = "OTP_EXPIRED"
	CodeWrongOtp           = "WRONG_OTP"
	CodeNotificationFailed = "NOTIFICATION_FAILED"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMissingSignature   = "MISSING_SIGNATURE"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}
