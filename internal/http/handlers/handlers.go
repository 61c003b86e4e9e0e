package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/http/response"
	"github.com/restom/restom-backend/internal/ratelimit"
	"github.com/restom/restom-backend/internal/service"
	"github.com/restom/restom-backend/internal/webhook"
	"github.com/restom/restom-backend/pkg/config"
)

type Handlers struct {
	otpService        service.OtpService
	credentialService service.CredentialService
	reconcileService  service.ReconcileService
	verifier          *webhook.Verifier
	limiter           ratelimit.Limiter
	config            *config.Config
}

func New(
	otpService service.OtpService,
	credentialService service.CredentialService,
	reconcileService service.ReconcileService,
	verifier *webhook.Verifier,
	limiter ratelimit.Limiter,
	config *config.Config,
) *Handlers {
	return &Handlers{
		otpService:        otpService,
		credentialService: credentialService,
		reconcileService:  reconcileService,
		verifier:          verifier,
		limiter:           limiter,
		config:            config,
	}
}

// writeDomainError maps sentinel errors onto the documented status codes
// and stable error codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		response.WriteError(w, http.StatusBadRequest, domain.ErrMissingFields.Error(), response.CodeMissingFields)
	case errors.Is(err, domain.ErrNoChallenge):
		response.WriteError(w, http.StatusBadRequest, domain.ErrNoChallenge.Error(), response.CodeNoChallenge)
	case errors.Is(err, domain.ErrTooManyAttempts):
		response.WriteError(w, http.StatusTooManyRequests, domain.ErrTooManyAttempts.Error(), response.CodeTooManyAttempts)
	case errors.Is(err, domain.ErrOtpExpired):
		response.WriteError(w, http.StatusBadRequest, domain.ErrOtpExpired.Error(), response.CodeOtpExpired)
	case errors.Is(err, domain.ErrWrongCode):
		response.WriteError(w, http.StatusBadRequest, domain.ErrWrongCode.Error(), response.CodeWrongOtp)
	case errors.Is(err, domain.ErrNotificationFailed):
		response.WriteError(w, http.StatusInternalServerError, domain.ErrNotificationFailed.Error(), response.CodeNotificationFailed)
	case errors.Is(err, domain.ErrAlreadyExists):
		response.WriteError(w, http.StatusBadRequest, domain.ErrAlreadyExists.Error(), response.CodeAlreadyExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.WriteError(w, http.StatusBadRequest, domain.ErrInvalidCredentials.Error(), response.CodeInvalidCredentials)
	case errors.Is(err, domain.ErrMissingSignature):
		response.WriteError(w, http.StatusBadRequest, domain.ErrMissingSignature.Error(), response.CodeMissingSignature)
	case errors.Is(err, domain.ErrInvalidSignature):
		response.WriteError(w, http.StatusBadRequest, domain.ErrInvalidSignature.Error(), response.CodeInvalidSignature)
	default:
		response.InternalError(w, "server error")
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rateLimitKey keys the OTP sliding window by phone when the request
// carries one, otherwise by client network address.
func rateLimitKey(prefix, phone string, r *http.Request) string {
	if phone != "" {
		return prefix + ":phone:" + phone
	}
	return prefix + ":ip:" + getClientIP(r)
}
