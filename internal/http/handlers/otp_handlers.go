package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/http/response"
	"github.com/restom/restom-backend/pkg/logger"
)

// SendOtp issues a fresh OTP challenge and dispatches the code by SMS.
func (h *Handlers) SendOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.OtpIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()

	if !h.allow(r, "otp_issue", req.Phone, h.config.Otp.IssuesPerMinute) {
		response.RateLimit(w, "Too many OTP requests. Try again later.")
		return
	}

	if err := h.otpService.Issue(r.Context(), &req); err != nil {
		writeDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OTP sent",
	})
}

// VerifyOtp checks a submitted code and consumes the challenge.
func (h *Handlers) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.OtpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()

	if !h.allow(r, "otp_verify", req.Phone, h.config.Otp.VerifiesPerMinute) {
		response.RateLimit(w, "Too many verification requests. Try again later.")
		return
	}

	phone, err := h.otpService.Verify(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"phone":   phone,
	})
}

// CleanupOtps removes expired challenges. Invoked by an external
// scheduler through the admin surface.
func (h *Handlers) CleanupOtps(w http.ResponseWriter, r *http.Request) {
	removed, err := h.otpService.Cleanup(r.Context())
	if err != nil {
		response.InternalError(w, "cleanup failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
	})
}

func (h *Handlers) allow(r *http.Request, prefix, phone string, limit int) bool {
	allowed, err := h.limiter.Allow(r.Context(), rateLimitKey(prefix, phone, r), limit, time.Minute)
	if err != nil {
		logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
		return true
	}
	return allowed
}
