package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/notify"
	"github.com/restom/restom-backend/internal/repository"
	"github.com/restom/restom-backend/pkg/config"
	"github.com/restom/restom-backend/pkg/events"
	"github.com/restom/restom-backend/pkg/logger"
)

type OtpService interface {
	// Issue generates and stores a fresh challenge for the phone,
	// replacing any prior one, and dispatches the code out of band.
	Issue(ctx context.Context, req *domain.OtpIssueRequest) error
	// Verify checks the supplied code and consumes the challenge on
	// success. Returns the verified phone number.
	Verify(ctx context.Context, req *domain.OtpVerifyRequest) (string, error)
	// Cleanup removes already-expired challenges and returns how many
	// were deleted. Safe to run concurrently with issue/verify.
	Cleanup(ctx context.Context) (int64, error)
}

type otpService struct {
	otpRepo  repository.OtpRepository
	sender   notify.Sender
	eventBus events.Publisher
	config   *config.Config
}

func NewOtpService(
	otpRepo repository.OtpRepository,
	sender notify.Sender,
	eventBus events.Publisher,
	config *config.Config,
) OtpService {
	return &otpService{
		otpRepo:  otpRepo,
		sender:   sender,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *otpService) Issue(ctx context.Context, req *domain.OtpIssueRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	code, err := generateNumericCode(req.Digits)
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash OTP: %w", err)
	}

	expiresAt := time.Now().Add(s.config.Otp.Expiry)
	if err := s.otpRepo.Replace(ctx, req.Phone, string(codeHash), expiresAt); err != nil {
		return fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	message := fmt.Sprintf("Your verification code is %s. It will expire in %d seconds.",
		code, int(s.config.Otp.Expiry.Seconds()))

	result, err := s.sender.Send(ctx, req.Phone, message)
	if err != nil {
		// The stored challenge stays valid so the client can retry
		// verification or re-issue.
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	if result.Fallback {
		// The code was logged server-side by the sender; it must never
		// be returned to the caller on this path.
		logger.InfoContext(ctx, "OTP issued in dev fallback mode", "phone", req.Phone)
	}

	if err := s.eventBus.Publish(ctx, events.OtpIssued, events.OtpIssuedEvent{
		Phone:    req.Phone,
		Digits:   req.Digits,
		IssuedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish otp.issued event", "error", err)
	}

	return nil
}

func (s *otpService) Verify(ctx context.Context, req *domain.OtpVerifyRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	challenge, err := s.otpRepo.Find(ctx, req.Phone)
	if err != nil {
		return "", fmt.Errorf("failed to load OTP challenge: %w", err)
	}
	if challenge == nil {
		return "", domain.ErrNoChallenge
	}

	// Exhaustion is checked before anything else and is permanent until
	// a fresh Issue replaces the record.
	if challenge.Attempts >= s.config.Otp.AttemptLimit {
		return "", domain.ErrTooManyAttempts
	}

	if challenge.Expired(time.Now()) {
		return "", domain.ErrOtpExpired
	}

	if !challenge.MatchesCode(req.Otp) {
		// A guess only counts once the increment is durable; if the store
		// cannot record it, fail the request instead of answering
		// WrongCode with the counter unchanged.
		attempts, incErr := s.otpRepo.IncrementAttempts(ctx, req.Phone)
		if incErr != nil {
			return "", fmt.Errorf("failed to record OTP attempt: %w", incErr)
		}
		if attempts >= s.config.Otp.AttemptLimit {
			return "", domain.ErrTooManyAttempts
		}
		return "", domain.ErrWrongCode
	}

	// Single use: delete on success. If a concurrent verify consumed the
	// record first, this call lost the race and there is no challenge
	// left for it.
	deleted, err := s.otpRepo.Delete(ctx, req.Phone)
	if err != nil {
		return "", fmt.Errorf("failed to consume OTP challenge: %w", err)
	}
	if !deleted {
		return "", domain.ErrNoChallenge
	}

	if err := s.eventBus.Publish(ctx, events.OtpVerified, events.OtpVerifiedEvent{
		Phone:      req.Phone,
		VerifiedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish otp.verified event", "error", err)
	}

	return req.Phone, nil
}

func (s *otpService) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.otpRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired OTPs: %w", err)
	}
	if removed > 0 {
		logger.InfoContext(ctx, "Removed expired OTP challenges", "count", removed)
	}
	return removed, nil
}

// generateNumericCode returns a uniformly random numeric code of the
// given length, left-padded with zeros, from a cryptographically secure
// source.
func generateNumericCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
