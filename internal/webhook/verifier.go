package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/pkg/logger"
)

// Verifier authenticates inbound gateway callbacks with an HMAC-SHA256
// over the exact raw request bytes. The body must reach Authenticate
// untouched by any parsing step; re-serializing a parsed structure can
// change byte-for-byte content and break verification.
type Verifier struct {
	secret        string
	allowUnsigned bool
}

func NewVerifier(secret string, allowUnsigned bool) *Verifier {
	return &Verifier{secret: secret, allowUnsigned: allowUnsigned}
}

func (v *Verifier) Authenticate(ctx context.Context, raw []byte, signature string) error {
	if v.secret == "" {
		if !v.allowUnsigned {
			return domain.ErrMissingSignature
		}
		logger.WarnContext(ctx, "Accepting unsigned payment webhook: no webhook secret configured (insecure, non-production only)")
		return nil
	}

	if signature == "" {
		logger.InfoContext(ctx, "Payment webhook rejected: missing signature header")
		return domain.ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(raw)
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(signature)) {
		logger.InfoContext(ctx, "Payment webhook rejected: invalid signature")
		return domain.ErrInvalidSignature
	}

	return nil
}
