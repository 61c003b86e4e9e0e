package notify

import (
	"context"

	"github.com/restom/restom-backend/pkg/logger"
)

// DevSender is the fallback used when no SMS channel is configured. The
// message is logged server-side only; it is never handed back to the
// caller, so codes cannot be read through this path.
type DevSender struct{}

func NewDevSender() *DevSender {
	return &DevSender{}
}

func (d *DevSender) Send(ctx context.Context, phone, message string) (Result, error) {
	logger.InfoContext(ctx, "[DEV SMS] delivery channel not configured, logging only",
		"phone", phone,
		"message", message,
	)
	return Result{Delivered: false, Fallback: true}, nil
}
