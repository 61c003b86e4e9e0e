package notify

import "context"

// Result reports how a message left the system. Fallback means no real
// delivery channel was configured and the message was only logged
// server-side; callers must never surface the message content when this
// is set.
type Result struct {
	Delivered bool
	Fallback  bool
}

// Sender delivers a short text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) (Result, error)
}

// Mailer sends payment receipt emails. Receipt delivery is best-effort
// and never affects webhook acknowledgment.
type Mailer interface {
	SendPaymentReceipt(ctx context.Context, toEmail, orderID string, amount float64, currency string) error
}
