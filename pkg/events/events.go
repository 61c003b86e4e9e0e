package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/restom/restom-backend/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects published by this service. All publishes are best-effort and
// never fail the operation that triggered them.
const (
	OtpIssued   = "otp.issued"
	OtpVerified = "otp.verified"

	UserRegistered = "user.registered"

	PaymentCaptured = "payment.captured"
	PaymentFailed   = "payment.failed"
)

type OtpIssuedEvent struct {
	Phone    string    `json:"phone"`
	Digits   int       `json:"digits"`
	IssuedAt time.Time `json:"issued_at"`
}

type OtpVerifiedEvent struct {
	Phone      string    `json:"phone"`
	VerifiedAt time.Time `json:"verified_at"`
}

type UserRegisteredEvent struct {
	AccountID int64     `json:"account_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentCapturedEvent struct {
	PaymentID         int64   `json:"payment_id"`
	OrderID           string  `json:"order_id"`
	ProviderPaymentID string  `json:"provider_payment_id"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

type PaymentFailedEvent struct {
	ProviderPaymentID string `json:"provider_payment_id"`
	OrderID           string `json:"order_id"`
	Reason            string `json:"reason"`
}
