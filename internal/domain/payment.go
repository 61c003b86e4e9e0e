package domain

import "time"

type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentRecord mirrors one gateway payment. When ProviderPaymentID is
// set it is the idempotent upsert key: replaying the same webhook any
// number of times converges on a single record.
type PaymentRecord struct {
	ID                int64
	OrderID           string
	RestaurantID      string
	Provider          string
	ProviderPaymentID string
	Amount            float64
	Currency          string
	Status            PaymentStatus
	Raw               []byte // opaque copy of the last gateway payload
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderPaymentStatus string

const (
	OrderUnpaid OrderPaymentStatus = "unpaid"
	OrderPaid   OrderPaymentStatus = "paid"
	OrderFailed OrderPaymentStatus = "failed"
)

// Order is owned by the order subsystem; this core only reads it by id
// and moves PaymentStatus toward paid.
type Order struct {
	ID            string
	RestaurantID  string
	CustomerEmail string
	Total         float64
	PaymentStatus OrderPaymentStatus
}

type CreatePaymentRequest struct {
	OrderID      string  `json:"orderId"`
	RestaurantID string  `json:"restaurantId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

func (r *CreatePaymentRequest) Normalize() {
	if r.Currency == "" {
		r.Currency = "INR"
	}
}

func (r *CreatePaymentRequest) Validate() error {
	if r.OrderID == "" || r.RestaurantID == "" {
		return ErrMissingFields
	}
	return nil
}
