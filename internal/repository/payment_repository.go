package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restom/restom-backend/internal/domain"
)

type PaymentRepository interface {
	// UpsertCaptured creates or updates the record keyed by the
	// provider's payment id in a single conditional statement, so
	// concurrent duplicate deliveries converge on one record. Amount,
	// currency, status and the raw payload are overwritten on replay;
	// the order reference from the first delivery is kept.
	UpsertCaptured(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error)
	// Create inserts a record with no dedupe key. Callers accept that
	// duplicate deliveries without a provider id create duplicates.
	Create(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error)
	// MarkFailed flips an existing record to failed and stores the
	// payload that reported the failure.
	MarkFailed(ctx context.Context, providerPaymentID string, raw []byte) (bool, error)
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.PaymentRecord, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) UpsertCaptured(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	const q = `
		INSERT INTO payments (order_id, restaurant_id, provider, provider_payment_id, amount, currency, status, raw)
		VALUES ($1, $2, $3, $4, $5, $6, 'captured', $7)
		ON CONFLICT (provider_payment_id) DO UPDATE SET
			amount = $5,
			currency = $6,
			status = 'captured',
			raw = $7,
			updated_at = now()
		RETURNING id, COALESCE(order_id, ''), created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := *rec
	out.Status = domain.PaymentCaptured
	err := r.pool.QueryRow(ctx, q,
		nullable(rec.OrderID), nullable(rec.RestaurantID), rec.Provider,
		rec.ProviderPaymentID, rec.Amount, rec.Currency, rec.Raw,
	).Scan(&out.ID, &out.OrderID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepository) Create(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	const q = `
		INSERT INTO payments (order_id, restaurant_id, provider, provider_payment_id, amount, currency, status, raw)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := *rec
	err := r.pool.QueryRow(ctx, q,
		nullable(rec.OrderID), nullable(rec.RestaurantID), rec.Provider,
		rec.ProviderPaymentID, rec.Amount, rec.Currency, string(rec.Status), rec.Raw,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, providerPaymentID string, raw []byte) (bool, error) {
	const q = `
		UPDATE payments
		SET status = 'failed', raw = $2, updated_at = now()
		WHERE provider_payment_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, providerPaymentID, raw)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *paymentRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.PaymentRecord, error) {
	const q = `
		SELECT id, COALESCE(order_id, ''), COALESCE(restaurant_id, ''), provider,
		       COALESCE(provider_payment_id, ''), amount, currency, status, raw,
		       created_at, updated_at
		FROM payments
		WHERE provider_payment_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.PaymentRecord
	err := r.pool.QueryRow(ctx, q, providerPaymentID).Scan(
		&p.ID, &p.OrderID, &p.RestaurantID, &p.Provider,
		&p.ProviderPaymentID, &p.Amount, &p.Currency, &p.Status, &p.Raw,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
