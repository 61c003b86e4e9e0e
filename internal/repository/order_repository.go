package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restom/restom-backend/internal/domain"
)

// OrderRepository is the narrow view of the order store this core needs:
// find an order by id and move its payment status.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.OrderPaymentStatus) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT id, restaurant_id, COALESCE(customer_email, ''), total, payment_status
		FROM orders
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.RestaurantID, &o.CustomerEmail, &o.Total, &o.PaymentStatus)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id string, status domain.OrderPaymentStatus) error {
	const q = `UPDATE orders SET payment_status = $2 WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, string(status))
	return err
}
