package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restom/restom-backend/internal/domain"
)

// OtpRepository persists at most one live challenge per phone number.
// All mutations are single statements so concurrent verifies and
// re-issues never observe a partially written record.
type OtpRepository interface {
	// Replace stores a fresh hashed challenge for phone, replacing any
	// prior record and resetting attempts to zero. Legacy plaintext
	// codes are cleared by the same statement.
	Replace(ctx context.Context, phone, codeHash string, expiresAt time.Time) error
	Find(ctx context.Context, phone string) (*domain.OtpChallenge, error)
	// IncrementAttempts bumps the counter atomically and returns the
	// new value, so racing verifies cannot stretch the attempt limit.
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type otpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) OtpRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Replace(ctx context.Context, phone, codeHash string, expiresAt time.Time) error {
	const q = `
		INSERT INTO otp_challenges (phone, code_hash, expires_at, attempts)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (phone) DO UPDATE SET
			code_hash = $2,
			code = NULL,
			expires_at = $3,
			attempts = 0`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, phone, codeHash, expiresAt)
	return err
}

func (r *otpRepository) Find(ctx context.Context, phone string) (*domain.OtpChallenge, error) {
	const q = `
		SELECT phone, COALESCE(code, ''), COALESCE(code_hash, ''), expires_at, attempts
		FROM otp_challenges
		WHERE phone = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.OtpChallenge
	err := r.pool.QueryRow(ctx, q, phone).Scan(&c.Phone, &c.Code, &c.CodeHash, &c.ExpiresAt, &c.Attempts)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	const q = `
		UPDATE otp_challenges
		SET attempts = attempts + 1
		WHERE phone = $1
		RETURNING attempts`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var attempts int
	err := r.pool.QueryRow(ctx, q, phone).Scan(&attempts)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return attempts, err
}

func (r *otpRepository) Delete(ctx context.Context, phone string) (bool, error) {
	const q = `DELETE FROM otp_challenges WHERE phone = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, phone)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM otp_challenges WHERE expires_at < now()`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
