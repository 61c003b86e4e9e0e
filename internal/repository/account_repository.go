package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restom/restom-backend/internal/domain"
)

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByEmailOrPhone returns the first account matching either
	// identity, for duplicate checks at signup.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Account, error)
	Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, name, email, phone, password_hash, created_at`

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE lower(email) = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

func (r *accountRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Account, error) {
	const q = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE lower(email) = lower($1) OR phone = $2
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.pool.QueryRow(ctx, q, email, phone))
}

func (r *accountRepository) Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.Account, error) {
	const q = `
		INSERT INTO accounts (name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	account := &domain.Account{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
	}
	err := r.pool.QueryRow(ctx, q, name, email, phone, passwordHash).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) scanOne(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
