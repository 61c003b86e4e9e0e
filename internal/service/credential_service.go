package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/repository"
	"github.com/restom/restom-backend/pkg/auth"
	"github.com/restom/restom-backend/pkg/config"
	"github.com/restom/restom-backend/pkg/events"
	"github.com/restom/restom-backend/pkg/logger"
)

type AuthResult struct {
	Token string          `json:"token"`
	User  domain.UserInfo `json:"user"`
}

type CredentialService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*AuthResult, error)
}

type credentialService struct {
	accountRepo repository.AccountRepository
	eventBus    events.Publisher
	config      *config.Config
}

func NewCredentialService(
	accountRepo repository.AccountRepository,
	eventBus events.Publisher,
	config *config.Config,
) CredentialService {
	return &credentialService{
		accountRepo: accountRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *credentialService) Signup(ctx context.Context, req *domain.SignupRequest) (*AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accountRepo.Create(ctx, req.Name, req.Email, req.Phone, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Phone:     account.Phone,
		CreatedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.registered event", "error", err)
	}

	return &AuthResult{Token: token, User: account.ToUserInfo()}, nil
}

func (s *credentialService) Login(ctx context.Context, req *domain.LoginRequest) (*AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	// The same error covers "no such account" and "wrong password" so
	// responses cannot be used to enumerate accounts.
	if account == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: account.ToUserInfo()}, nil
}

func (s *credentialService) issueToken(account *domain.Account) (string, error) {
	token, err := auth.NewAccessToken(
		account.ID,
		account.Phone,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}
	return token, nil
}
