package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/notify"
)

// ---------- Mocks ----------

type mockOtpRepo struct {
	mu           sync.Mutex
	records      map[string]*domain.OtpChallenge
	replaceErr   error
	incrementErr error
}

func newMockOtpRepo() *mockOtpRepo {
	return &mockOtpRepo{records: make(map[string]*domain.OtpChallenge)}
}

func (m *mockOtpRepo) Replace(_ context.Context, phone, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.records[phone] = &domain.OtpChallenge{
		Phone:     phone,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		Attempts:  0,
	}
	return nil
}

func (m *mockOtpRepo) Find(_ context.Context, phone string) (*domain.OtpChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[phone]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockOtpRepo) IncrementAttempts(_ context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	rec, ok := m.records[phone]
	if !ok {
		return 0, nil
	}
	rec.Attempts++
	return rec.Attempts, nil
}

func (m *mockOtpRepo) Delete(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[phone]; !ok {
		return false, nil
	}
	delete(m.records, phone)
	return true, nil
}

func (m *mockOtpRepo) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	now := time.Now()
	for phone, rec := range m.records {
		if rec.ExpiresAt.Before(now) {
			delete(m.records, phone)
			removed++
		}
	}
	return removed, nil
}

type mockSender struct {
	lastPhone   string
	lastMessage string
	result      notify.Result
	sendErr     error
}

func (m *mockSender) Send(_ context.Context, phone, message string) (notify.Result, error) {
	m.lastPhone = phone
	m.lastMessage = message
	if m.sendErr != nil {
		return notify.Result{}, m.sendErr
	}
	return m.result, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts []*domain.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{nextID: 1}
}

func (m *mockAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) FindByEmailOrPhone(_ context.Context, email, phone string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email || a.Phone == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) Create(_ context.Context, name, email, phone, passwordHash string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := &domain.Account{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.accounts = append(m.accounts, account)
	return account, nil
}

type mockPaymentRepo struct {
	mu         sync.Mutex
	nextID     int64
	byProvider map[string]*domain.PaymentRecord
	created    []*domain.PaymentRecord
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{nextID: 1, byProvider: make(map[string]*domain.PaymentRecord)}
}

func (m *mockPaymentRepo) UpsertCaptured(_ context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byProvider[rec.ProviderPaymentID]; ok {
		existing.Amount = rec.Amount
		existing.Currency = rec.Currency
		existing.Status = domain.PaymentCaptured
		existing.Raw = rec.Raw
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	stored := *rec
	stored.ID = m.nextID
	stored.Status = domain.PaymentCaptured
	m.nextID++
	m.byProvider[rec.ProviderPaymentID] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockPaymentRepo) Create(_ context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	stored.ID = m.nextID
	m.nextID++
	m.created = append(m.created, &stored)
	cp := stored
	return &cp, nil
}

func (m *mockPaymentRepo) MarkFailed(_ context.Context, providerPaymentID string, raw []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byProvider[providerPaymentID]
	if !ok {
		return false, nil
	}
	rec.Status = domain.PaymentFailed
	rec.Raw = raw
	return true, nil
}

func (m *mockPaymentRepo) FindByProviderPaymentID(_ context.Context, providerPaymentID string) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byProvider[providerPaymentID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status domain.OrderPaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[id]; ok {
		order.PaymentStatus = status
	}
	return nil
}

type mockMailer struct {
	mu       sync.Mutex
	receipts []string
}

func (m *mockMailer) SendPaymentReceipt(_ context.Context, toEmail, orderID string, amount float64, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, toEmail+":"+orderID)
	return nil
}
