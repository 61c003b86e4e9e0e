package service

import (
	"context"
	"fmt"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/notify"
	"github.com/restom/restom-backend/internal/repository"
	"github.com/restom/restom-backend/internal/webhook"
	"github.com/restom/restom-backend/pkg/events"
	"github.com/restom/restom-backend/pkg/logger"
)

type ReconcileService interface {
	// Reconcile applies an authenticated gateway event to the payment
	// and order stores. Failures are logged, never surfaced to the
	// gateway.
	Reconcile(ctx context.Context, env *webhook.Envelope)
	// CreatePayment records a payment initiation in the created state.
	CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.PaymentRecord, error)
}

type reconcileService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	mailer      notify.Mailer
	eventBus    events.Publisher
}

func NewReconcileService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	mailer notify.Mailer,
	eventBus events.Publisher,
) ReconcileService {
	return &reconcileService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		mailer:      mailer,
		eventBus:    eventBus,
	}
}

func (s *reconcileService) Reconcile(ctx context.Context, env *webhook.Envelope) {
	switch {
	case env.IsCaptured():
		s.reconcileCaptured(ctx, env)
	case env.IsFailed():
		s.reconcileFailed(ctx, env)
	default:
		logger.InfoContext(ctx, "Ignoring webhook event", "event", env.Event)
	}
}

func (s *reconcileService) reconcileCaptured(ctx context.Context, env *webhook.Envelope) {
	providerPaymentID := env.ProviderPaymentID()
	orderID := env.OrderID()
	amount := env.Amount()
	currency := env.Currency()

	logger.InfoContext(ctx, "Reconciling captured payment",
		"event", env.Event,
		"provider_payment_id", providerPaymentID,
		"order_id", orderID,
		"amount", amount,
	)

	var record *domain.PaymentRecord
	var err error

	switch {
	case providerPaymentID != "":
		record, err = s.paymentRepo.UpsertCaptured(ctx, &domain.PaymentRecord{
			OrderID:           orderID,
			RestaurantID:      env.RestaurantID(),
			Provider:          "provider",
			ProviderPaymentID: providerPaymentID,
			Amount:            amount,
			Currency:          currency,
			Raw:               env.Raw,
		})
	case orderID != "":
		// No dedupe key: duplicate deliveries of this shape create
		// duplicate records. Known limitation, kept deliberately.
		record, err = s.paymentRepo.Create(ctx, &domain.PaymentRecord{
			OrderID:      orderID,
			RestaurantID: env.RestaurantID(),
			Provider:     "provider",
			Amount:       amount,
			Currency:     currency,
			Status:       domain.PaymentCaptured,
			Raw:          env.Raw,
		})
	default:
		logger.WarnContext(ctx, "Captured event carries neither provider payment id nor order id; nothing to record")
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist payment record",
			"error", err, "provider_payment_id", providerPaymentID, "order_id", orderID)
	}

	if orderID == "" {
		logger.InfoContext(ctx, "No order id in payload; skipping order reconciliation")
		return
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load order for reconciliation", "error", err, "order_id", orderID)
		return
	}
	if order == nil {
		logger.WarnContext(ctx, "Order not found for captured payment", "order_id", orderID)
		return
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.OrderPaid); err != nil {
		logger.ErrorContext(ctx, "Failed to mark order paid", "error", err, "order_id", orderID)
		return
	}
	logger.InfoContext(ctx, "Order reconciled", "order_id", orderID, "payment_status", domain.OrderPaid)

	if record != nil {
		if err := s.eventBus.Publish(ctx, events.PaymentCaptured, events.PaymentCapturedEvent{
			PaymentID:         record.ID,
			OrderID:           orderID,
			ProviderPaymentID: providerPaymentID,
			Amount:            amount,
			Currency:          currency,
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish payment.captured event", "error", err)
		}
	}

	if order.CustomerEmail != "" {
		if err := s.mailer.SendPaymentReceipt(ctx, order.CustomerEmail, orderID, amount, currency); err != nil {
			logger.WarnContext(ctx, "Failed to send payment receipt", "error", err, "order_id", orderID)
		}
	}
}

func (s *reconcileService) reconcileFailed(ctx context.Context, env *webhook.Envelope) {
	providerPaymentID := env.ProviderPaymentID()
	orderID := env.OrderID()

	logger.InfoContext(ctx, "Recording failed payment",
		"provider_payment_id", providerPaymentID, "order_id", orderID)

	if providerPaymentID != "" {
		updated, err := s.paymentRepo.MarkFailed(ctx, providerPaymentID, env.Raw)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to mark payment failed", "error", err, "provider_payment_id", providerPaymentID)
		} else if !updated {
			logger.InfoContext(ctx, "No payment record to mark failed", "provider_payment_id", providerPaymentID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.PaymentFailed, events.PaymentFailedEvent{
		ProviderPaymentID: providerPaymentID,
		OrderID:           orderID,
		Reason:            env.Event,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish payment.failed event", "error", err)
	}
}

func (s *reconcileService) CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.PaymentRecord, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, err := s.paymentRepo.Create(ctx, &domain.PaymentRecord{
		OrderID:      req.OrderID,
		RestaurantID: req.RestaurantID,
		Provider:     "provider",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       domain.PaymentCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}
	return record, nil
}
