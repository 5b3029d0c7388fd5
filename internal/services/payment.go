package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"walletshop/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentAuthorizer is the capability the payment collaborator exposes:
// authorize an amount for an order, answering approved or declined. Network
// or gateway failures are errors, not declines, so the caller can retry
// idempotently.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, orderID string, amount decimal.Decimal) (bool, error)
}

// AutoApproveAuthorizer approves every charge. Used in development and tests
// where no gateway is wired up.
type AutoApproveAuthorizer struct{}

// Authorize approves unconditionally.
func (AutoApproveAuthorizer) Authorize(ctx context.Context, orderID string, amount decimal.Decimal) (bool, error) {
	return true, nil
}

// PaymentProcessor reacts to order.created events: it asks the authorizer for
// the order's total and drives the pending order to paid or cancelled. It is
// the only component that acts with the payment role.
type PaymentProcessor struct {
	orders     *OrderService
	authorizer PaymentAuthorizer
	logger     *zap.Logger
}

// NewPaymentProcessor creates a new PaymentProcessor.
func NewPaymentProcessor(orders *OrderService, authorizer PaymentAuthorizer, logger *zap.Logger) *PaymentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentProcessor{
		orders:     orders,
		authorizer: authorizer,
		logger:     logger,
	}
}

// orderCreatedEvent is the subset of the order.created payload the processor
// needs.
type orderCreatedEvent struct {
	OrderID string `json:"order_id"`
}

// HandleOrderCreated processes one order.created message. Returning an error
// leaves the message unacknowledged so the broker redelivers it; the status
// compare-and-swap makes redelivery harmless.
func (p *PaymentProcessor) HandleOrderCreated(ctx context.Context, body []byte) error {
	var event orderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		p.logger.Warn("discarding malformed order event", zap.Error(err))
		return nil
	}

	order, err := p.orders.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s for payment: %w", event.OrderID, err)
	}
	if order.Status != models.StatusPending {
		// Already handled, e.g. a redelivered message.
		return nil
	}

	approved, err := p.authorizer.Authorize(ctx, order.ID, order.TotalAmount)
	if err != nil {
		return fmt.Errorf("payment authorization failed for order %s: %w", order.ID, err)
	}

	next := models.StatusPaid
	if !approved {
		next = models.StatusCancelled
	}

	actor := models.Actor{Role: models.RolePayment}
	if _, err := p.orders.TransitionStatus(ctx, order.ID, next, actor); err != nil {
		var invalid *models.InvalidTransitionError
		if errors.As(err, &invalid) {
			// Lost a race with another transition; nothing left to do.
			p.logger.Info("skipping payment transition", zap.String("order_id", order.ID), zap.Error(err))
			return nil
		}
		return err
	}

	p.logger.Info("payment processed",
		zap.String("order_id", order.ID),
		zap.Bool("approved", approved),
		zap.String("amount", order.TotalAmount.String()),
	)
	return nil
}
