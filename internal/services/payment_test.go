package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"walletshop/internal/models"
	"walletshop/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAuthorizer answers with a fixed verdict or error.
type scriptedAuthorizer struct {
	approved bool
	err      error
	calls    int
}

func (a *scriptedAuthorizer) Authorize(ctx context.Context, orderID string, amount decimal.Decimal) (bool, error) {
	a.calls++
	return a.approved, a.err
}

func placePendingOrder(t *testing.T, f *orderFixture) *models.Order {
	t.Helper()
	f.seedProduct(t, "wallet-A", "Classic Bifold", "49.99", 5)
	order, err := f.service.PlaceOrder(context.Background(), f.user.ID, []models.CartLine{
		{ProductID: "wallet-A", Quantity: 2},
	}, "key-1")
	require.NoError(t, err)
	return order
}

func orderCreatedBody(t *testing.T, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{"order_id": orderID})
	require.NoError(t, err)
	return body
}

func TestPaymentProcessor_Approves(t *testing.T) {
	f := newOrderFixture(t)
	order := placePendingOrder(t, f)

	auth := &scriptedAuthorizer{approved: true}
	processor := services.NewPaymentProcessor(f.service, auth, nil)

	err := processor.HandleOrderCreated(context.Background(), orderCreatedBody(t, order.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, auth.calls)

	stored, err := f.service.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	// Payment does not touch the reservation.
	assert.Equal(t, 3, f.stockOf(t, "wallet-A"))
}

func TestPaymentProcessor_DeclineCancelsAndRestocks(t *testing.T) {
	f := newOrderFixture(t)
	order := placePendingOrder(t, f)

	auth := &scriptedAuthorizer{approved: false}
	processor := services.NewPaymentProcessor(f.service, auth, nil)

	err := processor.HandleOrderCreated(context.Background(), orderCreatedBody(t, order.ID))
	require.NoError(t, err)

	stored, err := f.service.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, 5, f.stockOf(t, "wallet-A"))
}

func TestPaymentProcessor_RedeliveryIsHarmless(t *testing.T) {
	f := newOrderFixture(t)
	order := placePendingOrder(t, f)

	auth := &scriptedAuthorizer{approved: true}
	processor := services.NewPaymentProcessor(f.service, auth, nil)
	body := orderCreatedBody(t, order.ID)

	require.NoError(t, processor.HandleOrderCreated(context.Background(), body))
	// The broker redelivers; the order is no longer pending, so the
	// authorizer is not asked again.
	require.NoError(t, processor.HandleOrderCreated(context.Background(), body))
	assert.Equal(t, 1, auth.calls)

	stored, err := f.service.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
}

func TestPaymentProcessor_GatewayErrorIsRetriable(t *testing.T) {
	f := newOrderFixture(t)
	order := placePendingOrder(t, f)

	auth := &scriptedAuthorizer{err: fmt.Errorf("gateway timeout")}
	processor := services.NewPaymentProcessor(f.service, auth, nil)

	err := processor.HandleOrderCreated(context.Background(), orderCreatedBody(t, order.ID))
	require.Error(t, err)

	// The order stays pending for the redelivery.
	stored, err := f.service.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestPaymentProcessor_MalformedEventIsDiscarded(t *testing.T) {
	f := newOrderFixture(t)

	processor := services.NewPaymentProcessor(f.service, services.AutoApproveAuthorizer{}, nil)
	assert.NoError(t, processor.HandleOrderCreated(context.Background(), []byte("{not json")))
}

func TestPaymentProcessor_UnknownOrderErrors(t *testing.T) {
	f := newOrderFixture(t)

	processor := services.NewPaymentProcessor(f.service, services.AutoApproveAuthorizer{}, nil)
	err := processor.HandleOrderCreated(context.Background(), orderCreatedBody(t, "ghost"))
	assert.Error(t, err)
}
