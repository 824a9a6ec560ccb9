package services_test

import (
	"testing"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/stretchr/testify/assert"
)

func newOrderFixture(t *testing.T, status models.OrderStatus) (*services.OrderService, *repositories.MockOrderRepository, *models.Order) {
	t.Helper()
	repo := repositories.NewMockOrderRepository()
	service := services.NewOrderService(repo, nil)
	order := &models.Order{
		OrderNumber: "KW-1",
		PaymentRef:  "ref_1",
		CustomerID:  "cust-1",
		TotalAmount: 500000,
		Status:      status,
	}
	assert.NoError(t, repo.Create(order))
	return service, repo, order
}

func TestMarkPaidFromPending(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusPending)

	assert.NoError(t, service.MarkPaid(order.OrderNumber))

	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusPaid, current.Status)
}

func TestMarkPaidRejectsNonPending(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.StatusPaid, models.StatusReady, models.StatusFulfilled,
		models.StatusCancelled, models.StatusFailed,
	} {
		service, repo, order := newOrderFixture(t, status)

		err := service.MarkPaid(order.OrderNumber)
		assert.ErrorIs(t, err, models.ErrStateConflict, "from %s", status)

		// Order left unchanged after the rejection.
		current, _ := repo.GetByNumber(order.OrderNumber)
		assert.Equal(t, status, current.Status)
	}
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	service, _, _ := newOrderFixture(t, models.StatusPending)
	assert.ErrorIs(t, service.MarkPaid("KW-missing"), models.ErrNotFound)
}

func TestMarkFailedIsIdempotent(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusPending)

	assert.NoError(t, service.MarkFailed(order.OrderNumber))
	// A second failure signal is a no-op, not a conflict.
	assert.NoError(t, service.MarkFailed(order.OrderNumber))

	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusFailed, current.Status)
}

func TestMarkFailedFromPaid(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusPaid)
	assert.NoError(t, service.MarkFailed(order.OrderNumber))
	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusFailed, current.Status)
}

func TestMarkFailedFromTerminalIsConflict(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusFulfilled)
	assert.ErrorIs(t, service.MarkFailed(order.OrderNumber), models.ErrStateConflict)
	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusFulfilled, current.Status)
}

func TestSetReadiness(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusPaid)

	assert.NoError(t, service.SetReadiness(order.OrderNumber, 3))

	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusReady, current.Status)
	assert.Equal(t, 3, current.ReadyInDays)
}

func TestSetReadinessRejectsNonPositiveDays(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusPaid)

	assert.Error(t, service.SetReadiness(order.OrderNumber, 0))
	assert.Error(t, service.SetReadiness(order.OrderNumber, -2))

	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusPaid, current.Status)
	assert.Zero(t, current.ReadyInDays)
}

func TestSetReadinessRequiresPaid(t *testing.T) {
	service, _, order := newOrderFixture(t, models.StatusPending)
	assert.ErrorIs(t, service.SetReadiness(order.OrderNumber, 3), models.ErrStateConflict)
}

func TestFulfill(t *testing.T) {
	service, repo, order := newOrderFixture(t, models.StatusReady)
	assert.NoError(t, service.Fulfill(order.OrderNumber))
	current, _ := repo.GetByNumber(order.OrderNumber)
	assert.Equal(t, models.StatusFulfilled, current.Status)
}

func TestFulfillRequiresReady(t *testing.T) {
	service, _, order := newOrderFixture(t, models.StatusPaid)
	assert.ErrorIs(t, service.Fulfill(order.OrderNumber), models.ErrStateConflict)
}

func TestCancelFromPendingAndPaid(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusPending, models.StatusPaid} {
		service, repo, order := newOrderFixture(t, status)
		assert.NoError(t, service.Cancel(order.OrderNumber))
		current, _ := repo.GetByNumber(order.OrderNumber)
		assert.Equal(t, models.StatusCancelled, current.Status)
	}
}

func TestCancelTwiceIsNoOp(t *testing.T) {
	service, _, order := newOrderFixture(t, models.StatusPending)
	assert.NoError(t, service.Cancel(order.OrderNumber))
	assert.NoError(t, service.Cancel(order.OrderNumber))
}

func TestCancelFromFulfilledIsConflict(t *testing.T) {
	service, _, order := newOrderFixture(t, models.StatusFulfilled)
	assert.ErrorIs(t, service.Cancel(order.OrderNumber), models.ErrStateConflict)
}

func TestGetOrderForCustomerScopesToOwner(t *testing.T) {
	service, _, order := newOrderFixture(t, models.StatusPaid)

	found, err := service.GetOrderForCustomer(order.OrderNumber, "cust-1")
	assert.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	// Someone else's order number is a lookup miss.
	_, err = service.GetOrderForCustomer(order.OrderNumber, "cust-2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
