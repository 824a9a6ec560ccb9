package models_test

import (
	"testing"

	"kasuwa/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name  string
		from  models.OrderStatus
		to    models.OrderStatus
		legal bool
	}{
		{"pending to paid", models.StatusPending, models.StatusPaid, true},
		{"pending to failed", models.StatusPending, models.StatusFailed, true},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, true},
		{"paid to ready", models.StatusPaid, models.StatusReady, true},
		{"paid to failed", models.StatusPaid, models.StatusFailed, true},
		{"paid to cancelled", models.StatusPaid, models.StatusCancelled, true},
		{"ready to fulfilled", models.StatusReady, models.StatusFulfilled, true},

		{"paid to paid", models.StatusPaid, models.StatusPaid, false},
		{"pending to ready", models.StatusPending, models.StatusReady, false},
		{"pending to fulfilled", models.StatusPending, models.StatusFulfilled, false},
		{"ready to cancelled", models.StatusReady, models.StatusCancelled, false},
		{"fulfilled to paid", models.StatusFulfilled, models.StatusPaid, false},
		{"fulfilled to cancelled", models.StatusFulfilled, models.StatusCancelled, false},
		{"cancelled to paid", models.StatusCancelled, models.StatusPaid, false},
		{"cancelled to ready", models.StatusCancelled, models.StatusReady, false},
		{"failed to paid", models.StatusFailed, models.StatusPaid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.legal, models.CanTransition(tc.from, tc.to))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, models.StatusFulfilled.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.True(t, models.StatusFailed.IsTerminal())
	assert.False(t, models.StatusPending.IsTerminal())
	assert.False(t, models.StatusPaid.IsTerminal())
	assert.False(t, models.StatusReady.IsTerminal())
}

func TestOrderParsedItems(t *testing.T) {
	order := &models.Order{}
	items := []models.OrderItem{
		{ProductID: "prod-1", Name: "Laptop", Quantity: 2, Price: 120000},
	}
	assert.NoError(t, order.SetItems(items))
	assert.Equal(t, items, order.ParsedItems())

	// Corrupt stored text parses to an empty list, not an error.
	order.Items = "not json"
	assert.Equal(t, []models.OrderItem{}, order.ParsedItems())

	order.Items = ""
	assert.Equal(t, []models.OrderItem{}, order.ParsedItems())
}

func TestCartSnapshotTotal(t *testing.T) {
	cart := models.CartSnapshot{
		Items: []models.CartItem{
			{ProductID: "prod-1", Name: "Laptop", Quantity: 1, Amount: 120000},
			{ProductID: "prod-2", Name: "Mouse", Quantity: 2, Amount: 5000},
		},
	}
	assert.Equal(t, int64(125000), cart.Total())
	assert.Equal(t, int64(0), models.CartSnapshot{}.Total())
}
