package repositories

import (
	"fmt"
	"sync"
	"time"

	"kasuwa/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// The mutex gives it the same transition atomicity the GORM implementation
// gets from its conditional UPDATE.
type MockOrderRepository struct {
	orders map[string]models.Order // keyed by order number
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.OrderNumber]; exists {
		return fmt.Errorf("order %s already exists", order.OrderNumber)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.OrderNumber] = *order
	return nil
}

// GetByNumber returns an order by its order number.
func (r *MockOrderRepository) GetByNumber(orderNumber string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderNumber, models.ErrNotFound)
	}
	return &order, nil
}

// GetByPaymentRef returns an order by its provider transaction reference.
func (r *MockOrderRepository) GetByPaymentRef(reference string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PaymentRef == reference {
			o := order
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order with payment ref %s: %w", reference, models.ErrNotFound)
}

// GetByNumberForCustomer returns an order only if owned by the customer.
func (r *MockOrderRepository) GetByNumberForCustomer(orderNumber, customerID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNumber]
	if !ok || order.CustomerID != customerID {
		return nil, fmt.Errorf("order %s: %w", orderNumber, models.ErrNotFound)
	}
	return &order, nil
}

// Transition applies the conditional status update under the lock.
func (r *MockOrderRepository) Transition(orderNumber string, from, to models.OrderStatus, extra map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return fmt.Errorf("order %s: %w", orderNumber, models.ErrNotFound)
	}
	if order.Status != from {
		return fmt.Errorf("order %s is %s, expected %s: %w",
			orderNumber, order.Status, from, models.ErrStateConflict)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	if days, ok := extra["ready_in_days"]; ok {
		if d, ok := days.(int); ok {
			order.ReadyInDays = d
		}
	}
	r.orders[orderNumber] = order
	return nil
}
