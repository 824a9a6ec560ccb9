package repositories

import (
	"kasuwa/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// Transition is the only way an order's status changes: a conditional
// update that applies only while the order is still in the expected source
// status. Two racing writers collapse to one effect without explicit locks.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByNumber(orderNumber string) (*models.Order, error)
	// GetByPaymentRef resolves the provider transaction reference carried by
	// webhook and verification payloads back to its order.
	GetByPaymentRef(reference string) (*models.Order, error)
	// GetByNumberForCustomer scopes the lookup to the owning customer; a
	// foreign order number is a lookup miss, not a permission error.
	GetByNumberForCustomer(orderNumber, customerID string) (*models.Order, error)
	// Transition moves the order from one status to another, bumping
	// updated_at and applying extra column updates (e.g. ready_in_days)
	// in the same write. Returns models.ErrNotFound if the order does not
	// exist and models.ErrStateConflict if it is no longer in `from`.
	Transition(orderNumber string, from, to models.OrderStatus, extra map[string]interface{}) error
}
