package repositories

import (
	"errors"
	"fmt"
	"time"

	"kasuwa/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists a new order row.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// GetByNumber retrieves an order by its external order number.
func (r *GORMOrderRepository) GetByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// GetByPaymentRef retrieves an order by its provider transaction reference.
func (r *GORMOrderRepository) GetByPaymentRef(reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "payment_ref = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with payment ref %s: %w", reference, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by payment ref %s: %w", reference, err)
	}
	return &order, nil
}

// GetByNumberForCustomer retrieves an order only if it belongs to the given
// customer. A miss and a foreign order are indistinguishable to the caller.
func (r *GORMOrderRepository) GetByNumberForCustomer(orderNumber, customerID string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "order_number = ? AND customer_id = ?", orderNumber, customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// Transition performs the conditional status update. The WHERE clause on the
// current status is what makes concurrent transitions safe: only one of two
// racing writers can match it.
func (r *GORMOrderRepository) Transition(orderNumber string, from, to models.OrderStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for col, val := range extra {
		updates[col] = val
	}

	res := r.db.Model(&models.Order{}).
		Where("order_number = ? AND status = ?", orderNumber, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition order %s: %w", orderNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the order does not exist or it moved on. Look again to
		// report the right condition.
		current, err := r.GetByNumber(orderNumber)
		if err != nil {
			return err
		}
		return fmt.Errorf("order %s is %s, expected %s: %w",
			orderNumber, current.Status, from, models.ErrStateConflict)
	}
	return nil
}
