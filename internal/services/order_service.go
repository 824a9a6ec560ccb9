package services

import (
	"errors"
	"fmt"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
	"kasuwa/pkg/rabbitmq"

	log "github.com/sirupsen/logrus"
)

// EventPublisher is the slice of the message-queue client the services use.
// A nil publisher is valid; events are then skipped with a log line.
type EventPublisher interface {
	Publish(queue string, payload interface{}) error
}

// OrderService is the single writer of order status. Every status change in
// the system goes through one of its transition methods, which combine the
// legality table in models with the repository's conditional update.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// GetOrderForCustomer retrieves an order scoped to its owner. Foreign order
// numbers surface as models.ErrNotFound, never as a permission error, so
// order numbers cannot be enumerated.
func (s *OrderService) GetOrderForCustomer(orderNumber, customerID string) (*models.Order, error) {
	return s.orderRepo.GetByNumberForCustomer(orderNumber, customerID)
}

// FindByPaymentRef resolves a provider transaction reference to its order.
func (s *OrderService) FindByPaymentRef(reference string) (*models.Order, error) {
	return s.orderRepo.GetByPaymentRef(reference)
}

// MarkPaid advances a pending order to paid. Called only by the
// reconciliation path on a verified success signal. Any other current
// status is a conflict and leaves the order unchanged.
func (s *OrderService) MarkPaid(orderNumber string) error {
	if err := s.orderRepo.Transition(orderNumber, models.StatusPending, models.StatusPaid, nil); err != nil {
		return err
	}
	s.publishStatus(orderNumber, models.StatusPaid)
	return nil
}

// MarkFailed records a failed payment. Legal from pending and paid;
// retriggering on an order that already failed or was cancelled is a no-op.
func (s *OrderService) MarkFailed(orderNumber string) error {
	return s.failOrCancel(orderNumber, models.StatusFailed)
}

// Cancel cancels an order on explicit admin action. Legal from pending and
// paid; cancelling an already-cancelled order is a no-op.
func (s *OrderService) Cancel(orderNumber string) error {
	return s.failOrCancel(orderNumber, models.StatusCancelled)
}

func (s *OrderService) failOrCancel(orderNumber string, to models.OrderStatus) error {
	order, err := s.orderRepo.GetByNumber(orderNumber)
	if err != nil {
		return err
	}
	if order.Status == to {
		// Already there; duplicate failure signals are expected.
		return nil
	}
	if !models.CanTransition(order.Status, to) {
		return fmt.Errorf("order %s is %s: %w", orderNumber, order.Status, models.ErrStateConflict)
	}
	if err := s.orderRepo.Transition(orderNumber, order.Status, to, nil); err != nil {
		// A race moved the order between the read and the update. If it
		// landed on the target status anyway, that is the no-op case.
		if errors.Is(err, models.ErrStateConflict) {
			if current, lookupErr := s.orderRepo.GetByNumber(orderNumber); lookupErr == nil && current.Status == to {
				return nil
			}
		}
		return err
	}
	s.publishStatus(orderNumber, to)
	return nil
}

// SetReadiness moves a paid order to ready with an admin-supplied estimate
// of days until pickup. The estimate must be a positive integer.
func (s *OrderService) SetReadiness(orderNumber string, days int) error {
	if days <= 0 {
		return fmt.Errorf("ready_in_days must be a positive integer, got %d", days)
	}
	err := s.orderRepo.Transition(orderNumber, models.StatusPaid, models.StatusReady,
		map[string]interface{}{"ready_in_days": days})
	if err != nil {
		return err
	}
	s.publishStatus(orderNumber, models.StatusReady)
	return nil
}

// Fulfill moves a ready order to its terminal fulfilled state.
func (s *OrderService) Fulfill(orderNumber string) error {
	if err := s.orderRepo.Transition(orderNumber, models.StatusReady, models.StatusFulfilled, nil); err != nil {
		return err
	}
	s.publishStatus(orderNumber, models.StatusFulfilled)
	return nil
}

// publishStatus emits a lifecycle event for downstream consumers. Delivery
// is best effort; the status change itself already happened.
func (s *OrderService) publishStatus(orderNumber string, status models.OrderStatus) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"order_number": orderNumber,
		"status":       status,
	}
	if err := s.publisher.Publish(rabbitmq.OrderEventsQueue, event); err != nil {
		log.WithError(err).WithField("order_number", orderNumber).
			Warn("failed to publish order status event")
	}
}
