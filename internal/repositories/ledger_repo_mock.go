package repositories

import (
	"fmt"
	"sync"
	"time"

	"kasuwa/internal/models"
)

// MockLedgerRepository is an in-memory implementation of LedgerRepository.
type MockLedgerRepository struct {
	events map[string]models.PaymentEvent
	mu     sync.Mutex
}

// NewMockLedgerRepository creates a new instance of MockLedgerRepository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		events: make(map[string]models.PaymentEvent),
	}
}

// Record inserts the event unless its reference is already present.
func (r *MockLedgerRepository) Record(event *models.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.Reference]; exists {
		return fmt.Errorf("reference %s: %w", event.Reference, models.ErrDuplicateEvent)
	}
	if event.AppliedAt.IsZero() {
		event.AppliedAt = time.Now()
	}
	r.events[event.Reference] = *event
	return nil
}

// Get retrieves a ledger entry by provider reference.
func (r *MockLedgerRepository) Get(reference string) (*models.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[reference]
	if !ok {
		return nil, fmt.Errorf("payment event %s: %w", reference, models.ErrNotFound)
	}
	return &event, nil
}
