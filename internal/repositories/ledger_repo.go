package repositories

import (
	"kasuwa/internal/models"
)

// LedgerRepository is the idempotency ledger: the set of provider
// transaction references that have already been applied.
type LedgerRepository interface {
	// Record inserts the event if and only if its reference has never been
	// recorded. On a duplicate it returns models.ErrDuplicateEvent; the
	// caller then fetches the previously recorded outcome with Get. This
	// conditional insert is the pipeline's one mandatory critical section.
	Record(event *models.PaymentEvent) error
	Get(reference string) (*models.PaymentEvent, error)
}
