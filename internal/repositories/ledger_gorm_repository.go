package repositories

import (
	"errors"
	"fmt"
	"time"

	"kasuwa/internal/models"

	"gorm.io/gorm"
)

// GORMLedgerRepository is a GORM implementation of LedgerRepository. The
// uniqueness guarantee comes from the unique index on the reference column;
// gorm must be opened with TranslateError so the violation surfaces as
// gorm.ErrDuplicatedKey.
type GORMLedgerRepository struct {
	db *gorm.DB
}

// NewGORMLedgerRepository creates a new instance of GORMLedgerRepository.
func NewGORMLedgerRepository(db *gorm.DB) *GORMLedgerRepository {
	return &GORMLedgerRepository{
		db: db,
	}
}

// Record inserts the ledger entry, translating a unique violation into
// models.ErrDuplicateEvent.
func (r *GORMLedgerRepository) Record(event *models.PaymentEvent) error {
	if event.AppliedAt.IsZero() {
		event.AppliedAt = time.Now()
	}
	if err := r.db.Create(event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("reference %s: %w", event.Reference, models.ErrDuplicateEvent)
		}
		return fmt.Errorf("failed to record payment event %s: %w", event.Reference, err)
	}
	return nil
}

// Get retrieves a ledger entry by provider reference.
func (r *GORMLedgerRepository) Get(reference string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	if err := r.db.First(&event, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment event %s: %w", reference, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment event %s: %w", reference, err)
	}
	return &event, nil
}
