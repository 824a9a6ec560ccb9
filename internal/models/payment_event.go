package models

import "time"

// Payment event outcomes recorded in the idempotency ledger.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PaymentEvent is one row of the idempotency ledger: a provider transaction
// reference that has already been applied. The unique index on Reference
// makes the reconciliation insert atomic: a second delivery of the same
// reference fails the insert and returns the recorded outcome instead.
type PaymentEvent struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	Reference   string    `json:"reference" gorm:"uniqueIndex;type:varchar(128);not null"`
	OrderNumber string    `json:"order_number" gorm:"type:varchar(64)"`
	Outcome     string    `json:"outcome" gorm:"type:varchar(16)"`
	PayloadHash string    `json:"-" gorm:"type:varchar(64)"` // sha256 of the raw payload, for audit only
	AppliedAt   time.Time `json:"applied_at"`
}
