package models

import "errors"

// Sentinel errors shared across repositories, services and handlers. They
// are wrapped with %w at the point of failure and matched with errors.Is at
// the HTTP boundary, where each maps to a fixed status and a safe message.
var (
	// ErrNotFound covers order, user and product lookup misses. Order reads
	// scoped to a customer also return it for foreign order numbers, so the
	// response never distinguishes "absent" from "not yours".
	ErrNotFound = errors.New("not found")

	// ErrStateConflict means the requested order transition is illegal from
	// the order's current status.
	ErrStateConflict = errors.New("illegal order state transition")

	// ErrDuplicateEvent is a ledger hit: the provider reference was applied
	// before. Callers treat it as a no-op success carrying the recorded
	// outcome, not as a failure.
	ErrDuplicateEvent = errors.New("payment event already applied")

	// ErrProviderRejected means the payment provider returned a non-success
	// response. Provider detail is logged server-side only.
	ErrProviderRejected = errors.New("payment provider rejected the request")

	// ErrSignatureInvalid means the webhook body failed HMAC verification.
	ErrSignatureInvalid = errors.New("webhook signature mismatch")

	// ErrInvalidCredentials covers login failures without revealing whether
	// the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSecretMismatch means the bootstrap promotion secret did not match.
	ErrSecretMismatch = errors.New("bootstrap secret mismatch")
)
