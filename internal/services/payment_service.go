package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
	"kasuwa/pkg/paystack"
	"kasuwa/pkg/rabbitmq"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PaymentProvider is the slice of the Paystack client the payment pipeline
// uses. Tests substitute it with a stub.
type PaymentProvider interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.TransactionData, error)
	VerifySignature(body []byte, signature string) bool
}

// Verification poll outcomes returned to the browser. "pending" is not a
// failure: the provider just has not settled the charge yet.
const (
	VerifyStatusSuccess = "success"
	VerifyStatusPending = "pending"
	VerifyStatusError   = "error"
)

// verifyTimeout bounds the synchronous provider call made on behalf of a
// polling browser.
const verifyTimeout = 5 * time.Second

// PaymentService implements payment initialization and reconciliation.
// Reconciliation converges the two delivery paths (webhook, client poll)
// onto one idempotent application step: a conditional ledger insert
// followed by the pending→paid (or failure) transition.
type PaymentService struct {
	orders     *OrderService
	ledgerRepo repositories.LedgerRepository
	provider   PaymentProvider
	publisher  EventPublisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orders *OrderService, ledgerRepo repositories.LedgerRepository, provider PaymentProvider, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		orders:     orders,
		ledgerRepo: ledgerRepo,
		provider:   provider,
		publisher:  publisher,
	}
}

// InitializePayment opens a provider transaction for the cart and, once the
// provider has accepted it, persists the pending order. Creating the order
// only after provider acceptance avoids orphaned pending rows for requests
// that never reached the provider.
func (s *PaymentService) InitializePayment(ctx context.Context, customerID, email string, cart models.CartSnapshot) (*paystack.Authorization, error) {
	total := cart.Total()
	if total <= 0 {
		return nil, fmt.Errorf("cart total must be positive, got %d", total)
	}

	reference := uuid.New().String()
	items := make([]paystack.LineItem, 0, len(cart.Items))
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		// Unit price is derived from the line amount the same way the
		// catalog priced it: line amount divided by the quantity.
		unitPrice := item.Amount / int64(item.Quantity)
		items = append(items, paystack.LineItem{
			ID:        item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     unitPrice,
		})
	}

	auth, err := s.provider.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:     email,
		Amount:    total,
		Reference: reference,
		Items:     items,
	})
	if err != nil {
		log.WithError(err).WithField("email", email).Error("payment initialization rejected by provider")
		return nil, fmt.Errorf("%w: %v", models.ErrProviderRejected, err)
	}

	order := &models.Order{
		OrderNumber: newOrderNumber(),
		PaymentRef:  auth.Reference,
		CustomerID:  customerID,
		Email:       email,
		TotalAmount: total,
		Status:      models.StatusPending,
	}
	if err := order.SetItems(orderItems); err != nil {
		return nil, fmt.Errorf("failed to serialize order items: %w", err)
	}
	if err := s.orders.orderRepo.Create(order); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_number": order.OrderNumber,
		"reference":    auth.Reference,
		"amount":       total,
	}).Info("payment initialized")
	return auth, nil
}

// ReconcileResult reports what a reconciliation call did.
type ReconcileResult struct {
	Reference   string `json:"reference"`
	OrderNumber string `json:"order_number"`
	Outcome     string `json:"outcome"`
	// Duplicate marks a ledger hit: the outcome shown was recorded by an
	// earlier delivery and nothing was re-applied.
	Duplicate bool `json:"duplicate"`
	// Ignored marks an event outside the charge lifecycle, acknowledged
	// without effect.
	Ignored bool `json:"ignored,omitempty"`
}

// HandleWebhook processes an asynchronous provider delivery. The signature
// is checked over the raw bytes before anything is parsed; a mismatch
// rejects the request outright. Events outside the charge lifecycle are
// acknowledged and ignored so the provider does not retry them.
func (s *PaymentService) HandleWebhook(body []byte, signature string) (*ReconcileResult, error) {
	if !s.provider.VerifySignature(body, signature) {
		return nil, models.ErrSignatureInvalid
	}

	event, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		return nil, err
	}

	var outcome string
	switch event.Kind() {
	case paystack.EventChargeSuccess:
		outcome = models.OutcomeSuccess
	case paystack.EventChargeFailed:
		outcome = models.OutcomeFailure
	default:
		log.WithField("event", event.Event).Debug("ignoring webhook event outside charge lifecycle")
		return &ReconcileResult{Ignored: true}, nil
	}

	return s.reconcile(event.Data.Reference, outcome, body)
}

// VerifyPayment is the synchronous client poll. It asks the provider for
// the current transaction state under a bounded timeout, reconciles any
// settled outcome, and maps the result onto success/pending/error.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (string, *ReconcileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	data, err := s.provider.VerifyTransaction(ctx, reference)
	if err != nil {
		log.WithError(err).WithField("reference", reference).Error("provider verification call failed")
		return VerifyStatusError, nil, fmt.Errorf("%w: %v", models.ErrProviderRejected, err)
	}

	switch data.Status {
	case "success":
		result, err := s.reconcile(reference, models.OutcomeSuccess, []byte(data.GatewayResponse))
		if err != nil {
			return VerifyStatusError, nil, err
		}
		return VerifyStatusSuccess, result, nil
	case "failed", "abandoned":
		result, err := s.reconcile(reference, models.OutcomeFailure, []byte(data.GatewayResponse))
		if err != nil {
			return VerifyStatusError, nil, err
		}
		return VerifyStatusError, result, nil
	default:
		// "ongoing", "pending", "queued" and anything else the provider
		// has not settled yet.
		return VerifyStatusPending, nil, nil
	}
}

// reconcile is the single idempotent application step both delivery paths
// converge on. The conditional ledger insert is the critical section: of
// two racing deliveries for the same reference, exactly one inserts and
// applies the transition; the other observes the recorded outcome.
func (s *PaymentService) reconcile(reference, outcome string, payload []byte) (*ReconcileResult, error) {
	hash := sha256.Sum256(payload)

	var orderNumber string
	order, err := s.orders.FindByPaymentRef(reference)
	if err == nil {
		orderNumber = order.OrderNumber
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	entry := &models.PaymentEvent{
		Reference:   reference,
		OrderNumber: orderNumber,
		Outcome:     outcome,
		PayloadHash: hex.EncodeToString(hash[:]),
	}
	if err := s.ledgerRepo.Record(entry); err != nil {
		if errors.Is(err, models.ErrDuplicateEvent) {
			prior, lookupErr := s.ledgerRepo.Get(reference)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return &ReconcileResult{
				Reference:   reference,
				OrderNumber: prior.OrderNumber,
				Outcome:     prior.Outcome,
				Duplicate:   true,
			}, nil
		}
		return nil, err
	}

	if orderNumber == "" {
		// A reference we never initialized. Recorded for audit; there is
		// no order to advance.
		log.WithField("reference", reference).Warn("payment event for unknown reference")
		return &ReconcileResult{Reference: reference, Outcome: outcome}, nil
	}

	var transitionErr error
	if outcome == models.OutcomeSuccess {
		transitionErr = s.orders.MarkPaid(orderNumber)
	} else {
		transitionErr = s.orders.MarkFailed(orderNumber)
	}
	if transitionErr != nil {
		// The ledger now says applied but the order did not move. This
		// must not pass as success: hand the reference to the repair
		// queue and surface the failure.
		s.publishRepair(reference, orderNumber, outcome)
		log.WithError(transitionErr).WithFields(log.Fields{
			"reference":    reference,
			"order_number": orderNumber,
		}).Error("ledger recorded but order transition failed; repair required")
		return nil, fmt.Errorf("ledger/order divergence for %s: %w", reference, transitionErr)
	}

	return &ReconcileResult{
		Reference:   reference,
		OrderNumber: orderNumber,
		Outcome:     outcome,
	}, nil
}

// RepairMessage is the payload handed to the repair queue when the ledger
// and the order row diverge.
type RepairMessage struct {
	Reference   string `json:"reference"`
	OrderNumber string `json:"order_number"`
	Outcome     string `json:"outcome"`
}

func (s *PaymentService) publishRepair(reference, orderNumber, outcome string) {
	if s.publisher == nil {
		log.WithField("reference", reference).
			Error("no publisher configured; divergent reference not queued for repair")
		return
	}
	msg := RepairMessage{Reference: reference, OrderNumber: orderNumber, Outcome: outcome}
	if err := s.publisher.Publish(rabbitmq.RepairQueue, msg); err != nil {
		log.WithError(err).WithField("reference", reference).
			Error("failed to publish repair message")
	}
}

// Repair re-drives the order transition for a ledger entry whose original
// application failed. An order already at the target status counts as
// repaired.
func (s *PaymentService) Repair(msg RepairMessage) error {
	var err error
	if msg.Outcome == models.OutcomeSuccess {
		err = s.orders.MarkPaid(msg.OrderNumber)
	} else {
		err = s.orders.MarkFailed(msg.OrderNumber)
	}
	if err != nil && errors.Is(err, models.ErrStateConflict) {
		order, lookupErr := s.orders.orderRepo.GetByNumber(msg.OrderNumber)
		if lookupErr == nil && order.Status == models.StatusPaid && msg.Outcome == models.OutcomeSuccess {
			return nil
		}
	}
	return err
}

func newOrderNumber() string {
	return "KW-" + uuid.New().String()
}
