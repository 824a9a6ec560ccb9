package paystack

import (
	"encoding/json"
	"fmt"
)

// EventKind is the closed set of webhook event categories the pipeline acts
// on. Any provider event outside the charge lifecycle maps to EventUnknown
// and is acknowledged without effect.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventChargeSuccess
	EventChargeFailed
)

// WebhookEvent is a parsed provider webhook payload. Parse it only after
// the signature has been verified.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  WebhookData     `json:"data"`
	Raw   json.RawMessage `json:"-"`
}

// WebhookData carries the transaction fields shared by charge events.
type WebhookData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

// Kind maps the provider's string event type onto the closed variant set.
func (e WebhookEvent) Kind() EventKind {
	switch e.Event {
	case "charge.success":
		return EventChargeSuccess
	case "charge.failed":
		return EventChargeFailed
	default:
		return EventUnknown
	}
}

// ParseWebhookEvent decodes a verified webhook body.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	event.Raw = append(json.RawMessage(nil), body...)
	return event, nil
}
