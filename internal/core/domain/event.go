package domain

import (
	"encoding/json"
	"fmt"
)

// Webhook event kinds that trigger a ledger credit. Every other kind is
// acknowledged and ignored.
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentAuthorized = "payment.authorized"
)

// WebhookEvent is the parsed Razorpay webhook envelope. It is transient:
// verified, processed once, then discarded. Durability lives in the
// Transaction a credit event produces.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment"`
}

// PaymentEntity is the nested payment object inside a webhook event.
// Amount is in minor currency units (paise for INR, cents for USD).
type PaymentEntity struct {
	ID       string       `json:"id"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Status   string       `json:"status"`
	OrderID  string       `json:"order_id"`
	Method   string       `json:"method"`
	Notes    PaymentNotes `json:"notes"`
}

// PaymentNotes carries the target account set at order-creation time. The
// webhook arrives out-of-band from any authenticated request, so the owner
// is recovered from here rather than from a session.
type PaymentNotes struct {
	OwnerID   string `json:"ownerId"`
	OwnerType string `json:"ownerType"`
}

// UnmarshalJSON tolerates Razorpay sending notes as an empty array instead
// of an object when no notes were attached.
func (n *PaymentNotes) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		*n = PaymentNotes{}
		return nil
	}
	type alias PaymentNotes
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = PaymentNotes(a)
	return nil
}

// ParseWebhookEvent decodes a raw webhook body. The raw bytes must already
// have passed signature verification.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decoding webhook event: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("webhook event has no event kind")
	}
	return &ev, nil
}

// IsCaptured reports whether the event kind signals a completed payment.
func (e *WebhookEvent) IsCaptured() bool {
	return e.Event == EventPaymentCaptured || e.Event == EventPaymentAuthorized
}
