package payment

// EventKind is the closed set of webhook event types the storefront reacts
// to. Anything else the provider sends maps to EventOther and is ignored.
type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment.succeeded"
	EventPaymentFailed    EventKind = "payment.failed"
	EventPaymentCanceled  EventKind = "payment.canceled"
	EventOther            EventKind = "other"
)

// Event is a verified webhook notification from the gateway.
type Event struct {
	ID               string
	Kind             EventKind
	PaymentReference string
	// OrderID is the correlation token we put in the session metadata at
	// checkout time, echoed back by the provider.
	OrderID string
}

type eventPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	PaymentID string `json:"payment_id"`
	Metadata  struct {
		OrderID string `json:"order_id"`
	} `json:"metadata"`
}

func kindFromType(t string) EventKind {
	switch EventKind(t) {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled:
		return EventKind(t)
	default:
		return EventOther
	}
}
