package domain

import "time"

// Auxiliary audit event types. Status transitions use the canonical status key as event type.
const (
	EventTypeCreated          = "created"
	EventTypePaymentRecorded  = "payment_recorded"
	EventTypeTensionSMSSent   = "tension_sms_sent"
	EventTypeSMSSent          = "sms_sent"
	EventTypeStringerAssigned = "stringer_assigned"
	EventTypeTensionOverride  = "tension_override"
)

// StatusEvent is an immutable audit record. Append-only.
type StatusEvent struct {
	ID        string
	JobID     string
	EventType string
	StaffName *string
	CreatedAt time.Time
}

// PaymentEvent is an immutable ledger record. Amount is in cents and always positive.
type PaymentEvent struct {
	ID            string
	JobID         string
	Amount        int64
	PaymentMethod *string
	StaffName     string
	CreatedAt     time.Time
}
