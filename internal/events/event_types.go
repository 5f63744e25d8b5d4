package events

import (
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated       EventType = "job_created"
	EventJobStatusChanged EventType = "job_status_changed"
	EventPaymentRecorded  EventType = "payment_recorded"
	EventPickupCompleted  EventType = "pickup_completed"
	EventReminderSent     EventType = "reminder_sent"
)

// Actor names the staff member behind an event. Intake submissions have no staff.
type Actor struct {
	StaffName *string `json:"staff_name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     string      `json:"job_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	TicketNumber string `json:"ticket_number"`
	MemberName   string `json:"member_name"`
	AmountDue    int64  `json:"amount_due"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	OldStatus domain.CanonicalStatus `json:"old_status"`
	NewStatus domain.CanonicalStatus `json:"new_status"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	Amount        int64                `json:"amount"`
	AmountPaid    int64                `json:"amount_paid"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// PickupCompletedPayload payload.
type PickupCompletedPayload struct {
	TicketNumber string `json:"ticket_number"`
}

// ReminderSentPayload payload.
type ReminderSentPayload struct {
	TemplateKey string `json:"template_key"`
	ReceiptID   string `json:"receipt_id"`
}
