// Package timeline merges a job's status and payment events into one
// ordered audit trail with a single current-step marker.
package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// Kind distinguishes recorded entries from steps the job has not reached yet.
type Kind string

const (
	KindStatus  Kind = "status"
	KindPayment Kind = "payment"
	KindPending Kind = "pending"
)

// Entry is one row of the timeline.
type Entry struct {
	Kind      Kind       `json:"kind"`
	EventType string     `json:"event_type"`
	Label     string     `json:"label"`
	At        *time.Time `json:"at,omitempty"`
	StaffName *string    `json:"staff_name,omitempty"`
	Amount    int64      `json:"amount_cents,omitempty"`
	Method    *string    `json:"payment_method,omitempty"`
	Current   bool       `json:"current"`
	Synthetic bool       `json:"synthetic,omitempty"`
}

const paymentLabel = "Payment Recorded"

var auxiliaryLabels = map[string]string{
	domain.EventTypeCreated:          "Job Created",
	domain.EventTypePaymentRecorded:  paymentLabel,
	domain.EventTypeTensionSMSSent:   "Tension SMS Sent",
	domain.EventTypeSMSSent:          "SMS Sent",
	domain.EventTypeStringerAssigned: "Stringer Assigned",
	domain.EventTypeTensionOverride:  "Tension Override",
}

// Label maps an event type to its display label. Unknown keys are humanized.
func Label(eventType string) string {
	if label, ok := auxiliaryLabels[eventType]; ok {
		return label
	}
	if status := domain.Normalize(eventType); status.IsKnown() {
		return status.Label()
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(eventType)
}

// Assemble builds the timeline. The payment_recorded status events mirror
// payment events one to one, so only the payment event with its amount is shown.
func Assemble(job *domain.Job, statusEvents []domain.StatusEvent, paymentEvents []domain.PaymentEvent) []Entry {
	if job == nil {
		return nil
	}
	if len(statusEvents) == 0 && len(paymentEvents) == 0 {
		return synthetic(job)
	}

	entries := make([]Entry, 0, len(statusEvents)+len(paymentEvents)+len(domain.LifecycleSteps))
	// current derives from recorded events only, never from job.Status
	highest := -1
	for _, ev := range statusEvents {
		if ev.EventType == domain.EventTypePaymentRecorded && len(paymentEvents) > 0 {
			continue
		}
		entries = append(entries, Entry{
			Kind:      KindStatus,
			EventType: ev.EventType,
			Label:     Label(ev.EventType),
			At:        timePtr(ev.CreatedAt),
			StaffName: ev.StaffName,
		})
		if idx := stepForEvent(ev.EventType); idx > highest {
			highest = idx
		}
	}
	for _, pe := range paymentEvents {
		entries = append(entries, Entry{
			Kind:      KindPayment,
			EventType: domain.EventTypePaymentRecorded,
			Label:     paymentLabel,
			At:        timePtr(pe.CreatedAt),
			StaffName: staffPtr(pe.StaffName),
			Amount:    pe.Amount,
			Method:    pe.PaymentMethod,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i]).Before(sortKey(entries[j]))
	})

	return markCurrent(appendPending(entries, job, highest))
}

// synthetic derives a timeline from the job's status alone for jobs that
// predate the audit tables.
func synthetic(job *domain.Job) []Entry {
	if job.Status == domain.StatusCancelled {
		return []Entry{{
			Kind:      KindStatus,
			EventType: string(domain.StatusCancelled),
			Label:     domain.StatusCancelled.Label(),
			At:        timePtr(job.UpdatedAt),
			Current:   true,
			Synthetic: true,
		}}
	}

	reached := domain.StepIndex(job.Status)
	if reached < 0 {
		reached = 0
	}
	entries := make([]Entry, 0, len(domain.LifecycleSteps))
	for i := 0; i <= reached; i++ {
		at := job.UpdatedAt
		if i == 0 {
			at = job.DropInDate
		}
		step := domain.LifecycleSteps[i]
		entries = append(entries, Entry{
			Kind:      KindStatus,
			EventType: string(step),
			Label:     step.Label(),
			At:        timePtr(at),
			Synthetic: true,
		})
	}
	return markCurrent(appendPending(entries, job, reached))
}

func appendPending(entries []Entry, job *domain.Job, highest int) []Entry {
	if job.Status.IsTerminal() {
		return entries
	}
	for i := highest + 1; i < len(domain.LifecycleSteps); i++ {
		step := domain.LifecycleSteps[i]
		entries = append(entries, Entry{
			Kind:      KindPending,
			EventType: string(step),
			Label:     step.Label(),
		})
	}
	return entries
}

// markCurrent flags the first pending step, or the last entry when every step is reached.
func markCurrent(entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	for i := range entries {
		if entries[i].Kind == KindPending {
			entries[i].Current = true
			return entries
		}
	}
	entries[len(entries)-1].Current = true
	return entries
}

func stepForEvent(eventType string) int {
	if eventType == domain.EventTypeCreated {
		return 0
	}
	status := domain.Normalize(eventType)
	if !status.IsKnown() {
		return -1
	}
	return domain.StepIndex(status)
}

func sortKey(e Entry) time.Time {
	if e.At == nil {
		return time.Unix(0, 0)
	}
	return *e.At
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func staffPtr(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
