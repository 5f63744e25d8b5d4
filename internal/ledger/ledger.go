// Package ledger computes balances and payment status for racquet jobs.
// Every function here is pure; persistence lives in the repository layer.
package ledger

import (
	"strings"
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// Policy pins down the degenerate amount_due == 0 case.
type Policy struct {
	// ZeroDueCountsAsPaid makes a job with nothing due count as fully paid.
	ZeroDueCountsAsPaid bool
}

// DefaultPolicy never treats a zero-due job as fully paid.
var DefaultPolicy = Policy{}

// Payment is a request to move money into a job's ledger.
type Payment struct {
	Amount    int64
	StaffName string
	Method    string
	At        time.Time
}

// BalanceDue is amount_due - amount_paid floored at zero.
func BalanceDue(job *domain.Job) int64 {
	if job == nil {
		return 0
	}
	balance := job.AmountDue - job.AmountPaid
	if balance < 0 {
		return 0
	}
	return balance
}

// IsFullyPaid applies the policy's zero-due rule.
func (p Policy) IsFullyPaid(job *domain.Job) bool {
	if job == nil {
		return false
	}
	if job.AmountDue <= 0 {
		return p.ZeroDueCountsAsPaid
	}
	return job.AmountPaid >= job.AmountDue
}

// IsFullyPaid uses DefaultPolicy.
func IsFullyPaid(job *domain.Job) bool {
	return DefaultPolicy.IsFullyPaid(job)
}

// DerivePaymentStatus maps (paid, due) to exactly one payment status.
func DerivePaymentStatus(amountPaid, amountDue int64) domain.PaymentStatus {
	switch {
	case amountPaid >= amountDue:
		return domain.PaymentStatusPaid
	case amountPaid > 0:
		return domain.PaymentStatusPartial
	default:
		return domain.PaymentStatusUnpaid
	}
}

// ApplyPayment validates a payment against the job and returns the event to
// append together with the job's updated cached totals. Overpayment is capped
// at the outstanding balance.
func ApplyPayment(job domain.Job, payment Payment) (domain.PaymentEvent, domain.Job, error) {
	if payment.Amount <= 0 {
		return domain.PaymentEvent{}, job, errorutil.NewInvalidAmount(payment.Amount)
	}
	staff := strings.TrimSpace(payment.StaffName)
	if staff == "" {
		return domain.PaymentEvent{}, job, errorutil.NewValidationError("staff name is required", map[string]any{"field": "staff_name"})
	}
	balance := BalanceDue(&job)
	if balance <= 0 {
		return domain.PaymentEvent{}, job, errorutil.NewAlreadyPaid(job.AmountDue, job.AmountPaid)
	}

	amount := payment.Amount
	if amount > balance {
		amount = balance
	}
	at := payment.At
	if at.IsZero() {
		at = time.Now()
	}

	event := domain.PaymentEvent{
		JobID:     job.ID,
		Amount:    amount,
		StaffName: staff,
		CreatedAt: at,
	}
	if method := strings.TrimSpace(payment.Method); method != "" {
		event.PaymentMethod = &method
	}

	job.AmountPaid += amount
	job.PaymentStatus = DerivePaymentStatus(job.AmountPaid, job.AmountDue)
	job.PaidAt = &at
	job.PaidByStaff = &staff
	return event, job, nil
}

// FullBalance builds a payment for the whole outstanding balance.
func FullBalance(job *domain.Job, staffName, method string, at time.Time) (Payment, error) {
	balance := BalanceDue(job)
	if balance <= 0 {
		var due, paid int64
		if job != nil {
			due, paid = job.AmountDue, job.AmountPaid
		}
		return Payment{}, errorutil.NewAlreadyPaid(due, paid)
	}
	return Payment{Amount: balance, StaffName: staffName, Method: method, At: at}, nil
}

// Sum totals payment event amounts.
func Sum(events []domain.PaymentEvent) int64 {
	var total int64
	for _, e := range events {
		total += e.Amount
	}
	return total
}

// Drift describes a mismatch between the cached total and the ledger.
type Drift struct {
	JobID  string
	Cached int64
	Ledger int64
}

// Reconcile recomputes amount_paid and payment_status from the payment events,
// which are the source of truth. It reports whether the cached values changed.
func Reconcile(job domain.Job, events []domain.PaymentEvent) (domain.Job, *Drift) {
	total := Sum(events)
	status := DerivePaymentStatus(total, job.AmountDue)
	if total == job.AmountPaid && status == job.PaymentStatus {
		return job, nil
	}
	drift := &Drift{JobID: job.ID, Cached: job.AmountPaid, Ledger: total}
	job.AmountPaid = total
	job.PaymentStatus = status
	return job, drift
}
