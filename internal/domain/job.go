package domain

import "time"

// PaymentStatus is derived from amount paid vs amount due, never set directly.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// RushService enumerates turnaround add-ons.
type RushService string

const (
	RushNone    RushService = "none"
	RushOneDay  RushService = "1-day"
	RushTwoHour RushService = "2-hour"
)

// ServiceTier selects who strings the racquet.
type ServiceTier string

const (
	ServiceTierDefault    ServiceTier = "default"
	ServiceTierSpecialist ServiceTier = "stringer-a"
)

// AddOns captures optional intake selections that affect price or handling.
type AddOns struct {
	Rush           RushService
	Tier           ServiceTier
	GrommetRepair  bool
	StencilRequest string
	GripAddOn      bool
}

// TensionOverride records a staff decision to string at a different tension.
// All three values are set together or the override is absent.
type TensionOverride struct {
	Lbs    int
	Staff  string
	Reason string
}

// Job is one racquet-stringing order.
type Job struct {
	ID           string
	TicketNumber string

	MemberName       string
	Phone            string
	Email            *string
	RacquetType      string
	StringID         string
	RequestedTension *int
	Notes            string

	TermsAccepted   bool
	TermsAcceptedAt *time.Time

	DropInDate       time.Time
	PickupDeadline   *time.Time
	ReadyForPickupAt *time.Time
	Status           CanonicalStatus

	// Amounts are in cents.
	AmountDue     int64
	AmountPaid    int64
	PaymentStatus PaymentStatus
	PaidAt        *time.Time
	PaidByStaff   *string

	AssignedStringer *string
	AddOns           AddOns
	MaxTension       *int
	TensionOverride  *TensionOverride
	PickupSignature  *string
	PickupNotes      string
	PickedUpAt       *time.Time
	PickedUpBy       *string
	Day8ReminderAt   *time.Time
	Day10ReminderAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined data.
	String        *StringOption
	StatusEvents  []StatusEvent
	PaymentEvents []PaymentEvent
}

// FinalTension returns the tension the racquet is strung at.
func (j *Job) FinalTension() *int {
	if j.TensionOverride != nil {
		lbs := j.TensionOverride.Lbs
		return &lbs
	}
	return j.RequestedTension
}

// StringOption is an entry of the string catalog.
type StringOption struct {
	ID         string
	Name       string
	Brand      string
	Gauge      string
	Active     bool
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName joins brand, name and gauge.
func (s StringOption) DisplayName() string {
	name := s.Name
	if s.Brand != "" {
		name = s.Brand + " " + name
	}
	if s.Gauge != "" {
		name += " " + s.Gauge
	}
	return name
}
