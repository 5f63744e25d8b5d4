package domain

import "strings"

// CanonicalStatus is the normalized job status vocabulary. Values outside the
// declared constants only appear when Normalize meets an unknown legacy string.
type CanonicalStatus string

const (
	StatusReceivedFrontDesk  CanonicalStatus = "received_front_desk"
	StatusReadyForStringing  CanonicalStatus = "ready_for_stringing"
	StatusReceivedByStringer CanonicalStatus = "received_by_stringer"
	StatusStringingCompleted CanonicalStatus = "stringing_completed"
	StatusReadyForPickup     CanonicalStatus = "ready_for_pickup"
	StatusWaitingPickup      CanonicalStatus = "waiting_pickup"
	StatusPickupCompleted    CanonicalStatus = "pickup_completed"
	StatusCancelled          CanonicalStatus = "cancelled"
)

// StatusSequence is the ordered lifecycle. Cancelled is out-of-band and not part of it.
var StatusSequence = []CanonicalStatus{
	StatusReceivedFrontDesk,
	StatusReadyForStringing,
	StatusReceivedByStringer,
	StatusStringingCompleted,
	StatusReadyForPickup,
	StatusWaitingPickup,
	StatusPickupCompleted,
}

var legacyStatuses = map[string]CanonicalStatus{
	"processing":           StatusReceivedFrontDesk,
	"received":             StatusReceivedFrontDesk,
	"ready-for-stringing":  StatusReadyForStringing,
	"received-by-stringer": StatusReceivedByStringer,
	"in-progress":          StatusReceivedByStringer,
	"complete":             StatusStringingCompleted,
	"waiting-pickup":       StatusWaitingPickup,
	"delivered":            StatusPickupCompleted,
}

var statusLabels = map[CanonicalStatus]string{
	StatusReceivedFrontDesk:  "Received by Front Desk",
	StatusReadyForStringing:  "Ready for Stringing",
	StatusReceivedByStringer: "Received by Stringer",
	StatusStringingCompleted: "Stringing Completed",
	StatusReadyForPickup:     "Ready for Pickup",
	StatusWaitingPickup:      "Waiting Pickup",
	StatusPickupCompleted:    "Pickup Completed",
	StatusCancelled:          "Cancelled",
}

// Normalize maps any historical or canonical spelling to its canonical key.
// Empty input is the initial status; unrecognized strings pass through unchanged.
func Normalize(status string) CanonicalStatus {
	if status == "" {
		return StatusReceivedFrontDesk
	}
	if mapped, ok := legacyStatuses[status]; ok {
		return mapped
	}
	return CanonicalStatus(status)
}

// NormalizePtr treats a nil status as the initial status.
func NormalizePtr(status *string) CanonicalStatus {
	if status == nil {
		return StatusReceivedFrontDesk
	}
	return Normalize(*status)
}

// IsKnown reports whether the status belongs to the canonical vocabulary.
func (s CanonicalStatus) IsKnown() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether no further workflow transitions are allowed.
func (s CanonicalStatus) IsTerminal() bool {
	return s == StatusPickupCompleted || s == StatusCancelled
}

// IsPickupMilestone reports whether the status marks stringing as done.
func (s CanonicalStatus) IsPickupMilestone() bool {
	return s == StatusStringingCompleted || s == StatusReadyForPickup
}

// AwaitsPickup reports whether the racquet is finished and waiting for the customer.
func (s CanonicalStatus) AwaitsPickup() bool {
	return s.IsPickupMilestone() || s == StatusWaitingPickup
}

// Label returns the display label, falling back to the raw key.
func (s CanonicalStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s CanonicalStatus) String() string {
	return string(s)
}

// DisplayLabel maps canonical and legacy keys to a human label.
func DisplayLabel(status string) string {
	return Normalize(status).Label()
}

// StepIndex returns the position of the status in the lifecycle, treating
// ready_for_pickup as the same milestone as stringing_completed. It returns -1
// for cancelled and unknown statuses.
func StepIndex(s CanonicalStatus) int {
	if s == StatusReadyForPickup {
		s = StatusStringingCompleted
	}
	for i, step := range LifecycleSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// LifecycleSteps is StatusSequence with the two equivalent pickup milestones collapsed.
var LifecycleSteps = []CanonicalStatus{
	StatusReceivedFrontDesk,
	StatusReadyForStringing,
	StatusReceivedByStringer,
	StatusStringingCompleted,
	StatusWaitingPickup,
	StatusPickupCompleted,
}

// ParseStatusList splits a comma separated filter into canonical statuses.
func ParseStatusList(raw string) []CanonicalStatus {
	var statuses []CanonicalStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		statuses = append(statuses, Normalize(part))
	}
	return statuses
}

// LegacyAliases returns every stored spelling that normalizes to one of the given statuses.
func LegacyAliases(statuses []CanonicalStatus) []string {
	wanted := make(map[CanonicalStatus]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}
	aliases := make([]string, 0, len(statuses)*2)
	for _, s := range statuses {
		aliases = append(aliases, string(s))
	}
	for legacy, canonical := range legacyStatuses {
		if _, ok := wanted[canonical]; ok {
			aliases = append(aliases, legacy)
		}
	}
	return aliases
}
