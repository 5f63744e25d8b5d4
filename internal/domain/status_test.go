package domain

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want CanonicalStatus
	}{
		{"", StatusReceivedFrontDesk},
		{"processing", StatusReceivedFrontDesk},
		{"received", StatusReceivedFrontDesk},
		{"received_front_desk", StatusReceivedFrontDesk},
		{"ready-for-stringing", StatusReadyForStringing},
		{"ready_for_stringing", StatusReadyForStringing},
		{"received-by-stringer", StatusReceivedByStringer},
		{"in-progress", StatusReceivedByStringer},
		{"complete", StatusStringingCompleted},
		{"ready_for_pickup", StatusReadyForPickup},
		{"waiting-pickup", StatusWaitingPickup},
		{"delivered", StatusPickupCompleted},
		{"cancelled", StatusCancelled},
		{"on-hold", CanonicalStatus("on-hold")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNil(t *testing.T) {
	if got := NormalizePtr(nil); got != StatusReceivedFrontDesk {
		t.Fatalf("NormalizePtr(nil) = %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "processing", "received", "ready-for-stringing", "received-by-stringer", "in-progress",
		"complete", "waiting-pickup", "delivered", "cancelled", "pickup_completed", "garbage", "Complete",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := map[string]string{
		"received_front_desk": "Received by Front Desk",
		"processing":          "Received by Front Desk",
		"complete":            "Stringing Completed",
		"delivered":           "Pickup Completed",
		"mystery":             "mystery",
	}
	for in, want := range tests {
		if got := DisplayLabel(in); got != want {
			t.Errorf("DisplayLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStepIndex(t *testing.T) {
	if StepIndex(StatusReadyForPickup) != StepIndex(StatusStringingCompleted) {
		t.Fatal("ready_for_pickup and stringing_completed must share a step")
	}
	if StepIndex(StatusCancelled) != -1 {
		t.Fatal("cancelled is not a lifecycle step")
	}
	if StepIndex(StatusReceivedFrontDesk) != 0 || StepIndex(StatusPickupCompleted) != len(LifecycleSteps)-1 {
		t.Fatal("unexpected lifecycle bounds")
	}
}

func TestCanonicalStatus_Predicates(t *testing.T) {
	if !StatusPickupCompleted.IsTerminal() || !StatusCancelled.IsTerminal() || StatusWaitingPickup.IsTerminal() {
		t.Error("IsTerminal mismatch")
	}
	if !StatusReadyForPickup.IsPickupMilestone() || StatusWaitingPickup.IsPickupMilestone() {
		t.Error("IsPickupMilestone mismatch")
	}
	if !StatusWaitingPickup.AwaitsPickup() || StatusReceivedByStringer.AwaitsPickup() {
		t.Error("AwaitsPickup mismatch")
	}
	if CanonicalStatus("on-hold").IsKnown() {
		t.Error("unknown status reported as known")
	}
}

func TestLegacyAliases(t *testing.T) {
	aliases := LegacyAliases([]CanonicalStatus{StatusPickupCompleted})
	seen := map[string]bool{}
	for _, a := range aliases {
		seen[a] = true
	}
	if !seen["pickup_completed"] || !seen["delivered"] {
		t.Fatalf("aliases = %v", aliases)
	}
	if seen["complete"] {
		t.Fatalf("unexpected alias in %v", aliases)
	}
}
