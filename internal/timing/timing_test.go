package timing

import (
	"testing"
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
)

func datePtr(t time.Time) *time.Time {
	y, m, d := t.Date()
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestDueStatus_Bands(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	at := time.Date(2026, 5, 14, 15, 30, 0, 0, loc)
	today := Today(at, loc)

	tests := []struct {
		name   string
		offset int
		want   Level
		label  string
	}{
		{"overdue", -1, LevelOverdue, "OVERDUE"},
		{"today", 0, LevelDueToday, "DUE TODAY"},
		{"one day", 1, LevelUrgent, "DUE IN 1 DAY"},
		{"two days", 2, LevelWarning, "DUE IN 2 DAYS"},
		{"three days", 3, LevelSoon, "DUE IN 3 DAYS"},
		{"seven days", 7, LevelSoon, "DUE IN 7 DAYS"},
		{"nine days", 9, LevelOK, "DUE IN 9 DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &domain.Job{Status: domain.StatusReceivedByStringer, PickupDeadline: datePtr(today.AddDate(0, 0, tt.offset))}
			got := DueStatus(job, at, loc)
			if got.Level != tt.want || got.Label != tt.label {
				t.Fatalf("DueStatus() = %+v, want %s %q", got, tt.want, tt.label)
			}
		})
	}
}

func TestDueStatus_LateEveningUsesShopDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 in Toronto is already the next day in UTC.
	at := time.Date(2026, 5, 14, 23, 30, 0, 0, loc)
	deadline := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	job := &domain.Job{Status: domain.StatusWaitingPickup, PickupDeadline: &deadline}
	if got := DueStatus(job, at, loc); got.Level != LevelDueToday {
		t.Fatalf("got %+v", got)
	}
}

func TestDueStatus_Suppressed(t *testing.T) {
	at := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	deadline := datePtr(at)
	cases := map[string]*domain.Job{
		"nil job":     nil,
		"no deadline": {Status: domain.StatusReceivedFrontDesk},
		"picked up":   {Status: domain.StatusPickupCompleted, PickupDeadline: deadline},
		"cancelled":   {Status: domain.StatusCancelled, PickupDeadline: deadline},
	}
	for name, job := range cases {
		if got := DueStatus(job, at, time.UTC); got.Visible() {
			t.Errorf("%s: badge %+v should be hidden", name, got)
		}
	}
}

func TestPickupCountdown(t *testing.T) {
	at := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		ago    int
		status domain.CanonicalStatus
		want   Level
		label  string
	}{
		{"fresh", 3, domain.StatusWaitingPickup, LevelNone, ""},
		{"day seven", 7, domain.StatusWaitingPickup, LevelNone, ""},
		{"day eight", 8, domain.StatusReadyForPickup, LevelWarning, "2 days left"},
		{"day nine", 9, domain.StatusWaitingPickup, LevelWarning, "1 days left"},
		{"day ten", 10, domain.StatusStringingCompleted, LevelOverdue, "OVERDUE (Day 10)"},
		{"day eleven", 11, domain.StatusWaitingPickup, LevelOverdue, "OVERDUE (Day 11)"},
		{"picked up", 11, domain.StatusPickupCompleted, LevelNone, ""},
		{"still stringing", 11, domain.StatusReceivedByStringer, LevelNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready := at.Add(-time.Duration(tt.ago) * 24 * time.Hour)
			job := &domain.Job{Status: tt.status, ReadyForPickupAt: &ready}
			got := PickupCountdown(job, at, time.UTC)
			if got.Level != tt.want || got.Label != tt.label {
				t.Fatalf("PickupCountdown() = %+v, want %s %q", got, tt.want, tt.label)
			}
		})
	}
}

func TestPickupCountdown_NoTimestamp(t *testing.T) {
	job := &domain.Job{Status: domain.StatusWaitingPickup}
	if got := PickupCountdown(job, time.Now(), time.UTC); got.Visible() {
		t.Fatalf("got %+v", got)
	}
}

func TestReminderEligibility(t *testing.T) {
	ready := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	job := &domain.Job{Status: domain.StatusWaitingPickup, ReadyForPickupAt: &ready}

	justBefore := ready.Add(8*24*time.Hour - time.Second)
	if IsDay8Eligible(job, justBefore) {
		t.Error("day 8 eligible one second early")
	}
	if !IsDay8Eligible(job, ready.Add(8*24*time.Hour)) {
		t.Error("day 8 not eligible at exactly eight days")
	}
	if IsDay10Eligible(job, ready.Add(9*24*time.Hour)) {
		t.Error("day 10 eligible after nine days")
	}
	if !IsDay10Eligible(job, ready.Add(10*24*time.Hour)) {
		t.Error("day 10 not eligible after ten days")
	}

	done := *job
	done.Status = domain.StatusPickupCompleted
	if IsDay8Eligible(&done, ready.Add(30*24*time.Hour)) {
		t.Error("completed pickup must not be eligible")
	}
	cancelled := *job
	cancelled.Status = domain.StatusCancelled
	if IsDay8Eligible(&cancelled, ready.Add(30*24*time.Hour)) || IsDay10Eligible(&cancelled, ready.Add(30*24*time.Hour)) {
		t.Error("cancelled job must not be eligible")
	}
	if IsDay8Eligible(&domain.Job{Status: domain.StatusWaitingPickup}, ready.Add(30*24*time.Hour)) {
		t.Error("job without ready timestamp must not be eligible")
	}
}

func TestDefaultPickupDeadline(t *testing.T) {
	dropIn := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)
	got := DefaultPickupDeadline(dropIn, 3)
	want := time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}
