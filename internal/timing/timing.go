// Package timing classifies job urgency from pickup deadlines and
// ready-for-pickup timestamps. All functions are pure; callers pass "now".
package timing

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// Level is a badge severity.
type Level string

const (
	LevelNone     Level = "none"
	LevelOverdue  Level = "overdue"
	LevelDueToday Level = "due_today"
	LevelUrgent   Level = "urgent"
	LevelWarning  Level = "warning"
	LevelSoon     Level = "soon"
	LevelOK       Level = "ok"
)

// Badge is a classified deadline with its display label. Level none means no badge.
type Badge struct {
	Level Level  `json:"level"`
	Label string `json:"label,omitempty"`
	Days  int    `json:"days"`
}

// Visible reports whether the badge should be shown.
func (b Badge) Visible() bool {
	return b.Level != LevelNone
}

const (
	day8  = 8
	day10 = 10
)

// DueStatus compares the pickup deadline with today's calendar date in loc.
// Terminal jobs never carry a due badge.
func DueStatus(job *domain.Job, at time.Time, loc *time.Location) Badge {
	if job == nil || job.PickupDeadline == nil || job.Status.IsTerminal() {
		return Badge{Level: LevelNone}
	}
	d := CalendarDaysBetween(today(at, loc), *job.PickupDeadline)
	switch {
	case d < 0:
		return Badge{Level: LevelOverdue, Label: "OVERDUE", Days: d}
	case d == 0:
		return Badge{Level: LevelDueToday, Label: "DUE TODAY", Days: d}
	case d == 1:
		return Badge{Level: LevelUrgent, Label: "DUE IN 1 DAY", Days: d}
	case d == 2:
		return Badge{Level: LevelWarning, Label: "DUE IN 2 DAYS", Days: d}
	case d <= 7:
		return Badge{Level: LevelSoon, Label: fmt.Sprintf("DUE IN %d DAYS", d), Days: d}
	default:
		return Badge{Level: LevelOK, Label: fmt.Sprintf("DUE IN %d DAYS", d), Days: d}
	}
}

// PickupCountdown reports how long a finished racquet has been waiting.
// It stays hidden for the first eight calendar days.
func PickupCountdown(job *domain.Job, at time.Time, loc *time.Location) Badge {
	if job == nil || job.ReadyForPickupAt == nil || !job.Status.AwaitsPickup() {
		return Badge{Level: LevelNone}
	}
	days := DaysSinceReady(job, at, loc)
	switch {
	case days >= day10:
		return Badge{Level: LevelOverdue, Label: fmt.Sprintf("OVERDUE (Day %d)", days), Days: days}
	case days >= day8:
		return Badge{Level: LevelWarning, Label: fmt.Sprintf("%d days left", day10-days), Days: days}
	default:
		return Badge{Level: LevelNone, Days: days}
	}
}

// DaysSinceReady counts calendar days between ready_for_pickup_at and today in loc.
func DaysSinceReady(job *domain.Job, at time.Time, loc *time.Location) int {
	if job == nil || job.ReadyForPickupAt == nil {
		return 0
	}
	return CalendarDaysBetween(job.ReadyForPickupAt.In(location(loc)), today(at, loc))
}

// IsDay8Eligible reports whether the day-8 pickup reminder may be sent.
func IsDay8Eligible(job *domain.Job, at time.Time) bool {
	return elapsedAtLeast(job, at, day8)
}

// IsDay10Eligible reports whether the day-10 final notice may be sent.
func IsDay10Eligible(job *domain.Job, at time.Time) bool {
	return elapsedAtLeast(job, at, day10)
}

func elapsedAtLeast(job *domain.Job, at time.Time, days int) bool {
	if job == nil || job.Status.IsTerminal() || job.ReadyForPickupAt == nil {
		return false
	}
	return !at.Before(job.ReadyForPickupAt.Add(time.Duration(days) * 24 * time.Hour))
}

// DefaultPickupDeadline is the drop-in date plus the configured number of days.
func DefaultPickupDeadline(dropIn time.Time, days int) time.Time {
	y, m, d := dropIn.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
}

// CalendarDaysBetween returns the number of calendar days from a to b using
// each value's own date fields, so DST shifts never skew the count.
func CalendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Today returns midnight of the current calendar day in loc.
func Today(at time.Time, loc *time.Location) time.Time {
	return today(at, loc)
}

func today(at time.Time, loc *time.Location) time.Time {
	return now.With(at.In(location(loc))).BeginningOfDay()
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
