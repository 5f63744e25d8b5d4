package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// Warnings are failures of secondary effects that ran after the primary write
// succeeded. They never undo the primary change.
type Warnings []*apperrors.DomainError

// JobResult is a job mutation outcome.
type JobResult struct {
	Job      *domain.Job
	Warnings Warnings
}

// auditTrail appends status events after the primary change is committed.
type auditTrail struct {
	events  repository.StatusEventRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// record appends one event and converts a failure into a warning.
func (a auditTrail) record(ctx context.Context, jobID, eventType string, staffName *string) *apperrors.DomainError {
	if a.events == nil {
		return nil
	}
	event := &domain.StatusEvent{JobID: jobID, EventType: eventType, StaffName: staffName}
	if err := a.events.Create(ctx, event); err != nil {
		a.logger.Warn("audit write failed",
			zap.String("job_id", jobID),
			zap.String("event_type", eventType),
			zap.Error(err))
		a.metrics.RecordAuditFailure(eventType)
		return apperrors.NewAuditWriteFailure(eventType, err)
	}
	return nil
}

func (w Warnings) add(warning *apperrors.DomainError) Warnings {
	if warning == nil {
		return w
	}
	return append(w, warning)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, now time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	_ = dispatcher.Publish(ctx, event)
}

func staffActor(name string) events.Actor {
	if name == "" {
		return events.Actor{}
	}
	return events.Actor{StaffName: &name}
}

func requireStaff(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("staff name is required", map[string]any{"field": "staff_name"})
	}
	return name, nil
}

func generateTicketNumber() string {
	return "STR-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
