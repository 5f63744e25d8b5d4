package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/observability"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// ActivityLog subscribes to every domain event and writes one structured log
// line per event, so the shop's activity can be followed from the log stream.
type ActivityLog struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewActivityLog creates the subscriber. Call Register to attach it.
func NewActivityLog(logger *zap.Logger, metrics *observability.Metrics) *ActivityLog {
	return &ActivityLog{logger: logger.Named("activity"), metrics: metrics}
}

// Register subscribes to all event types.
func (a *ActivityLog) Register(d events.Dispatcher) {
	for _, et := range []events.EventType{
		events.EventJobCreated,
		events.EventJobStatusChanged,
		events.EventPaymentRecorded,
		events.EventPickupCompleted,
		events.EventReminderSent,
	} {
		d.Subscribe(et, a.handle)
	}
}

func (a *ActivityLog) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("job_id", event.JobID),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.StaffName != nil {
		fields = append(fields, zap.String("staff", *event.Actor.StaffName))
	}
	fields = append(fields, payloadFields(event.Payload)...)

	a.metrics.RecordEvent(string(event.Type))
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func payloadFields(payload any) []zap.Field {
	switch p := payload.(type) {
	case events.JobCreatedPayload:
		return []zap.Field{
			zap.String("ticket", p.TicketNumber),
			zap.String("member", p.MemberName),
			zap.String("amount_due", apperrors.FormatCents(p.AmountDue)),
		}
	case events.JobStatusChangedPayload:
		return []zap.Field{zap.String("from", string(p.OldStatus)), zap.String("to", string(p.NewStatus))}
	case events.PaymentRecordedPayload:
		return []zap.Field{
			zap.String("amount", apperrors.FormatCents(p.Amount)),
			zap.String("amount_paid", apperrors.FormatCents(p.AmountPaid)),
			zap.String("payment_status", string(p.PaymentStatus)),
		}
	case events.PickupCompletedPayload:
		return []zap.Field{zap.String("ticket", p.TicketNumber)}
	case events.ReminderSentPayload:
		return []zap.Field{zap.String("template", p.TemplateKey), zap.String("receipt", p.ReceiptID)}
	case nil:
		return nil
	default:
		return []zap.Field{zap.Any("payload", p)}
	}
}
