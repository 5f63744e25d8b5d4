package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/clock"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// PaymentService records payments against jobs.
type PaymentService struct {
	jobs       repository.JobRepository
	payments   repository.PaymentRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
	audit      auditTrail
}

// PaymentDependencies bundles collaborators for the payment service.
type PaymentDependencies struct {
	JobRepo         repository.JobRepository
	PaymentRepo     repository.PaymentRepository
	StatusEventRepo repository.StatusEventRepository
	Dispatcher      events.Dispatcher
	Clock           clock.Clock
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// PaymentResult carries the stored event and the job's new totals.
type PaymentResult struct {
	Job      *domain.Job
	Event    domain.PaymentEvent
	Warnings Warnings
}

// ReconcileReport summarizes a reconcile run.
type ReconcileReport struct {
	Checked int
	Fixed   []ledger.Drift
}

// NewPaymentService constructs the service.
func NewPaymentService(deps PaymentDependencies) *PaymentService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		jobs:       deps.JobRepo,
		payments:   deps.PaymentRepo,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		logger:     logger,
		metrics:    deps.Metrics,
		audit:      auditTrail{events: deps.StatusEventRepo, logger: logger, metrics: deps.Metrics},
	}
}

// RecordPayment applies a payment. Amounts above the balance are clamped.
func (s *PaymentService) RecordPayment(ctx context.Context, jobID string, amount int64, staffName, method string) (*PaymentResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	return s.apply(ctx, job, ledger.Payment{Amount: amount, StaffName: staffName, Method: method, At: s.clock.Now()})
}

// PayFullBalance records a payment for exactly the outstanding balance.
func (s *PaymentService) PayFullBalance(ctx context.Context, jobID, staffName, method string) (*PaymentResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	payment, err := ledger.FullBalance(job, staffName, method, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, job, payment)
}

// apply persists the payment event and cached totals together, then appends
// the best-effort payment_recorded audit event.
func (s *PaymentService) apply(ctx context.Context, job *domain.Job, payment ledger.Payment) (*PaymentResult, error) {
	previousPaid := job.AmountPaid
	event, updated, err := ledger.ApplyPayment(*job, payment)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Record(ctx, &event, &updated, previousPaid); err != nil {
		if errors.Is(err, repository.ErrStaleJob) {
			return nil, apperrors.NewConflict("job was paid concurrently, reload and retry", map[string]any{"job_id": job.ID})
		}
		return nil, err
	}

	result := &PaymentResult{Job: &updated, Event: event}
	staff := event.StaffName
	result.Warnings = result.Warnings.add(s.audit.record(ctx, updated.ID, domain.EventTypePaymentRecorded, &staff))
	s.metrics.RecordPayment(event.Amount)

	s.logger.Info("payment recorded",
		zap.String("job_id", updated.ID),
		zap.Int64("amount", event.Amount),
		zap.Int64("requested", payment.Amount),
		zap.String("payment_status", string(updated.PaymentStatus)))

	publish(ctx, s.dispatcher, s.clock.Now(), events.Event{
		Type:  events.EventPaymentRecorded,
		JobID: updated.ID,
		Actor: staffActor(staff),
		Payload: events.PaymentRecordedPayload{
			Amount:        event.Amount,
			AmountPaid:    updated.AmountPaid,
			PaymentStatus: updated.PaymentStatus,
		},
	})
	return result, nil
}

// Reconcile recomputes every job's cached totals from its payment events.
// With dryRun set it only reports the drift.
func (s *PaymentService) Reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	jobs, err := s.jobs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	report := &ReconcileReport{}
	for i := range jobs {
		events, err := s.payments.ListByJob(ctx, jobs[i].ID)
		if err != nil {
			return report, err
		}
		report.Checked++
		fixed, drift := ledger.Reconcile(jobs[i], events)
		if drift == nil {
			continue
		}
		s.logger.Warn("payment drift",
			zap.String("job_id", drift.JobID),
			zap.Int64("cached", drift.Cached),
			zap.Int64("ledger", drift.Ledger),
			zap.Bool("dry_run", dryRun))
		if !dryRun {
			if err := s.jobs.UpdatePaymentTotals(ctx, &fixed); err != nil {
				return report, err
			}
		}
		report.Fixed = append(report.Fixed, *drift)
	}
	return report, nil
}
