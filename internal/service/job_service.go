package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/clock"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/pricing"
	"github.com/stringdesk/stringing-service/internal/repository"
	"github.com/stringdesk/stringing-service/internal/timeline"
	"github.com/stringdesk/stringing-service/internal/timing"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// JobService drives the racquet job workflow.
type JobService struct {
	jobs        repository.JobRepository
	history     repository.StatusEventRepository
	payments    repository.PaymentRepository
	strings     repository.StringRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
	clock       clock.Clock
	fees        pricing.FeeTable
	policy      ledger.Policy
	location    *time.Location
	pickupDays  int
	logger      *zap.Logger
	metrics     *observability.Metrics
	audit       auditTrail
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo         repository.JobRepository
	StatusEventRepo repository.StatusEventRepository
	PaymentRepo     repository.PaymentRepository
	StringRepo      repository.StringRepository
	AttachmentRepo  repository.AttachmentRepository
	Dispatcher      events.Dispatcher
	Clock           clock.Clock
	Fees            pricing.FeeTable
	Policy          ledger.Policy
	Location        *time.Location
	PickupDays      int
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// JobCreateInput is the intake form.
type JobCreateInput struct {
	MemberName       string
	Phone            string
	Email            string
	RacquetType      string
	StringID         string
	RequestedTension *int
	Notes            string
	TermsAccepted    bool
	DropInDate       *time.Time
	PickupDeadline   *time.Time
	AddOns           domain.AddOns
}

// JobListFilter describes staff listing filters.
type JobListFilter struct {
	Statuses   []domain.CanonicalStatus
	View       repository.JobView
	SearchTerm *string
	Limit      int
	Offset     int
}

// JobDetail is a job with its ledger and urgency badges.
type JobDetail struct {
	Job              *domain.Job
	BalanceDue       int64
	FullyPaid        bool
	Due              timing.Badge
	Countdown        timing.Badge
	AttachmentCounts map[domain.AttachmentStage]int
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	fees := deps.Fees
	if fees.Rush == nil {
		fees = pricing.DefaultFeeTable()
	}
	pickupDays := deps.PickupDays
	if pickupDays <= 0 {
		pickupDays = 3
	}
	return &JobService{
		jobs:        deps.JobRepo,
		history:     deps.StatusEventRepo,
		payments:    deps.PaymentRepo,
		strings:     deps.StringRepo,
		attachments: deps.AttachmentRepo,
		dispatcher:  deps.Dispatcher,
		clock:       clk,
		fees:        fees,
		policy:      deps.Policy,
		location:    loc,
		pickupDays:  pickupDays,
		logger:      logger,
		metrics:     deps.Metrics,
		audit:       auditTrail{events: deps.StatusEventRepo, logger: logger, metrics: deps.Metrics},
	}
}

// Create validates the intake form, prices the job and stores it.
func (s *JobService) Create(ctx context.Context, input JobCreateInput) (*JobResult, error) {
	name := strings.TrimSpace(input.MemberName)
	if name == "" {
		return nil, apperrors.NewValidationError("member name is required", map[string]any{"field": "member_name"})
	}
	phone, ok := domain.NormalizePhone(input.Phone)
	if !ok {
		return nil, apperrors.NewValidationError("a valid US phone number is required", map[string]any{"field": "phone"})
	}
	email, ok := domain.NormalizeEmail(input.Email)
	if !ok {
		return nil, apperrors.NewValidationError("email address is invalid", map[string]any{"field": "email"})
	}
	if !input.TermsAccepted {
		return nil, apperrors.NewValidationError("terms must be accepted", map[string]any{"field": "terms_accepted"})
	}
	if input.RequestedTension != nil && *input.RequestedTension < 0 {
		return nil, apperrors.NewValidationError("tension must not be negative", map[string]any{"field": "requested_tension"})
	}
	addOns, err := normalizeAddOns(input.AddOns)
	if err != nil {
		return nil, err
	}

	stringID := strings.TrimSpace(input.StringID)
	if stringID == "" {
		return nil, apperrors.NewValidationError("a string must be selected", map[string]any{"field": "string_id"})
	}
	str, err := s.strings.GetByID(ctx, stringID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("string", map[string]any{"string_id": stringID})
		}
		return nil, err
	}
	if !str.Active {
		return nil, apperrors.NewNotFound("string", map[string]any{"string_id": stringID, "reason": "inactive"})
	}

	now := s.clock.Now()
	dropIn := timing.Today(now, s.location)
	if input.DropInDate != nil {
		dropIn = *input.DropInDate
	}
	deadline := timing.DefaultPickupDeadline(dropIn, s.pickupDays)
	if input.PickupDeadline != nil {
		deadline = *input.PickupDeadline
	}

	job := &domain.Job{
		TicketNumber:     generateTicketNumber(),
		MemberName:       name,
		Phone:            phone,
		RacquetType:      strings.TrimSpace(input.RacquetType),
		StringID:         str.ID,
		RequestedTension: input.RequestedTension,
		Notes:            strings.TrimSpace(input.Notes),
		TermsAccepted:    true,
		TermsAcceptedAt:  &now,
		DropInDate:       dropIn,
		PickupDeadline:   &deadline,
		Status:           domain.StatusReceivedFrontDesk,
		AmountDue:        s.fees.AmountDue(str, addOns),
		AddOns:           addOns,
		String:           str,
	}
	if email != "" {
		job.Email = &email
	}
	job.PaymentStatus = ledger.DerivePaymentStatus(0, job.AmountDue)

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	result := &JobResult{Job: job}
	result.Warnings = result.Warnings.add(s.audit.record(ctx, job.ID, domain.EventTypeCreated, nil))
	s.metrics.RecordTransition(string(job.Status))

	publish(ctx, s.dispatcher, now, events.Event{
		Type:  events.EventJobCreated,
		JobID: job.ID,
		Payload: events.JobCreatedPayload{
			TicketNumber: job.TicketNumber,
			MemberName:   job.MemberName,
			AmountDue:    job.AmountDue,
		},
	})
	return result, nil
}

// Quote prices an intake selection without storing anything.
func (s *JobService) Quote(ctx context.Context, stringID string, addOns domain.AddOns) (pricing.Quote, error) {
	addOns, err := normalizeAddOns(addOns)
	if err != nil {
		return pricing.Quote{}, err
	}
	var str *domain.StringOption
	if strings.TrimSpace(stringID) != "" {
		str, err = s.strings.GetByID(ctx, stringID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pricing.Quote{}, apperrors.NewNotFound("string", map[string]any{"string_id": stringID})
			}
			return pricing.Quote{}, err
		}
	}
	return s.fees.Quote(str, addOns), nil
}

// MarkReceivedByFrontDesk stamps front-desk receipt. Receiving again re-stamps the event.
func (s *JobService) MarkReceivedByFrontDesk(ctx context.Context, jobID, staffName string) (*JobResult, error) {
	staff, err := requireStaff(staffName)
	if err != nil {
		return nil, err
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, job, domain.StatusReceivedFrontDesk, staff)
}

// AdvanceStatus moves a job to any canonical status. Legacy spellings are accepted.
func (s *JobService) AdvanceStatus(ctx context.Context, jobID, status, staffName string) (*JobResult, error) {
	target := domain.Normalize(strings.TrimSpace(status))
	if strings.TrimSpace(status) == "" || !target.IsKnown() {
		s.metrics.RecordUnknownStatus()
		s.logger.Warn("unknown status rejected", zap.String("job_id", jobID), zap.String("status", status))
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	if target == domain.StatusCancelled {
		return s.Cancel(ctx, jobID, staffName)
	}

	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if target == domain.StatusPickupCompleted {
		return s.completePickup(ctx, job, PickupInput{StaffName: staffName}, false)
	}
	return s.transition(ctx, job, target, strings.TrimSpace(staffName))
}

// PickupInput is the pickup hand-off form.
type PickupInput struct {
	StaffName string
	Signature string
	Notes     string
}

// MarkPickupCompleted hands the racquet back. It never succeeds while money is owed.
func (s *JobService) MarkPickupCompleted(ctx context.Context, jobID string, input PickupInput) (*JobResult, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.completePickup(ctx, job, input, true)
}

// completePickup applies the pickup guards in order: terminal state, unpaid
// balance, staff name, signature. Manual status overrides skip the signature.
func (s *JobService) completePickup(ctx context.Context, job *domain.Job, input PickupInput, requireSignature bool) (*JobResult, error) {
	if job.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition(string(job.Status), string(domain.StatusPickupCompleted))
	}
	if balance := ledger.BalanceDue(job); balance > 0 {
		return nil, apperrors.NewUnpaidBalance(balance)
	}
	staff, err := requireStaff(input.StaffName)
	if err != nil {
		return nil, err
	}
	signature := strings.TrimSpace(input.Signature)
	if requireSignature && signature == "" {
		return nil, apperrors.NewValidationError("signature is required", map[string]any{"field": "signature"})
	}

	now := s.clock.Now()
	if signature != "" {
		job.PickupSignature = &signature
	}
	job.PickupNotes = strings.TrimSpace(input.Notes)
	job.PickedUpAt = &now
	job.PickedUpBy = &staff

	result, err := s.transition(ctx, job, domain.StatusPickupCompleted, staff)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, now, events.Event{
		Type:    events.EventPickupCompleted,
		JobID:   job.ID,
		Actor:   staffActor(staff),
		Payload: events.PickupCompletedPayload{TicketNumber: job.TicketNumber},
	})
	return result, nil
}

// Cancel moves a non-terminal job out of the workflow.
func (s *JobService) Cancel(ctx context.Context, jobID, staffName string) (*JobResult, error) {
	staff, err := requireStaff(staffName)
	if err != nil {
		return nil, err
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, job, domain.StatusCancelled, staff)
}

// transition writes the new status, then appends the status event.
func (s *JobService) transition(ctx context.Context, job *domain.Job, target domain.CanonicalStatus, staff string) (*JobResult, error) {
	if job.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition(string(job.Status), string(target))
	}
	now := s.clock.Now()
	previous := job.Status
	job.Status = target
	if target.IsPickupMilestone() && job.ReadyForPickupAt == nil {
		job.ReadyForPickupAt = &now
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	var staffName *string
	if staff != "" {
		staffName = &staff
	}
	result := &JobResult{Job: job}
	result.Warnings = result.Warnings.add(s.audit.record(ctx, job.ID, string(target), staffName))
	s.metrics.RecordTransition(string(target))

	publish(ctx, s.dispatcher, now, events.Event{
		Type:    events.EventJobStatusChanged,
		JobID:   job.ID,
		Actor:   staffActor(staff),
		Payload: events.JobStatusChangedPayload{OldStatus: previous, NewStatus: target},
	})
	return result, nil
}

// Delete removes a job and, through the schema, its events and attachments.
func (s *JobService) Delete(ctx context.Context, jobID string) error {
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return notFound(err, "job", jobID)
	}
	s.logger.Info("job deleted", zap.String("job_id", jobID))
	return nil
}

// Get returns a job with its status and payment events.
func (s *JobService) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.StatusEvents, err = s.history.ListByJob(ctx, job.ID); err != nil {
		return nil, err
	}
	if job.PaymentEvents, err = s.payments.ListByJob(ctx, job.ID); err != nil {
		return nil, err
	}
	return job, nil
}

// Detail returns the job with derived ledger values and urgency badges.
func (s *JobService) Detail(ctx context.Context, jobID string) (*JobDetail, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	detail := &JobDetail{
		Job:        job,
		BalanceDue: ledger.BalanceDue(job),
		FullyPaid:  s.policy.IsFullyPaid(job),
		Due:        timing.DueStatus(job, now, s.location),
		Countdown:  timing.PickupCountdown(job, now, s.location),
	}
	if s.attachments != nil {
		if detail.AttachmentCounts, err = s.attachments.CountByJob(ctx, job.ID); err != nil {
			// counts are display-only
			s.logger.Warn("attachment count failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return detail, nil
}

// List returns jobs matching the filter.
func (s *JobService) List(ctx context.Context, filter JobListFilter) ([]domain.Job, error) {
	jobs, err := s.jobs.List(ctx, repository.JobFilter{
		Statuses:   filter.Statuses,
		View:       filter.View,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		s.checkStatus(&jobs[i])
	}
	return jobs, nil
}

// Timeline assembles the job's audit trail.
func (s *JobService) Timeline(ctx context.Context, jobID string) ([]timeline.Entry, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return timeline.Assemble(job, job.StatusEvents, job.PaymentEvents), nil
}

// SetTensionOverride records the tension the racquet is actually strung at.
func (s *JobService) SetTensionOverride(ctx context.Context, jobID string, lbs int, staffName, reason string) (*JobResult, error) {
	staff, err := requireStaff(staffName)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("override reason is required", map[string]any{"field": "reason"})
	}
	if lbs < 0 {
		return nil, apperrors.NewValidationError("tension must not be negative", map[string]any{"field": "override_lbs"})
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.MaxTension != nil && lbs > *job.MaxTension {
		return nil, apperrors.NewValidationError("override exceeds the racquet's max tension",
			map[string]any{"override_lbs": lbs, "max_tension": *job.MaxTension})
	}
	job.TensionOverride = &domain.TensionOverride{Lbs: lbs, Staff: staff, Reason: reason}
	return s.save(ctx, job, domain.EventTypeTensionOverride, &staff)
}

// ClearTensionOverride removes the override so the requested tension applies.
func (s *JobService) ClearTensionOverride(ctx context.Context, jobID string) (*JobResult, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.TensionOverride = nil
	return s.save(ctx, job, "", nil)
}

// SetMaxTension records the racquet's rated maximum. nil clears it.
func (s *JobService) SetMaxTension(ctx context.Context, jobID string, lbs *int) (*JobResult, error) {
	if lbs != nil && *lbs < 0 {
		return nil, apperrors.NewValidationError("max tension must not be negative", map[string]any{"field": "max_tension"})
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.MaxTension = lbs
	return s.save(ctx, job, "", nil)
}

// AssignStringer names the stringer working on the job. An empty name unassigns.
func (s *JobService) AssignStringer(ctx context.Context, jobID, stringer string) (*JobResult, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	stringer = strings.TrimSpace(stringer)
	if stringer == "" {
		job.AssignedStringer = nil
		return s.save(ctx, job, "", nil)
	}
	job.AssignedStringer = &stringer
	return s.save(ctx, job, domain.EventTypeStringerAssigned, &stringer)
}

func (s *JobService) save(ctx context.Context, job *domain.Job, eventType string, staff *string) (*JobResult, error) {
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	result := &JobResult{Job: job}
	if eventType != "" {
		result.Warnings = result.Warnings.add(s.audit.record(ctx, job.ID, eventType, staff))
	}
	return result, nil
}

func (s *JobService) load(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	s.checkStatus(job)
	return job, nil
}

// checkStatus reports stored statuses outside the canonical set. They are
// served as-is.
func (s *JobService) checkStatus(job *domain.Job) {
	if job.Status.IsKnown() {
		return
	}
	s.metrics.RecordUnknownStatus()
	s.logger.Warn("unknown stored status", zap.String("job_id", job.ID), zap.String("status", string(job.Status)))
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func normalizeAddOns(addOns domain.AddOns) (domain.AddOns, error) {
	switch addOns.Rush {
	case "":
		addOns.Rush = domain.RushNone
	case domain.RushNone, domain.RushOneDay, domain.RushTwoHour:
	default:
		return addOns, apperrors.NewValidationError("unknown rush service", map[string]any{"rush_service": addOns.Rush})
	}
	switch addOns.Tier {
	case "":
		addOns.Tier = domain.ServiceTierDefault
	case domain.ServiceTierDefault, domain.ServiceTierSpecialist:
	default:
		return addOns, apperrors.NewValidationError("unknown stringer option", map[string]any{"service_tier": addOns.Tier})
	}
	addOns.StencilRequest = strings.TrimSpace(addOns.StencilRequest)
	return addOns, nil
}
