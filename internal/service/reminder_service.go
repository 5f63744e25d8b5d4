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
	"github.com/stringdesk/stringing-service/internal/notify"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/ratelimit"
	"github.com/stringdesk/stringing-service/internal/repository"
	"github.com/stringdesk/stringing-service/internal/timing"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// Reminder outcomes, also used as metric labels.
const (
	OutcomeSent      = "sent"
	OutcomePlanned   = "planned"
	OutcomeThrottled = "throttled"
	OutcomeFailed    = "failed"
)

// ReminderService sends pickup reminders and tension notices.
type ReminderService struct {
	jobs       repository.JobRepository
	templates  repository.MessageTemplateRepository
	notifier   notify.Notifier
	limiter    ratelimit.Limiter
	dispatcher events.Dispatcher
	clock      clock.Clock
	location   *time.Location
	shopName   string
	emailFrom  string
	logger     *zap.Logger
	metrics    *observability.Metrics
	audit      auditTrail
}

// ReminderDependencies bundles collaborators for the reminder service.
type ReminderDependencies struct {
	JobRepo         repository.JobRepository
	StatusEventRepo repository.StatusEventRepository
	TemplateRepo    repository.MessageTemplateRepository
	Notifier        notify.Notifier
	Limiter         ratelimit.Limiter
	Dispatcher      events.Dispatcher
	Clock           clock.Clock
	Location        *time.Location
	ShopName        string
	EmailFrom       string
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// SendInput describes a manual message send.
type SendInput struct {
	TemplateKey string
	StaffName   string
	Channel     notify.Channel
	// Message replaces the rendered template when set.
	Message string
}

// SendResult is the outcome of one delivered message.
type SendResult struct {
	Receipt  notify.Receipt
	Body     string
	Warnings Warnings
}

// SweepItem is one job considered by a sweep.
type SweepItem struct {
	JobID        string `json:"job_id"`
	TicketNumber string `json:"ticket_number"`
	TemplateKey  string `json:"template_key"`
	Outcome      string `json:"outcome"`
	Error        string `json:"error,omitempty"`
}

// SweepReport summarizes a reminder sweep.
type SweepReport struct {
	Scanned int
	Items   []SweepItem
}

// Count returns how many items ended with the given outcome.
func (r *SweepReport) Count(outcome string) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// NewReminderService constructs the service.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		jobs:       deps.JobRepo,
		templates:  deps.TemplateRepo,
		notifier:   deps.Notifier,
		limiter:    limiter,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		location:   loc,
		shopName:   deps.ShopName,
		emailFrom:  deps.EmailFrom,
		logger:     logger,
		metrics:    deps.Metrics,
		audit:      auditTrail{events: deps.StatusEventRepo, logger: logger, metrics: deps.Metrics},
	}
}

// Sweep sends each due reminder once. A job past day 10 gets only the final
// notice. With dryRun set nothing is sent or stamped.
func (s *ReminderService) Sweep(ctx context.Context, dryRun bool) (*SweepReport, error) {
	jobs, err := s.jobs.ListAwaitingPickup(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	report := &SweepReport{Scanned: len(jobs)}
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		job := &jobs[i]
		key := dueTemplate(job, now)
		if key == "" {
			continue
		}
		item := SweepItem{JobID: job.ID, TicketNumber: job.TicketNumber, TemplateKey: key}
		if dryRun {
			item.Outcome = OutcomePlanned
			report.Items = append(report.Items, item)
			continue
		}

		_, err := s.send(ctx, job, SendInput{TemplateKey: key, Channel: notify.ChannelSMS}, domain.EventTypeSMSSent)
		switch {
		case err == nil:
			item.Outcome = OutcomeSent
		case apperrors.IsCode(err, apperrors.CodeRateLimited):
			item.Outcome = OutcomeThrottled
		default:
			item.Outcome = OutcomeFailed
			item.Error = err.Error()
			s.logger.Warn("reminder failed", zap.String("job_id", job.ID), zap.String("template_key", key), zap.Error(err))
		}
		report.Items = append(report.Items, item)
	}
	s.logger.Info("reminder sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("sent", report.Count(OutcomeSent)),
		zap.Int("throttled", report.Count(OutcomeThrottled)),
		zap.Int("failed", report.Count(OutcomeFailed)),
		zap.Bool("dry_run", dryRun))
	return report, ctx.Err()
}

func dueTemplate(job *domain.Job, now time.Time) string {
	switch {
	case timing.IsDay10Eligible(job, now) && job.Day10ReminderAt == nil:
		return notify.TemplateDay10Notice
	case timing.IsDay8Eligible(job, now) && job.Day8ReminderAt == nil && job.Day10ReminderAt == nil:
		return notify.TemplateDay8Reminder
	}
	return ""
}

// SendReminder sends a template message on staff request. Pickup reminder
// templates are only sent once the job is eligible for them.
func (s *ReminderService) SendReminder(ctx context.Context, jobID string, input SendInput) (*SendResult, error) {
	staff, err := requireStaff(input.StaffName)
	if err != nil {
		return nil, err
	}
	input.StaffName = staff
	if _, ok := notify.DefaultTemplates[input.TemplateKey]; !ok {
		return nil, apperrors.NewValidationError("unknown template", map[string]any{"template_key": input.TemplateKey})
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	now := s.clock.Now()
	switch input.TemplateKey {
	case notify.TemplateDay8Reminder:
		if !timing.IsDay8Eligible(job, now) {
			return nil, apperrors.NewValidationError("job is not eligible for the day 8 reminder", nil)
		}
	case notify.TemplateDay10Notice:
		if !timing.IsDay10Eligible(job, now) {
			return nil, apperrors.NewValidationError("job is not eligible for the day 10 notice", nil)
		}
	}
	return s.send(ctx, job, input, domain.EventTypeSMSSent)
}

// SendTensionNotice tells the customer the racquet was strung at a different tension.
func (s *ReminderService) SendTensionNotice(ctx context.Context, jobID, staffName, message string) (*SendResult, error) {
	staff, err := requireStaff(staffName)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	final := job.FinalTension()
	if job.TensionOverride == nil || final == nil ||
		(job.RequestedTension != nil && *job.RequestedTension == *final) {
		return nil, apperrors.NewValidationError("final tension matches requested", nil)
	}
	return s.send(ctx, job, SendInput{
		TemplateKey: notify.TemplateTensionNotice,
		StaffName:   staff,
		Channel:     notify.ChannelSMS,
		Message:     strings.TrimSpace(message),
	}, domain.EventTypeTensionSMSSent)
}

func (s *ReminderService) send(ctx context.Context, job *domain.Job, input SendInput, eventType string) (*SendResult, error) {
	if s.notifier == nil {
		return nil, apperrors.NewInternalError(errors.New("no notifier configured"))
	}
	allowed, err := s.limiter.Allow(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.metrics.RecordReminder(input.TemplateKey, OutcomeThrottled)
		return nil, apperrors.NewRateLimited("too many messages for this job, try again in a minute")
	}

	body := input.Message
	if body == "" {
		body = notify.Render(s.templateBody(ctx, input.TemplateKey), notify.Vars(job, s.shopName, s.location))
	}
	msg := notify.Message{
		JobID:       job.ID,
		Channel:     input.Channel,
		To:          job.Phone,
		Body:        body,
		TemplateKey: input.TemplateKey,
	}
	if msg.Channel == "" {
		msg.Channel = notify.ChannelSMS
	}
	if msg.Channel == notify.ChannelEmail {
		msg.To, msg.From = "", s.emailFrom
		if job.Email != nil {
			msg.To = *job.Email
		}
		msg.Subject = "Your racquet " + job.TicketNumber
	}

	receipt, err := s.notifier.Send(ctx, msg)
	if err != nil {
		s.metrics.RecordReminder(input.TemplateKey, OutcomeFailed)
		if errors.Is(err, notify.ErrNoRecipient) {
			return nil, apperrors.NewValidationError("job has no contact for this channel", map[string]any{"channel": msg.Channel})
		}
		return nil, err
	}
	s.metrics.RecordReminder(input.TemplateKey, OutcomeSent)

	result := &SendResult{Receipt: receipt, Body: body}
	if notify.IsReminderTemplate(input.TemplateKey) {
		if err := s.jobs.MarkReminderSent(ctx, job.ID, input.TemplateKey, s.clock.Now()); err != nil {
			s.logger.Warn("reminder stamp failed", zap.String("job_id", job.ID), zap.Error(err))
			result.Warnings = result.Warnings.add(apperrors.NewAuditWriteFailure(input.TemplateKey, err))
		}
	}
	var staff *string
	if input.StaffName != "" {
		staff = &input.StaffName
	}
	result.Warnings = result.Warnings.add(s.audit.record(ctx, job.ID, eventType, staff))

	publish(ctx, s.dispatcher, s.clock.Now(), events.Event{
		Type:    events.EventReminderSent,
		JobID:   job.ID,
		Actor:   staffActor(input.StaffName),
		Payload: events.ReminderSentPayload{TemplateKey: input.TemplateKey, ReceiptID: receipt.ID},
	})
	return result, nil
}

// templateBody prefers the shop's stored template over the built-in one.
func (s *ReminderService) templateBody(ctx context.Context, key string) string {
	if s.templates != nil {
		body, err := s.templates.Get(ctx, key)
		if err == nil && strings.TrimSpace(body) != "" {
			return body
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("template lookup failed, using default", zap.String("template_key", key), zap.Error(err))
		}
	}
	return notify.DefaultTemplates[key]
}
