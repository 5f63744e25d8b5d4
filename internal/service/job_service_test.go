package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stringdesk/stringing-service/internal/clock"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/pricing"
	"github.com/stringdesk/stringing-service/internal/timeline"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

var start = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	clock    *clock.Fixed
	jobs     *JobService
	payments *PaymentService
	logs     *observer.ObservedLogs
	metrics  *observability.Metrics
	events   []events.Event
	str      domain.StringOption
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	f := &fixture{store: newMemStore(), clock: clock.NewFixed(start), logs: logs, metrics: observability.NewMetrics()}

	dispatcher := events.NewInMemoryDispatcher(logger)
	for _, et := range []events.EventType{events.EventJobCreated, events.EventJobStatusChanged, events.EventPaymentRecorded, events.EventPickupCompleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}

	f.jobs = NewJobService(JobDependencies{
		JobRepo:         memJobs{f.store},
		StatusEventRepo: memEvents{f.store},
		PaymentRepo:     memPayments{f.store},
		StringRepo:      memStrings{f.store},
		AttachmentRepo:  memAttachments{f.store},
		Dispatcher:      dispatcher,
		Clock:           f.clock,
		Fees:            pricing.DefaultFeeTable(),
		Location:        time.UTC,
		PickupDays:      3,
		Logger:          logger,
		Metrics:         f.metrics,
	})
	f.payments = NewPaymentService(PaymentDependencies{
		JobRepo:         memJobs{f.store},
		PaymentRepo:     memPayments{f.store},
		StatusEventRepo: memEvents{f.store},
		Dispatcher:      dispatcher,
		Clock:           f.clock,
		Logger:          logger,
	})
	f.str = f.store.addString(domain.StringOption{Name: "BG65", Brand: "Yonex", Active: true, PriceCents: 3500})
	return f
}

func (f *fixture) create(t *testing.T) *domain.Job {
	t.Helper()
	res, err := f.jobs.Create(context.Background(), JobCreateInput{
		MemberName:    "Jordan Lee",
		Phone:         "(555) 123-4567",
		StringID:      f.str.ID,
		TermsAccepted: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return res.Job
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.IsCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	inactive := f.store.addString(domain.StringOption{Name: "Old", Active: false})
	valid := JobCreateInput{MemberName: "A", Phone: "5551234567", StringID: f.str.ID, TermsAccepted: true}

	tests := []struct {
		name   string
		mutate func(*JobCreateInput)
		code   string
	}{
		{"missing name", func(in *JobCreateInput) { in.MemberName = "  " }, apperrors.CodeValidation},
		{"bad phone", func(in *JobCreateInput) { in.Phone = "12345" }, apperrors.CodeValidation},
		{"bad email", func(in *JobCreateInput) { in.Email = "not-an-email" }, apperrors.CodeValidation},
		{"terms not accepted", func(in *JobCreateInput) { in.TermsAccepted = false }, apperrors.CodeValidation},
		{"no string", func(in *JobCreateInput) { in.StringID = "" }, apperrors.CodeValidation},
		{"unknown string", func(in *JobCreateInput) { in.StringID = "missing" }, apperrors.CodeNotFound},
		{"inactive string", func(in *JobCreateInput) { in.StringID = inactive.ID }, apperrors.CodeNotFound},
		{"unknown rush", func(in *JobCreateInput) { in.AddOns.Rush = "same-minute" }, apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.jobs.Create(context.Background(), in)
			requireCode(t, err, tt.code)
		})
	}
}

func TestGet_UnknownStoredStatusIsReported(t *testing.T) {
	f := newFixture(t)
	job := f.store.putJob(domain.Job{MemberName: "Legacy", Status: "on-hold", CreatedAt: start})

	got, err := f.jobs.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "on-hold" {
		t.Fatalf("status = %q, want it served unchanged", got.Status)
	}

	warned := f.logs.FilterMessage("unknown stored status").FilterField(zap.String("job_id", job.ID)).All()
	if len(warned) != 1 || warned[0].Level != zap.WarnLevel {
		t.Fatalf("warn entries = %+v", warned)
	}
	if v := warned[0].ContextMap()["status"]; v != "on-hold" {
		t.Fatalf("logged status = %v", v)
	}

	if _, err := f.jobs.Get(context.Background(), f.create(t).ID); err != nil {
		t.Fatal(err)
	}
	want := `
# HELP stringing_unknown_status_total Stored statuses that did not normalize to a canonical key.
# TYPE stringing_unknown_status_total counter
stringing_unknown_status_total 1
`
	if err := testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(want), "stringing_unknown_status_total"); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_PricesAndStamps(t *testing.T) {
	f := newFixture(t)
	res, err := f.jobs.Create(context.Background(), JobCreateInput{
		MemberName:    " Jordan Lee ",
		Phone:         "1-555-123-4567",
		Email:         " Jordan@Example.COM ",
		StringID:      f.str.ID,
		TermsAccepted: true,
		AddOns:        domain.AddOns{Rush: domain.RushOneDay, Tier: domain.ServiceTierSpecialist},
	})
	if err != nil {
		t.Fatal(err)
	}
	job := res.Job
	if job.AmountDue != 3500+1000+1000 {
		t.Fatalf("amount due = %d", job.AmountDue)
	}
	if job.Phone != "+15551234567" || job.Email == nil || *job.Email != "jordan@example.com" {
		t.Fatalf("contact = %q %v", job.Phone, job.Email)
	}
	if !strings.HasPrefix(job.TicketNumber, "STR-") || len(job.TicketNumber) != 12 {
		t.Fatalf("ticket number = %q", job.TicketNumber)
	}
	if job.Status != domain.StatusReceivedFrontDesk || job.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Fatalf("status = %s / %s", job.Status, job.PaymentStatus)
	}
	wantDeadline := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if job.PickupDeadline == nil || !job.PickupDeadline.Equal(wantDeadline) {
		t.Fatalf("deadline = %v", job.PickupDeadline)
	}
	if got := f.store.eventTypes(job.ID); len(got) != 1 || got[0] != domain.EventTypeCreated {
		t.Fatalf("events = %v", got)
	}
	if len(f.events) != 1 || f.events[0].Type != events.EventJobCreated {
		t.Fatalf("published = %+v", f.events)
	}
}

func TestEndToEnd_PaymentGuardsPickup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)
	if job.AmountDue != 3500 {
		t.Fatalf("amount due = %d", job.AmountDue)
	}

	paid, err := f.payments.RecordPayment(ctx, job.ID, 2000, "Alice", "cash")
	if err != nil {
		t.Fatal(err)
	}
	if paid.Job.PaymentStatus != domain.PaymentStatusPartial || ledger.BalanceDue(paid.Job) != 1500 {
		t.Fatalf("after first payment: %s balance %d", paid.Job.PaymentStatus, ledger.BalanceDue(paid.Job))
	}

	_, err = f.jobs.MarkPickupCompleted(ctx, job.ID, PickupInput{StaffName: "Alice", Signature: "J. Lee"})
	requireCode(t, err, apperrors.CodeUnpaidBalance)
	if remaining, ok := apperrors.RemainingBalance(err); !ok || remaining != 1500 {
		t.Fatalf("remaining = %d, %v", remaining, ok)
	}

	paid, err = f.payments.RecordPayment(ctx, job.ID, 1500, "Alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if paid.Job.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment status = %s", paid.Job.PaymentStatus)
	}

	done, err := f.jobs.MarkPickupCompleted(ctx, job.ID, PickupInput{StaffName: "Alice", Signature: "J. Lee"})
	if err != nil {
		t.Fatal(err)
	}
	if domain.Normalize(string(done.Job.Status)) != domain.StatusPickupCompleted {
		t.Fatalf("status = %s", done.Job.Status)
	}
	stored := f.store.job(job.ID)
	if stored.AmountPaid != 3500 || stored.PickedUpBy == nil || *stored.PickedUpBy != "Alice" {
		t.Fatalf("stored = %+v", stored)
	}

	var sum int64
	for _, p := range f.store.payments {
		sum += p.Amount
	}
	if sum != stored.AmountPaid {
		t.Fatalf("ledger sum %d != cached %d", sum, stored.AmountPaid)
	}
}

func TestRecordPayment_ClampsOverpayment(t *testing.T) {
	f := newFixture(t)
	job := f.store.putJob(domain.Job{Status: domain.StatusReceivedFrontDesk, AmountDue: 50, PaymentStatus: domain.PaymentStatusUnpaid})

	res, err := f.payments.RecordPayment(context.Background(), job.ID, 1000, "Alice", "card")
	if err != nil {
		t.Fatal(err)
	}
	if res.Event.Amount != 50 || res.Job.AmountPaid != 50 || res.Job.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("event %d paid %d status %s", res.Event.Amount, res.Job.AmountPaid, res.Job.PaymentStatus)
	}

	_, err = f.payments.RecordPayment(context.Background(), job.ID, 10, "Alice", "")
	requireCode(t, err, apperrors.CodeAlreadyPaid)
	_, err = f.payments.PayFullBalance(context.Background(), job.ID, "Alice", "")
	requireCode(t, err, apperrors.CodeAlreadyPaid)
}

func TestRecordPayment_Errors(t *testing.T) {
	f := newFixture(t)
	job := f.create(t)
	tests := []struct {
		name   string
		jobID  string
		amount int64
		staff  string
		code   string
	}{
		{"zero amount", job.ID, 0, "Alice", apperrors.CodeInvalidAmount},
		{"negative amount", job.ID, -5, "Alice", apperrors.CodeInvalidAmount},
		{"missing staff", job.ID, 100, " ", apperrors.CodeValidation},
		{"unknown job", "nope", 100, "Alice", apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.RecordPayment(context.Background(), tt.jobID, tt.amount, tt.staff, "")
			requireCode(t, err, tt.code)
		})
	}
}

func TestPayFullBalance(t *testing.T) {
	f := newFixture(t)
	job := f.create(t)
	if _, err := f.payments.RecordPayment(context.Background(), job.ID, 500, "Bob", ""); err != nil {
		t.Fatal(err)
	}
	res, err := f.payments.PayFullBalance(context.Background(), job.ID, "Bob", "card")
	if err != nil {
		t.Fatal(err)
	}
	if res.Event.Amount != 3000 || res.Job.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("event %d status %s", res.Event.Amount, res.Job.PaymentStatus)
	}
}

func TestAuditFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	job := f.create(t)
	f.store.failAudit = true

	res, err := f.payments.RecordPayment(context.Background(), job.ID, 1000, "Alice", "")
	if err != nil {
		t.Fatalf("primary write must succeed: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != apperrors.CodeAuditWriteFailed {
		t.Fatalf("warnings = %+v", res.Warnings)
	}
	if f.store.job(job.ID).AmountPaid != 1000 {
		t.Fatal("payment was rolled back")
	}

	adv, err := f.jobs.AdvanceStatus(context.Background(), job.ID, "ready_for_stringing", "Sam")
	if err != nil {
		t.Fatal(err)
	}
	if len(adv.Warnings) != 1 || f.store.job(job.ID).Status != domain.StatusReadyForStringing {
		t.Fatalf("warnings %d status %s", len(adv.Warnings), f.store.job(job.ID).Status)
	}
	if f.logs.FilterMessage("audit write failed").Len() != 2 {
		t.Fatalf("expected two audit warnings in the log, got %d", f.logs.FilterMessage("audit write failed").Len())
	}
}

func TestAdvanceStatus_ReadyTimestampIsStampedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)

	first, err := f.jobs.AdvanceStatus(ctx, job.ID, "stringing_completed", "Sam")
	if err != nil {
		t.Fatal(err)
	}
	stamped := *first.Job.ReadyForPickupAt
	if !stamped.Equal(start) {
		t.Fatalf("stamped at %s", stamped)
	}

	f.clock.Advance(2 * time.Hour)
	if _, err := f.jobs.AdvanceStatus(ctx, job.ID, "complete", "Sam"); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(time.Hour)
	if _, err := f.jobs.AdvanceStatus(ctx, job.ID, "ready_for_pickup", "Sam"); err != nil {
		t.Fatal(err)
	}
	if got := f.store.job(job.ID).ReadyForPickupAt; got == nil || !got.Equal(stamped) {
		t.Fatalf("ready_for_pickup_at = %v, want %s", got, stamped)
	}
}

func TestAdvanceStatus_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)

	_, err := f.jobs.AdvanceStatus(ctx, job.ID, "teleported", "Sam")
	requireCode(t, err, apperrors.CodeValidation)
	if f.logs.FilterMessage("unknown status rejected").Len() != 1 {
		t.Fatal("unknown status was not logged")
	}

	res, err := f.jobs.AdvanceStatus(ctx, job.ID, "in-progress", "Sam")
	if err != nil {
		t.Fatal(err)
	}
	if res.Job.Status != domain.StatusReceivedByStringer {
		t.Fatalf("legacy status stored as %s", res.Job.Status)
	}

	_, err = f.jobs.AdvanceStatus(ctx, job.ID, "delivered", "Sam")
	requireCode(t, err, apperrors.CodeUnpaidBalance)

	if _, err := f.jobs.Cancel(ctx, job.ID, "Sam"); err != nil {
		t.Fatal(err)
	}
	_, err = f.jobs.AdvanceStatus(ctx, job.ID, "waiting_pickup", "Sam")
	requireCode(t, err, apperrors.CodeInvalidTransition)
	_, err = f.jobs.Cancel(ctx, job.ID, "Sam")
	requireCode(t, err, apperrors.CodeInvalidTransition)
}

func TestMarkPickupCompleted_RequiresStaffAndSignature(t *testing.T) {
	f := newFixture(t)
	job := f.store.putJob(domain.Job{Status: domain.StatusWaitingPickup, AmountDue: 0, PaymentStatus: domain.PaymentStatusPaid})

	tests := []struct {
		name  string
		input PickupInput
	}{
		{"no staff", PickupInput{Signature: "sig"}},
		{"no signature", PickupInput{StaffName: "Alice", Signature: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.jobs.MarkPickupCompleted(context.Background(), job.ID, tt.input)
			requireCode(t, err, apperrors.CodeValidation)
		})
	}

	res, err := f.jobs.MarkPickupCompleted(context.Background(), job.ID, PickupInput{StaffName: "Alice", Signature: "sig"})
	if err != nil {
		t.Fatalf("zero-due job should be collectable: %v", err)
	}
	if res.Job.Status != domain.StatusPickupCompleted {
		t.Fatalf("status = %s", res.Job.Status)
	}
}

func TestMarkReceivedByFrontDesk_IsRepeatable(t *testing.T) {
	f := newFixture(t)
	job := f.create(t)
	_, err := f.jobs.MarkReceivedByFrontDesk(context.Background(), job.ID, "")
	requireCode(t, err, apperrors.CodeValidation)

	for i := 0; i < 2; i++ {
		if _, err := f.jobs.MarkReceivedByFrontDesk(context.Background(), job.ID, "Dana"); err != nil {
			t.Fatalf("receive %d: %v", i, err)
		}
	}
	types := f.store.eventTypes(job.ID)
	want := []string{domain.EventTypeCreated, string(domain.StatusReceivedFrontDesk), string(domain.StatusReceivedFrontDesk)}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v", types)
	}
}

func TestTensionOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)
	maxLbs := 28
	if _, err := f.jobs.SetMaxTension(ctx, job.ID, &maxLbs); err != nil {
		t.Fatal(err)
	}

	_, err := f.jobs.SetTensionOverride(ctx, job.ID, 30, "Sam", "frame limit")
	requireCode(t, err, apperrors.CodeValidation)
	_, err = f.jobs.SetTensionOverride(ctx, job.ID, 26, "Sam", "")
	requireCode(t, err, apperrors.CodeValidation)

	res, err := f.jobs.SetTensionOverride(ctx, job.ID, 26, "Sam", "frame limit")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Job.FinalTension(); got == nil || *got != 26 {
		t.Fatalf("final tension = %v", got)
	}

	res, err = f.jobs.ClearTensionOverride(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Job.TensionOverride != nil {
		t.Fatal("override not cleared")
	}
}

func TestDeleteAndDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)

	detail, err := f.jobs.Detail(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.BalanceDue != 3500 || detail.FullyPaid || detail.Due.Level == "" {
		t.Fatalf("detail = %+v", detail)
	}

	if err := f.jobs.Delete(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.jobs.Get(ctx, job.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	requireCode(t, f.jobs.Delete(ctx, job.ID), apperrors.CodeNotFound)
}

func TestTimeline_FromServiceEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.create(t)
	if _, err := f.payments.RecordPayment(ctx, job.ID, 1000, "Alice", ""); err != nil {
		t.Fatal(err)
	}

	entries, err := f.jobs.Timeline(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	current := 0
	payments := 0
	for _, e := range entries {
		if e.Current {
			current++
			if e.EventType != string(domain.StatusReadyForStringing) {
				t.Fatalf("current = %+v", e)
			}
		}
		if e.Kind == timeline.KindPayment {
			payments++
		}
	}
	if current != 1 || payments != 1 {
		t.Fatalf("current %d payments %d", current, payments)
	}
}
