package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/notify"
	"github.com/stringdesk/stringing-service/internal/repository"
)

type memStore struct {
	mu       sync.Mutex
	seq      int
	jobs     map[string]domain.Job
	events   []domain.StatusEvent
	payments []domain.PaymentEvent
	strings  map[string]domain.StringOption
	files    []domain.JobAttachment
	bodies   map[string]string

	failAudit   bool
	failPayment bool
}

func newMemStore() *memStore {
	return &memStore{
		jobs:    map[string]domain.Job{},
		strings: map[string]domain.StringOption{},
		bodies:  map[string]string{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addString(opt domain.StringOption) domain.StringOption {
	m.mu.Lock()
	defer m.mu.Unlock()
	if opt.ID == "" {
		opt.ID = m.nextID("str")
	}
	m.strings[opt.ID] = opt
	return opt
}

func (m *memStore) putJob(job domain.Job) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = m.nextID("job")
	}
	m.jobs[job.ID] = job
	return job
}

func (m *memStore) job(id string) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

func (m *memStore) eventTypes(jobID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []string
	for _, e := range m.events {
		if e.JobID == jobID {
			types = append(types, e.EventType)
		}
	}
	return types
}

// jobRepo

type memJobs struct{ *memStore }

func (r memJobs) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = r.nextID("job")
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	r.jobs[job.ID] = *job
	return nil
}

func (r memJobs) Update(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// payment columns are owned by the payment transaction
	job.AmountPaid, job.PaymentStatus, job.PaidAt, job.PaidByStaff = stored.AmountPaid, stored.PaymentStatus, stored.PaidAt, stored.PaidByStaff
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

func (r memJobs) UpdatePaymentTotals(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.AmountPaid, stored.PaymentStatus, stored.PaidAt, stored.PaidByStaff = job.AmountPaid, job.PaymentStatus, job.PaidAt, job.PaidByStaff
	r.jobs[job.ID] = stored
	return nil
}

func (r memJobs) MarkReminderSent(_ context.Context, jobID, templateKey string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return pgx.ErrNoRows
	}
	switch templateKey {
	case notify.TemplateDay8Reminder:
		job.Day8ReminderAt = &at
	case notify.TemplateDay10Notice:
		job.Day10ReminderAt = &at
	default:
		return errors.New("no reminder column")
	}
	r.jobs[jobID] = job
	return nil
}

func (r memJobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &job, nil
}

func (r memJobs) GetByTicketNumber(_ context.Context, ticketNumber string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.TicketNumber == ticketNumber {
			return &job, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memJobs) List(_ context.Context, filter repository.JobFilter) ([]domain.Job, error) {
	all, _ := r.ListAll(context.Background())
	var out []domain.Job
	for _, job := range all {
		switch filter.View {
		case repository.JobViewActive:
			if job.Status.IsTerminal() {
				continue
			}
		case repository.JobViewCompleted:
			if !job.Status.IsTerminal() {
				continue
			}
		}
		out = append(out, job)
	}
	return out, nil
}

func (r memJobs) ListAwaitingPickup(_ context.Context) ([]domain.Job, error) {
	all, _ := r.ListAll(context.Background())
	var out []domain.Job
	for _, job := range all {
		if job.Status.AwaitsPickup() && job.ReadyForPickupAt != nil {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r memJobs) ListAll(_ context.Context) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memJobs) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.jobs, id)
	return nil
}

// statusEventRepo

type memEvents struct{ *memStore }

func (r memEvents) Create(_ context.Context, event *domain.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAudit {
		return errors.New("audit table unavailable")
	}
	event.ID = r.nextID("evt")
	event.CreatedAt = time.Now()
	r.events = append(r.events, *event)
	return nil
}

func (r memEvents) ListByJob(_ context.Context, jobID string) ([]domain.StatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StatusEvent
	for _, e := range r.events {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out, nil
}

// paymentRepo

type memPayments struct{ *memStore }

func (r memPayments) Record(_ context.Context, event *domain.PaymentEvent, job *domain.Job, previousPaid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPayment {
		return errors.New("connection reset")
	}
	stored, ok := r.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.AmountPaid != previousPaid {
		return repository.ErrStaleJob
	}
	stored.AmountPaid, stored.PaymentStatus, stored.PaidAt, stored.PaidByStaff = job.AmountPaid, job.PaymentStatus, job.PaidAt, job.PaidByStaff
	r.jobs[job.ID] = stored
	event.ID = r.nextID("pay")
	r.payments = append(r.payments, *event)
	return nil
}

func (r memPayments) ListByJob(_ context.Context, jobID string) ([]domain.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PaymentEvent
	for _, p := range r.payments {
		if p.JobID == jobID {
			out = append(out, p)
		}
	}
	return out, nil
}

// stringRepo

type memStrings struct{ *memStore }

func (r memStrings) Create(_ context.Context, option *domain.StringOption) error {
	*option = r.addString(*option)
	return nil
}

func (r memStrings) Update(_ context.Context, option *domain.StringOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strings[option.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.strings[option.ID] = *option
	return nil
}

func (r memStrings) GetByID(_ context.Context, id string) (*domain.StringOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opt, ok := r.strings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &opt, nil
}

func (r memStrings) List(_ context.Context, activeOnly bool) ([]domain.StringOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StringOption
	for _, opt := range r.strings {
		if activeOnly && !opt.Active {
			continue
		}
		out = append(out, opt)
	}
	return out, nil
}

func (r memStrings) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.strings, id)
	return nil
}

// attachmentRepo

type memAttachments struct{ *memStore }

func (r memAttachments) Create(_ context.Context, a *domain.JobAttachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID("att")
	r.files = append(r.files, *a)
	return nil
}

func (r memAttachments) ListByJob(_ context.Context, jobID string) ([]domain.JobAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.JobAttachment
	for _, a := range r.files {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAttachments) CountByJob(ctx context.Context, jobID string) (map[domain.AttachmentStage]int, error) {
	list, _ := r.ListByJob(ctx, jobID)
	counts := map[domain.AttachmentStage]int{}
	for _, a := range list {
		counts[a.Stage]++
	}
	return counts, nil
}

func (r memAttachments) Delete(_ context.Context, jobID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.files {
		if a.ID == id && a.JobID == jobID {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// templateRepo

type memTemplates struct{ *memStore }

func (r memTemplates) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	body, ok := r.bodies[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return body, nil
}

func (r memTemplates) Upsert(_ context.Context, key, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[key] = body
	return nil
}

// notifier

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) (notify.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return notify.Receipt{}, n.err
	}
	if msg.To == "" {
		return notify.Receipt{}, notify.ErrNoRecipient
	}
	n.sent = append(n.sent, msg)
	return notify.Receipt{ID: fmt.Sprintf("rcpt-%d", len(n.sent))}, nil
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}
