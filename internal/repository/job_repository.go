package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// JobView narrows listings to open or finished work.
type JobView string

const (
	JobViewAll       JobView = ""
	JobViewActive    JobView = "active"
	JobViewCompleted JobView = "completed"
)

// JobFilter captures staff search parameters.
type JobFilter struct {
	Statuses   []domain.CanonicalStatus
	View       JobView
	SearchTerm *string
	Limit      int
	Offset     int
}

// JobRepository encapsulates racquet job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	UpdatePaymentTotals(ctx context.Context, job *domain.Job) error
	MarkReminderSent(ctx context.Context, jobID, templateKey string, at time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Job, error)
	List(ctx context.Context, filter JobFilter) ([]domain.Job, error)
	ListAwaitingPickup(ctx context.Context) ([]domain.Job, error)
	ListAll(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, id string) error
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const jobColumns = `
        j.id, j.ticket_number, j.member_name, j.phone, j.email, j.racquet_type,
        COALESCE(j.string_id::text, ''), j.string_tension, j.notes, j.terms_accepted, j.terms_accepted_at,
        j.drop_in_date, j.pickup_deadline, j.ready_for_pickup_at, j.status,
        j.amount_due, j.amount_paid, j.payment_status, j.paid_at, j.paid_by_staff,
        j.assigned_stringer, j.rush_service, j.service_tier, j.grommet_repair, j.stencil_request, j.grip_add_on,
        j.max_tension, j.tension_override_lbs, j.tension_override_by, j.tension_override_reason,
        j.pickup_signature, j.pickup_notes, j.picked_up_at, j.picked_up_by,
        j.day8_reminder_sent_at, j.day10_reminder_sent_at, j.created_at, j.updated_at,
        s.id::text, s.name, s.brand, s.gauge, s.active, s.price_cents`

const jobFrom = `
        FROM racquet_jobs j
        LEFT JOIN string_options s ON s.id = j.string_id`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	lbs, by, reason := overrideColumns(job.TensionOverride)
	const query = `
        INSERT INTO racquet_jobs (ticket_number, member_name, phone, email, racquet_type, string_id, string_tension, notes,
            terms_accepted, terms_accepted_at, drop_in_date, pickup_deadline, status, amount_due, amount_paid, payment_status,
            assigned_stringer, rush_service, service_tier, grommet_repair, stencil_request, grip_add_on,
            max_tension, tension_override_lbs, tension_override_by, tension_override_reason)
        VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		job.TicketNumber,
		job.MemberName,
		job.Phone,
		job.Email,
		job.RacquetType,
		job.StringID,
		job.RequestedTension,
		job.Notes,
		job.TermsAccepted,
		job.TermsAcceptedAt,
		job.DropInDate,
		job.PickupDeadline,
		job.Status,
		job.AmountDue,
		job.AmountPaid,
		job.PaymentStatus,
		job.AssignedStringer,
		job.AddOns.Rush,
		job.AddOns.Tier,
		job.AddOns.GrommetRepair,
		job.AddOns.StencilRequest,
		job.AddOns.GripAddOn,
		job.MaxTension,
		lbs, by, reason,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

// Update writes the workflow columns. Cached payment totals are only changed
// through UpdatePaymentTotals or the payment transaction.
func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	lbs, by, reason := overrideColumns(job.TensionOverride)
	const query = `
        UPDATE racquet_jobs SET member_name=$1, phone=$2, email=$3, racquet_type=$4, notes=$5,
            pickup_deadline=$6, ready_for_pickup_at=$7, status=$8, assigned_stringer=$9,
            max_tension=$10, tension_override_lbs=$11, tension_override_by=$12, tension_override_reason=$13,
            pickup_signature=$14, pickup_notes=$15, picked_up_at=$16, picked_up_by=$17, updated_at=NOW()
        WHERE id=$18
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		job.MemberName,
		job.Phone,
		job.Email,
		job.RacquetType,
		job.Notes,
		job.PickupDeadline,
		job.ReadyForPickupAt,
		job.Status,
		job.AssignedStringer,
		job.MaxTension,
		lbs, by, reason,
		job.PickupSignature,
		job.PickupNotes,
		job.PickedUpAt,
		job.PickedUpBy,
		job.ID,
	).Scan(&job.UpdatedAt)
	return err
}

func (r *jobRepository) UpdatePaymentTotals(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE racquet_jobs SET amount_paid=$1, payment_status=$2, paid_at=$3, paid_by_staff=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, job.AmountPaid, job.PaymentStatus, job.PaidAt, job.PaidByStaff, job.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) MarkReminderSent(ctx context.Context, jobID, templateKey string, at time.Time) error {
	column, err := reminderColumn(templateKey)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE racquet_jobs SET %s=$1 WHERE id=$2`, column)
	cmd, err := r.pool.Exec(ctx, query, at, jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func reminderColumn(templateKey string) (string, error) {
	switch templateKey {
	case "day8_reminder":
		return "day8_reminder_sent_at", nil
	case "day10_notice":
		return "day10_reminder_sent_at", nil
	}
	return "", fmt.Errorf("no reminder column for template %q", templateKey)
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return r.fetchSingle(ctx, `SELECT `+jobColumns+jobFrom+` WHERE j.id=$1`, id)
}

func (r *jobRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Job, error) {
	return r.fetchSingle(ctx, `SELECT `+jobColumns+jobFrom+` WHERE j.ticket_number=$1`, ticketNumber)
}

func (r *jobRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Job, error) {
	job, err := scanJob(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		args = append(args, domain.LegacyAliases(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("j.status = ANY($%d)", len(args)))
	}
	terminal := domain.LegacyAliases([]domain.CanonicalStatus{domain.StatusPickupCompleted, domain.StatusCancelled})
	switch filter.View {
	case JobViewActive:
		args = append(args, terminal)
		clauses = append(clauses, fmt.Sprintf("NOT (j.status = ANY($%d))", len(args)))
	case JobViewCompleted:
		args = append(args, terminal)
		clauses = append(clauses, fmt.Sprintf("j.status = ANY($%d)", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.SearchTerm)+"%")
		clauses = append(clauses, fmt.Sprintf("(j.member_name ILIKE $%d OR j.ticket_number ILIKE $%d)", len(args), len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY j.created_at DESC LIMIT %d OFFSET %d`,
		jobColumns, jobFrom, strings.Join(clauses, " AND "), limit, offset)
	return r.collect(ctx, query, args...)
}

// ListAwaitingPickup returns finished jobs that have a ready timestamp.
func (r *jobRepository) ListAwaitingPickup(ctx context.Context) ([]domain.Job, error) {
	statuses := domain.LegacyAliases([]domain.CanonicalStatus{
		domain.StatusStringingCompleted,
		domain.StatusReadyForPickup,
		domain.StatusWaitingPickup,
	})
	query := `SELECT ` + jobColumns + jobFrom + `
        WHERE j.status = ANY($1) AND j.ready_for_pickup_at IS NOT NULL
        ORDER BY j.ready_for_pickup_at ASC`
	return r.collect(ctx, query, statuses)
}

func (r *jobRepository) ListAll(ctx context.Context) ([]domain.Job, error) {
	return r.collect(ctx, `SELECT `+jobColumns+jobFrom+` ORDER BY j.created_at ASC`)
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM racquet_jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) collect(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job            domain.Job
		status         string
		overrideLbs    *int
		overrideBy     *string
		overrideReason *string
		stringID       *string
		stringName     *string
		stringBrand    *string
		stringGauge    *string
		stringActive   *bool
		stringPrice    *int64
	)
	if err := row.Scan(
		&job.ID,
		&job.TicketNumber,
		&job.MemberName,
		&job.Phone,
		&job.Email,
		&job.RacquetType,
		&job.StringID,
		&job.RequestedTension,
		&job.Notes,
		&job.TermsAccepted,
		&job.TermsAcceptedAt,
		&job.DropInDate,
		&job.PickupDeadline,
		&job.ReadyForPickupAt,
		&status,
		&job.AmountDue,
		&job.AmountPaid,
		&job.PaymentStatus,
		&job.PaidAt,
		&job.PaidByStaff,
		&job.AssignedStringer,
		&job.AddOns.Rush,
		&job.AddOns.Tier,
		&job.AddOns.GrommetRepair,
		&job.AddOns.StencilRequest,
		&job.AddOns.GripAddOn,
		&job.MaxTension,
		&overrideLbs,
		&overrideBy,
		&overrideReason,
		&job.PickupSignature,
		&job.PickupNotes,
		&job.PickedUpAt,
		&job.PickedUpBy,
		&job.Day8ReminderAt,
		&job.Day10ReminderAt,
		&job.CreatedAt,
		&job.UpdatedAt,
		&stringID,
		&stringName,
		&stringBrand,
		&stringGauge,
		&stringActive,
		&stringPrice,
	); err != nil {
		return nil, err
	}

	job.Status = domain.Normalize(status)
	if overrideLbs != nil && overrideBy != nil && overrideReason != nil {
		job.TensionOverride = &domain.TensionOverride{Lbs: *overrideLbs, Staff: *overrideBy, Reason: *overrideReason}
	}
	if stringID != nil {
		job.String = &domain.StringOption{
			ID:         *stringID,
			Name:       deref(stringName),
			Brand:      deref(stringBrand),
			Gauge:      deref(stringGauge),
			Active:     stringActive != nil && *stringActive,
			PriceCents: derefInt64(stringPrice),
		}
	}
	return &job, nil
}

func overrideColumns(o *domain.TensionOverride) (*int, *string, *string) {
	if o == nil {
		return nil, nil, nil
	}
	lbs, by, reason := o.Lbs, o.Staff, o.Reason
	return &lbs, &by, &reason
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
