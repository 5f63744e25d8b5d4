package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// ErrStaleJob is returned when the cached totals changed between read and write.
var ErrStaleJob = errors.New("job payment totals changed concurrently")

// PaymentRepository persists ledger entries.
type PaymentRepository interface {
	// Record inserts the event and the job's new cached totals in one
	// transaction. previousPaid guards against a concurrent payment.
	Record(ctx context.Context, event *domain.PaymentEvent, job *domain.Job, previousPaid int64) error
	ListByJob(ctx context.Context, jobID string) ([]domain.PaymentEvent, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository builds repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Record(ctx context.Context, event *domain.PaymentEvent, job *domain.Job, previousPaid int64) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const updateJob = `
        UPDATE racquet_jobs SET amount_paid=$1, payment_status=$2, paid_at=$3, paid_by_staff=$4, updated_at=NOW()
        WHERE id=$5 AND amount_paid=$6
        RETURNING updated_at`
	if err = tx.QueryRow(ctx, updateJob,
		job.AmountPaid,
		job.PaymentStatus,
		job.PaidAt,
		job.PaidByStaff,
		job.ID,
		previousPaid,
	).Scan(&job.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrStaleJob
		}
		return err
	}

	const insertEvent = `
        INSERT INTO payment_events (job_id, amount, payment_method, staff_name, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err = tx.QueryRow(ctx, insertEvent,
		event.JobID,
		event.Amount,
		event.PaymentMethod,
		event.StaffName,
		event.CreatedAt,
	).Scan(&event.ID, &event.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *paymentRepository) ListByJob(ctx context.Context, jobID string) ([]domain.PaymentEvent, error) {
	const query = `
        SELECT id, job_id, amount, payment_method, staff_name, created_at
        FROM payment_events WHERE job_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PaymentEvent
	for rows.Next() {
		var event domain.PaymentEvent
		if err := rows.Scan(
			&event.ID,
			&event.JobID,
			&event.Amount,
			&event.PaymentMethod,
			&event.StaffName,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
