package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// StatusEventRepository stores the append-only audit trail.
type StatusEventRepository interface {
	Create(ctx context.Context, event *domain.StatusEvent) error
	ListByJob(ctx context.Context, jobID string) ([]domain.StatusEvent, error)
}

type statusEventRepository struct {
	pool *pgxpool.Pool
}

// NewStatusEventRepository builds repository.
func NewStatusEventRepository(pool *pgxpool.Pool) StatusEventRepository {
	return &statusEventRepository{pool: pool}
}

func (r *statusEventRepository) Create(ctx context.Context, event *domain.StatusEvent) error {
	const query = `
        INSERT INTO status_events (job_id, event_type, staff_name)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.JobID,
		event.EventType,
		event.StaffName,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *statusEventRepository) ListByJob(ctx context.Context, jobID string) ([]domain.StatusEvent, error) {
	const query = `
        SELECT id, job_id, event_type, staff_name, created_at
        FROM status_events WHERE job_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusEvent
	for rows.Next() {
		var event domain.StatusEvent
		if err := rows.Scan(
			&event.ID,
			&event.JobID,
			&event.EventType,
			&event.StaffName,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
