package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// AttachmentRepository persists photo metadata for jobs.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.JobAttachment) error
	ListByJob(ctx context.Context, jobID string) ([]domain.JobAttachment, error)
	CountByJob(ctx context.Context, jobID string) (map[domain.AttachmentStage]int, error)
	Delete(ctx context.Context, jobID, id string) error
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.JobAttachment) error {
	const query = `
        INSERT INTO job_attachments (job_id, stage, storage_key, file_name, mime_type, size_bytes, uploaded_by_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.JobID,
		attachment.Stage,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
		attachment.UploadedByName,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobAttachment, error) {
	const query = `
        SELECT id, job_id, stage, storage_key, file_name, mime_type, size_bytes, uploaded_by_name, created_at
        FROM job_attachments WHERE job_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobAttachment
	for rows.Next() {
		var attachment domain.JobAttachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.JobID,
			&attachment.Stage,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.UploadedByName,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) CountByJob(ctx context.Context, jobID string) (map[domain.AttachmentStage]int, error) {
	const query = `SELECT stage, COUNT(*) FROM job_attachments WHERE job_id=$1 GROUP BY stage`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.AttachmentStage]int{}
	for rows.Next() {
		var (
			stage domain.AttachmentStage
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

func (r *attachmentRepository) Delete(ctx context.Context, jobID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM job_attachments WHERE id=$1 AND job_id=$2`, id, jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
