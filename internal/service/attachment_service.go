package service

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// AttachmentService records photo metadata. The files live in external storage.
type AttachmentService struct {
	jobs        repository.JobRepository
	attachments repository.AttachmentRepository
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	Stage      domain.AttachmentStage
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	UploadedBy string
}

// NewAttachmentService constructs the service.
func NewAttachmentService(jobs repository.JobRepository, attachments repository.AttachmentRepository) *AttachmentService {
	return &AttachmentService{jobs: jobs, attachments: attachments}
}

// Add stores metadata for an uploaded photo.
func (s *AttachmentService) Add(ctx context.Context, jobID string, input AttachmentInput) (*domain.JobAttachment, error) {
	if !input.Stage.Valid() {
		return nil, apperrors.NewValidationError("stage must be intake, completed or issue", map[string]any{"stage": input.Stage})
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.NewValidationError("file name is required", map[string]any{"field": "file_name"})
	}
	if input.MimeType != "" && !strings.HasPrefix(input.MimeType, "image/") {
		return nil, apperrors.NewValidationError("only images can be attached", map[string]any{"mime_type": input.MimeType})
	}
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, notFound(err, "job", jobID)
	}

	attachment := &domain.JobAttachment{
		JobID:      jobID,
		Stage:      input.Stage,
		StorageKey: strings.TrimSpace(input.StorageKey),
		FileName:   strings.TrimSpace(input.FileName),
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
	}
	if attachment.StorageKey == "" {
		attachment.StorageKey = StorageKey(jobID, input.Stage, attachment.FileName)
	}
	if by := strings.TrimSpace(input.UploadedBy); by != "" {
		attachment.UploadedByName = &by
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// List returns a job's attachments.
func (s *AttachmentService) List(ctx context.Context, jobID string) ([]domain.JobAttachment, error) {
	return s.attachments.ListByJob(ctx, jobID)
}

// Delete removes one attachment record.
func (s *AttachmentService) Delete(ctx context.Context, jobID, id string) error {
	if err := s.attachments.Delete(ctx, jobID, id); err != nil {
		return notFound(err, "attachment", id)
	}
	return nil
}

// StorageKey builds the object path jobs/<job>/<stage>/<uuid>.<ext>.
func StorageKey(jobID string, stage domain.AttachmentStage, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "" {
		ext = "jpg"
	}
	return "jobs/" + jobID + "/" + string(stage) + "/" + uuid.NewString() + "." + ext
}
