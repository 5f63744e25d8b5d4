package domain

import "time"

// AttachmentStage tags when a photo was taken.
type AttachmentStage string

const (
	StageIntake    AttachmentStage = "intake"
	StageCompleted AttachmentStage = "completed"
	StageIssue     AttachmentStage = "issue"
)

// Valid reports whether the stage is one of the known tags.
func (s AttachmentStage) Valid() bool {
	switch s {
	case StageIntake, StageCompleted, StageIssue:
		return true
	}
	return false
}

// JobAttachment stores metadata for a photo kept in external storage.
type JobAttachment struct {
	ID             string
	JobID          string
	Stage          AttachmentStage
	StorageKey     string
	FileName       string
	MimeType       string
	SizeBytes      int64
	UploadedByName *string
	CreatedAt      time.Time
}
