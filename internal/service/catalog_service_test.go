package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stringdesk/stringing-service/internal/domain"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

func TestStringService(t *testing.T) {
	store := newMemStore()
	svc := NewStringService(memStrings{store})
	ctx := context.Background()

	_, err := svc.Create(ctx, StringInput{Name: " "})
	requireCode(t, err, apperrors.CodeValidation)
	_, err = svc.Create(ctx, StringInput{Name: "BG80", PriceCents: -1})
	requireCode(t, err, apperrors.CodeValidation)

	created, err := svc.Create(ctx, StringInput{Name: "BG80", Brand: "Yonex", PriceCents: 3800})
	if err != nil {
		t.Fatal(err)
	}
	if !created.Active {
		t.Fatal("new strings are active")
	}

	inactive := false
	if _, err := svc.Update(ctx, created.ID, StringInput{Name: "BG80", Brand: "Yonex", PriceCents: 3800, Active: &inactive}); err != nil {
		t.Fatal(err)
	}
	active, err := svc.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("active = %+v", active)
	}

	requireCode(t, svc.Delete(ctx, "missing"), apperrors.CodeNotFound)
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
}

func TestAttachmentService(t *testing.T) {
	store := newMemStore()
	job := store.putJob(domain.Job{Status: domain.StatusReceivedFrontDesk})
	svc := NewAttachmentService(memJobs{store}, memAttachments{store})
	ctx := context.Background()

	tests := []struct {
		name  string
		jobID string
		input AttachmentInput
		code  string
	}{
		{"bad stage", job.ID, AttachmentInput{Stage: "after", FileName: "a.jpg"}, apperrors.CodeValidation},
		{"no file name", job.ID, AttachmentInput{Stage: domain.StageIntake}, apperrors.CodeValidation},
		{"not an image", job.ID, AttachmentInput{Stage: domain.StageIntake, FileName: "a.pdf", MimeType: "application/pdf"}, apperrors.CodeValidation},
		{"unknown job", "nope", AttachmentInput{Stage: domain.StageIntake, FileName: "a.jpg"}, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.jobID, tt.input)
			requireCode(t, err, tt.code)
		})
	}

	att, err := svc.Add(ctx, job.ID, AttachmentInput{Stage: domain.StageCompleted, FileName: "Photo.PNG", MimeType: "image/png", UploadedBy: "Sam"})
	if err != nil {
		t.Fatal(err)
	}
	prefix := "jobs/" + job.ID + "/completed/"
	if !strings.HasPrefix(att.StorageKey, prefix) || !strings.HasSuffix(att.StorageKey, ".png") {
		t.Fatalf("storage key = %q", att.StorageKey)
	}
	if err := svc.Delete(ctx, job.ID, att.ID); err != nil {
		t.Fatal(err)
	}
	requireCode(t, svc.Delete(ctx, job.ID, att.ID), apperrors.CodeNotFound)
}
