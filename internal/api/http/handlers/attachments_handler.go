package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/service"
)

// AttachmentsHandler manages photo metadata for a job.
type AttachmentsHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachments *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

// List handles GET /staff/jobs/:id/attachments.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	items, err := h.attachments.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.AttachmentResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewAttachmentResponse(&items[i]))
	}
	return respond(c, fiber.StatusOK, resp, nil)
}

// Add handles POST /staff/jobs/:id/attachments.
func (h *AttachmentsHandler) Add(c *fiber.Ctx) error {
	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	att, err := h.attachments.Add(c.UserContext(), c.Params("id"), service.AttachmentInput{
		Stage:      domain.AttachmentStage(req.Stage),
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		UploadedBy: actingStaff(c, req.UploadedBy),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewAttachmentResponse(att), nil)
}

// Delete handles DELETE /staff/jobs/:id/attachments/:attachmentId.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.attachments.Delete(c.UserContext(), c.Params("id"), c.Params("attachmentId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
