package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/notify"
	"github.com/stringdesk/stringing-service/internal/service"
)

// RemindersHandler sends customer messages on demand.
type RemindersHandler struct {
	reminders *service.ReminderService
}

// NewRemindersHandler constructs handler.
func NewRemindersHandler(reminders *service.ReminderService) *RemindersHandler {
	return &RemindersHandler{reminders: reminders}
}

// SendReminder handles POST /staff/jobs/:id/reminders.
func (h *RemindersHandler) SendReminder(c *fiber.Ctx) error {
	var req dto.ReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.reminders.SendReminder(c.UserContext(), c.Params("id"), service.SendInput{
		TemplateKey: req.TemplateKey,
		StaffName:   actingStaff(c, req.StaffName),
		Channel:     notify.Channel(req.Channel),
		Message:     req.Message,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.ReminderResponse{ReceiptID: result.Receipt.ID, Body: result.Body}, result.Warnings)
}

// SendTensionNotice handles POST /staff/jobs/:id/tension/notify.
func (h *RemindersHandler) SendTensionNotice(c *fiber.Ctx) error {
	var req dto.TensionNoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.reminders.SendTensionNotice(c.UserContext(), c.Params("id"), actingStaff(c, req.StaffName), req.Message)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.ReminderResponse{ReceiptID: result.Receipt.ID, Body: result.Body}, result.Warnings)
}

// Sweep handles POST /staff/reminders/sweep. ?dry_run=true only plans.
func (h *RemindersHandler) Sweep(c *fiber.Ctx) error {
	report, err := h.reminders.Sweep(c.UserContext(), c.QueryBool("dry_run", false))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"scanned": report.Scanned,
		"items":   report.Items,
	}, nil)
}
