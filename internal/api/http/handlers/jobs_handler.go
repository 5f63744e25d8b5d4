package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/repository"
	"github.com/stringdesk/stringing-service/internal/service"
	"github.com/stringdesk/stringing-service/internal/timing"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

const maxPageSize = 200

// JobsHandler exposes the staff job board and workflow actions.
type JobsHandler struct {
	jobs *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs *service.JobService) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// ListJobs handles GET /staff/jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	filter, err := parseJobListFilter(c)
	if err != nil {
		return err
	}
	jobs, err := h.jobs.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.JobSummary, 0, len(jobs))
	for i := range jobs {
		resp = append(resp, dto.NewJobSummary(&jobs[i]))
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{
			"page":      filter.Offset/filter.Limit + 1,
			"page_size": filter.Limit,
		},
	})
}

// GetJob handles GET /staff/jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	detail, err := h.jobs.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(detail.AttachmentCounts))
	for stage, n := range detail.AttachmentCounts {
		counts[string(stage)] = n
	}
	return respond(c, fiber.StatusOK, dto.JobDetailResponse{
		Job:              dto.NewJobResponse(detail.Job),
		BalanceDueCents:  detail.BalanceDue,
		FullyPaid:        detail.FullyPaid,
		Due:              badgeResponse(detail.Due),
		Countdown:        badgeResponse(detail.Countdown),
		AttachmentCounts: counts,
	}, nil)
}

// Timeline handles GET /staff/jobs/:id/timeline.
func (h *JobsHandler) Timeline(c *fiber.Ctx) error {
	entries, err := h.jobs.Timeline(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, entries, nil)
}

// Receive handles POST /staff/jobs/:id/receive.
func (h *JobsHandler) Receive(c *fiber.Ctx) error {
	var req dto.StaffActionRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	return h.jobResult(c, func(staff string) (*service.JobResult, error) {
		return h.jobs.MarkReceivedByFrontDesk(c.UserContext(), c.Params("id"), staff)
	}, req.StaffName)
}

// ChangeStatus handles POST /staff/jobs/:id/status.
func (h *JobsHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	return h.jobResult(c, func(staff string) (*service.JobResult, error) {
		return h.jobs.AdvanceStatus(c.UserContext(), c.Params("id"), req.Status, staff)
	}, req.StaffName)
}

// Cancel handles POST /staff/jobs/:id/cancel.
func (h *JobsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.StaffActionRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	return h.jobResult(c, func(staff string) (*service.JobResult, error) {
		return h.jobs.Cancel(c.UserContext(), c.Params("id"), staff)
	}, req.StaffName)
}

// Pickup handles POST /staff/jobs/:id/pickup.
func (h *JobsHandler) Pickup(c *fiber.Ctx) error {
	var req dto.PickupRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	return h.jobResult(c, func(staff string) (*service.JobResult, error) {
		return h.jobs.MarkPickupCompleted(c.UserContext(), c.Params("id"), service.PickupInput{
			StaffName: staff,
			Signature: req.Signature,
			Notes:     req.Notes,
		})
	}, req.StaffName)
}

// SetTension handles POST /staff/jobs/:id/tension.
func (h *JobsHandler) SetTension(c *fiber.Ctx) error {
	var req dto.TensionOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	return h.jobResult(c, func(staff string) (*service.JobResult, error) {
		return h.jobs.SetTensionOverride(c.UserContext(), c.Params("id"), req.OverrideLbs, staff, req.Reason)
	}, req.StaffName)
}

// ClearTension handles DELETE /staff/jobs/:id/tension.
func (h *JobsHandler) ClearTension(c *fiber.Ctx) error {
	result, err := h.jobs.ClearTensionOverride(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewJobResponse(result.Job), result.Warnings)
}

// SetMaxTension handles PUT /staff/jobs/:id/max-tension.
func (h *JobsHandler) SetMaxTension(c *fiber.Ctx) error {
	var req dto.MaxTensionRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.jobs.SetMaxTension(c.UserContext(), c.Params("id"), req.MaxTension)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewJobResponse(result.Job), result.Warnings)
}

// AssignStringer handles POST /staff/jobs/:id/stringer.
func (h *JobsHandler) AssignStringer(c *fiber.Ctx) error {
	var req dto.AssignStringerRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.jobs.AssignStringer(c.UserContext(), c.Params("id"), req.Stringer)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewJobResponse(result.Job), result.Warnings)
}

// DeleteJob handles DELETE /staff/jobs/:id.
func (h *JobsHandler) DeleteJob(c *fiber.Ctx) error {
	if err := h.jobs.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JobsHandler) jobResult(c *fiber.Ctx, action func(staff string) (*service.JobResult, error), staffName string) error {
	result, err := action(actingStaff(c, staffName))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewJobResponse(result.Job), result.Warnings)
}

func parseJobListFilter(c *fiber.Ctx) (service.JobListFilter, error) {
	filter := service.JobListFilter{
		Statuses: domain.ParseStatusList(c.Query("status")),
	}
	switch view := repository.JobView(strings.ToLower(c.Query("view"))); view {
	case "", repository.JobViewActive, repository.JobViewCompleted:
		filter.View = view
	default:
		return filter, apperrors.NewValidationError("view must be active or completed", map[string]any{"view": view})
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	filter.Limit = parseInt(c.Query("page_size"), 50)
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Offset = (page - 1) * filter.Limit
	return filter, nil
}

func badgeResponse(b timing.Badge) dto.BadgeResponse {
	return dto.BadgeResponse{Level: string(b.Level), Label: b.Label, Days: b.Days}
}
