package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/service"
)

// IntakeHandler serves the public drop-off form.
type IntakeHandler struct {
	jobs *service.JobService
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(jobs *service.JobService) *IntakeHandler {
	return &IntakeHandler{jobs: jobs}
}

// CreateJob handles POST /intake/jobs.
func (h *IntakeHandler) CreateJob(c *fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	dropIn, err := parseDate("drop_in_date", req.DropInDate)
	if err != nil {
		return err
	}
	deadline, err := parseDate("pickup_deadline", req.PickupDeadline)
	if err != nil {
		return err
	}

	result, err := h.jobs.Create(c.UserContext(), service.JobCreateInput{
		MemberName:       req.MemberName,
		Phone:            req.Phone,
		Email:            req.Email,
		RacquetType:      req.RacquetType,
		StringID:         req.StringID,
		RequestedTension: req.RequestedTension,
		Notes:            req.Notes,
		TermsAccepted:    req.TermsAccepted,
		DropInDate:       dropIn,
		PickupDeadline:   deadline,
		AddOns: domain.AddOns{
			Rush:           domain.RushService(req.RushService),
			Tier:           domain.ServiceTier(req.ServiceTier),
			GrommetRepair:  req.GrommetRepair,
			StencilRequest: req.StencilRequest,
			GripAddOn:      req.GripAddOn,
		},
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewJobResponse(result.Job), result.Warnings)
}

// Quote handles POST /intake/quote.
func (h *IntakeHandler) Quote(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	quote, err := h.jobs.Quote(c.UserContext(), req.StringID, domain.AddOns{
		Rush:          domain.RushService(req.RushService),
		Tier:          domain.ServiceTier(req.ServiceTier),
		GrommetRepair: req.GrommetRepair,
		GripAddOn:     req.GripAddOn,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, quote, nil)
}
