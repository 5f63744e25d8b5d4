package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/service"
)

// StringsHandler serves the string catalog.
type StringsHandler struct {
	strings *service.StringService
}

// NewStringsHandler constructs handler.
func NewStringsHandler(strings *service.StringService) *StringsHandler {
	return &StringsHandler{strings: strings}
}

// ListActive handles GET /strings for the intake form.
func (h *StringsHandler) ListActive(c *fiber.Ctx) error {
	return h.list(c, true)
}

// ListAll handles GET /staff/strings, including retired strings.
func (h *StringsHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, c.QueryBool("active_only", false))
}

func (h *StringsHandler) list(c *fiber.Ctx, activeOnly bool) error {
	options, err := h.strings.List(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	resp := make([]dto.StringResponse, 0, len(options))
	for i := range options {
		resp = append(resp, dto.NewStringResponse(&options[i]))
	}
	return respond(c, fiber.StatusOK, resp, nil)
}

// Create handles POST /staff/strings.
func (h *StringsHandler) Create(c *fiber.Ctx) error {
	var req dto.StringRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	option, err := h.strings.Create(c.UserContext(), stringInput(req))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewStringResponse(option), nil)
}

// Update handles PUT /staff/strings/:id.
func (h *StringsHandler) Update(c *fiber.Ctx) error {
	var req dto.StringRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	option, err := h.strings.Update(c.UserContext(), c.Params("id"), stringInput(req))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewStringResponse(option), nil)
}

// Delete handles DELETE /staff/strings/:id.
func (h *StringsHandler) Delete(c *fiber.Ctx) error {
	if err := h.strings.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func stringInput(req dto.StringRequest) service.StringInput {
	return service.StringInput{
		Name:       req.Name,
		Brand:      req.Brand,
		Gauge:      req.Gauge,
		Active:     req.Active,
		PriceCents: req.PriceCents,
	}
}

