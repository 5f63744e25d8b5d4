package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/service"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// StaffHandler exposes staff account management to managers.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// ListStaff handles GET /staff/members.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	pageSize := parseInt(c.Query("page_size"), 50)
	filters := service.StaffListFilters{
		Limit:  pageSize,
		Offset: (parseInt(c.Query("page"), 1) - 1) * pageSize,
	}
	if raw := c.Query("role"); raw != "" {
		role, ok := domain.ParseStaffRole(raw)
		if !ok {
			return apperrors.NewValidationError("unknown staff role", map[string]any{"role": raw})
		}
		filters.Role = &role
	}
	filters.Search = c.Query("q")
	if c.Query("active") != "" {
		active := c.QueryBool("active", true)
		filters.Active = &active
	}

	members, err := h.staff.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		resp = append(resp, staffResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetStaff handles GET /staff/members/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	member, err := h.staff.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// UpdateStaff handles PATCH /staff/members/:id.
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	input := service.StaffUpdateInput{Name: req.Name, Email: req.Email, Active: req.Active}
	if req.Role != nil {
		role, _ := domain.ParseStaffRole(*req.Role)
		input.Role = &role
	}
	member, err := h.staff.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// SetPassword handles PUT /staff/members/:id/password.
func (h *StaffHandler) SetPassword(c *fiber.Ctx) error {
	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := h.staff.SetPassword(c.UserContext(), c.Params("id"), req.Password); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
