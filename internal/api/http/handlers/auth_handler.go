package handlers

import (

	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/service"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// AuthHandler exposes staff sign-in and account provisioning.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/staff/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	staff, token, exp, err := h.authService.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": staffResponse(staff),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// CreateStaff handles POST /staff/members.
func (h *AuthHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	role, _ := domain.ParseStaffRole(req.Role)
	staff, err := h.authService.CreateStaff(c.UserContext(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:          staff.ID,
		Name:        staff.Name,
		Email:       staff.Email,
		Role:        string(staff.Role),
		Active:      staff.Active,
		LastLoginAt: staff.LastLoginAt,
		CreatedAt:   staff.CreatedAt,
	}
}
