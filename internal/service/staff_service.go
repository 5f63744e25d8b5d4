package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stringdesk/stringing-service/internal/auth"
	"github.com/stringdesk/stringing-service/internal/config"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// StaffService manages existing staff accounts. Route guards restrict it to managers.
type StaffService struct {
	staff      repository.StaffRepository
	bcryptCost int
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.StaffRole
	Active *bool
	Search string
	Limit  int
	Offset int
}

// StaffUpdateInput carries optional changes. Nil fields are left alone.
type StaffUpdateInput struct {
	Name   *string
	Email  *string
	Role   *domain.StaffRole
	Active *bool
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, staff repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff, bcryptCost: cfg.Auth.BcryptCost}
}

// List lists staff with filters.
func (s *StaffService) List(ctx context.Context, filters StaffListFilters) ([]domain.StaffMember, error) {
	return s.staff.List(ctx, repository.StaffFilter{
		Role:   filters.Role,
		Active: filters.Active,
		Search: filters.Search,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// Get fetches one staff member.
func (s *StaffService) Get(ctx context.Context, id string) (*domain.StaffMember, error) {
	staff, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "staff", id)
	}
	return staff, nil
}

// Update changes name, email, role or active flag.
func (s *StaffService) Update(ctx context.Context, id string, input StaffUpdateInput) (*domain.StaffMember, error) {
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	wasManager := staff.IsActiveManager()
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", map[string]any{"field": "name"})
		}
		staff.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("email must not be empty", map[string]any{"field": "email"})
		}
		if email != staff.Email {
			existing, err := s.staff.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != staff.ID:
				return nil, apperrors.NewConflict("staff email already exists", map[string]any{"email": email})
			case err != nil && !errors.Is(err, pgx.ErrNoRows):
				return nil, err
			}
		}
		staff.Email = email
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown staff role", map[string]any{"role": *input.Role})
		}
		staff.Role = *input.Role
	}
	if input.Active != nil {
		staff.Active = *input.Active
	}
	if wasManager && !staff.IsActiveManager() {
		if err := s.keepOneManager(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.staff.Update(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("staff email already exists", map[string]any{"email": staff.Email})
		}
		return nil, notFound(err, "staff", id)
	}
	return staff, nil
}

// SetPassword replaces a staff member's password.
func (s *StaffService) SetPassword(ctx context.Context, id, password string) error {
	if err := auth.CheckPassword(password); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	staff, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	staff.PasswordHash = hash
	if err := s.staff.Update(ctx, staff); err != nil {
		return notFound(err, "staff", id)
	}
	return nil
}

// keepOneManager refuses a change that would leave no active manager to
// administer accounts.
func (s *StaffService) keepOneManager(ctx context.Context) error {
	n, err := s.staff.CountActive(ctx, domain.StaffRoleManager)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperrors.NewConflict("cannot demote or deactivate the last active manager", nil)
	}
	return nil
}
