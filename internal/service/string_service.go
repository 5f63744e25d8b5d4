package service

import (
	"context"
	"strings"

	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// StringService manages the string catalog.
type StringService struct {
	strings repository.StringRepository
}

// StringInput is the catalog form.
type StringInput struct {
	Name       string
	Brand      string
	Gauge      string
	Active     *bool
	PriceCents int64
}

// NewStringService constructs the service.
func NewStringService(repo repository.StringRepository) *StringService {
	return &StringService{strings: repo}
}

// List returns the catalog. Intake only offers active strings.
func (s *StringService) List(ctx context.Context, activeOnly bool) ([]domain.StringOption, error) {
	return s.strings.List(ctx, activeOnly)
}

// Create adds a string.
func (s *StringService) Create(ctx context.Context, input StringInput) (*domain.StringOption, error) {
	option := &domain.StringOption{Active: true}
	if err := applyStringInput(option, input); err != nil {
		return nil, err
	}
	if err := s.strings.Create(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

// Update replaces a string's fields.
func (s *StringService) Update(ctx context.Context, id string, input StringInput) (*domain.StringOption, error) {
	option, err := s.strings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "string", id)
	}
	if err := applyStringInput(option, input); err != nil {
		return nil, err
	}
	if err := s.strings.Update(ctx, option); err != nil {
		return nil, notFound(err, "string", id)
	}
	return option, nil
}

// Delete removes a string. Jobs keep their history with no string reference.
func (s *StringService) Delete(ctx context.Context, id string) error {
	if err := s.strings.Delete(ctx, id); err != nil {
		return notFound(err, "string", id)
	}
	return nil
}

func applyStringInput(option *domain.StringOption, input StringInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidationError("string name is required", map[string]any{"field": "name"})
	}
	if input.PriceCents < 0 {
		return apperrors.NewValidationError("price must not be negative", map[string]any{"field": "price_cents"})
	}
	option.Name = name
	option.Brand = strings.TrimSpace(input.Brand)
	option.Gauge = strings.TrimSpace(input.Gauge)
	option.PriceCents = input.PriceCents
	if input.Active != nil {
		option.Active = *input.Active
	}
	return nil
}
