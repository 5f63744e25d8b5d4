package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stringdesk/stringing-service/internal/config"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/repository"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

type memStaff struct {
	mu    sync.Mutex
	byID  map[string]domain.StaffMember
	order []string
}

func newMemStaff() *memStaff {
	return &memStaff{byID: map[string]domain.StaffMember{}}
}

func (m *memStaff) Create(_ context.Context, staff *domain.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staff.ID = "staff-" + string(rune('a'+len(m.order)))
	m.byID[staff.ID] = *staff
	m.order = append(m.order, staff.ID)
	return nil
}

func (m *memStaff) Update(_ context.Context, staff *domain.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.byID[staff.ID] = *staff
	return nil
}

func (m *memStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	staff, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (m *memStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, staff := range m.byID {
		if strings.EqualFold(staff.Email, email) {
			s := staff
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStaff) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StaffMember
	for _, id := range m.order {
		staff := m.byID[id]
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(staff.Name+" "+staff.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, staff)
	}
	return out, nil
}

func (m *memStaff) CountActive(_ context.Context, role domain.StaffRole) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, staff := range m.byID {
		if staff.Active && staff.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memStaff) RecordLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staff, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.LastLoginAt = &at
	m.byID[id] = staff
	return nil
}

func testAuthConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
}

func TestAuthService_CreateAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemStaff()
	svc := NewAuthService(testAuthConfig(), repo)

	staff, err := svc.CreateStaff(ctx, " Alice ", "Alice@Shop.test", "hunter2hunter2", domain.StaffRoleManager)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if staff.Name != "Alice" || staff.Email != "alice@shop.test" || staff.PasswordHash == "hunter2hunter2" {
		t.Fatalf("staff = %+v", staff)
	}

	createErrs := []struct {
		name  string
		email string
		role  domain.StaffRole
		code  string
	}{
		{"duplicate email", "alice@shop.test", domain.StaffRoleStringer, apperrors.CodeConflict},
		{"unknown role", "bob@shop.test", domain.StaffRole("ADMIN"), apperrors.CodeValidation},
		{"missing email", "", domain.StaffRoleStringer, apperrors.CodeValidation},
	}
	if _, err := svc.CreateStaff(ctx, "Bob", "bob@shop.test", "pw", domain.StaffRoleStringer); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("weak password err = %v", err)
	}
	for _, tc := range createErrs {
		if _, err := svc.CreateStaff(ctx, "Bob", tc.email, "longenough", tc.role); !apperrors.IsCode(err, tc.code) {
			t.Errorf("%s: err = %v, want %s", tc.name, err, tc.code)
		}
	}

	loggedIn, token, _, err := svc.LoginStaff(ctx, "alice@shop.test", "hunter2hunter2")
	if err != nil || token == "" {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.LastLoginAt == nil {
		t.Fatal("last login not recorded")
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil || claims.Role != domain.StaffRoleManager || claims.Name != "Alice" {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}

	if _, _, _, err := svc.LoginStaff(ctx, "alice@shop.test", "wrong"); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, _, _, err := svc.LoginStaff(ctx, "nobody@shop.test", "x"); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestStaffService_UpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := newMemStaff()
	authSvc := NewAuthService(testAuthConfig(), repo)
	svc := NewStaffService(testAuthConfig(), repo)

	alice, _ := authSvc.CreateStaff(ctx, "Alice", "alice@shop.test", "password1", domain.StaffRoleFrontDesk)
	if _, err := authSvc.CreateStaff(ctx, "Bob", "bob@shop.test", "password1", domain.StaffRoleStringer); err != nil {
		t.Fatal(err)
	}

	stringer := domain.StaffRoleStringer
	list, err := svc.List(ctx, StaffListFilters{Role: &stringer})
	if err != nil || len(list) != 1 || list[0].Name != "Bob" {
		t.Fatalf("stringers = %+v, err = %v", list, err)
	}

	taken := "BOB@shop.test"
	if _, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Email: &taken}); !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("duplicate email err = %v", err)
	}
	bogus := domain.StaffRole("OWNER")
	if _, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Role: &bogus}); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("bad role err = %v", err)
	}
	if _, err := svc.Update(ctx, "staff-z", StaffUpdateInput{}); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing staff err = %v", err)
	}

	inactive := false
	manager := domain.StaffRoleManager
	updated, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Role: &manager, Active: &inactive})
	if err != nil || updated.Role != manager || updated.Active {
		t.Fatalf("updated = %+v, err = %v", updated, err)
	}
	if _, _, _, err := authSvc.LoginStaff(ctx, "alice@shop.test", "password1"); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("inactive login err = %v", err)
	}

	if err := svc.SetPassword(ctx, alice.ID, "short"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("short password err = %v", err)
	}
	active := true
	if _, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Active: &active}); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetPassword(ctx, alice.ID, "correct horse"); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := authSvc.LoginStaff(ctx, "alice@shop.test", "correct horse"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	demote := domain.StaffRoleFrontDesk
	if _, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Role: &demote}); !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("demote last manager err = %v", err)
	}
	if _, err := authSvc.CreateStaff(ctx, "Carol", "carol@shop.test", "password1", domain.StaffRoleManager); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, alice.ID, StaffUpdateInput{Role: &demote}); err != nil {
		t.Fatalf("demote with another manager: %v", err)
	}

	found, err := svc.List(ctx, StaffListFilters{Search: "CAROL"})
	if err != nil || len(found) != 1 || found[0].Email != "carol@shop.test" {
		t.Fatalf("search = %+v, err = %v", found, err)
	}
}
