package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/auth"
	"github.com/stringdesk/stringing-service/internal/service"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

var errInvalidPayload = apperrors.NewValidationError("invalid payload", nil)

// respond writes the data envelope. Failed best-effort audit writes ride along as warnings.
func respond(c *fiber.Ctx, status int, data any, warnings service.Warnings) error {
	body := fiber.Map{"data": data}
	if len(warnings) > 0 {
		list := make([]fiber.Map, 0, len(warnings))
		for _, w := range warnings {
			entry := fiber.Map{"code": w.Code, "message": w.Message}
			if len(w.Details) > 0 {
				entry["details"] = w.Details
			}
			list = append(list, entry)
		}
		body["warnings"] = list
	}
	return c.Status(status).JSON(body)
}

// actingStaff prefers the name in the payload and falls back to the signed-in staff member.
func actingStaff(c *fiber.Ctx, given string) string {
	if name := strings.TrimSpace(given); name != "" {
		return name
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.StaffName()
	}
	return ""
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseDate(field string, val *string) (*time.Time, error) {
	if val == nil || strings.TrimSpace(*val) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*val))
	if err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"field": field})
	}
	return &t, nil
}
