package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewConflict("taken", nil), CodeConflict, http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("save: %w", NewUnpaidBalance(1200)), CodeUnpaidBalance, 0},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"anything else", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			if de.Code != tc.code {
				t.Fatalf("code = %s, want %s", de.Code, tc.code)
			}
			if tc.status != 0 && de.HTTPStatus != tc.status {
				t.Fatalf("status = %d, want %d", de.HTTPStatus, tc.status)
			}
		})
	}
	if ToDomainError(nil) != nil || MapError(nil) != nil {
		t.Fatal("nil error mapped to non-nil")
	}
}

func TestRemainingBalance(t *testing.T) {
	if got, ok := RemainingBalance(fmt.Errorf("pickup: %w", NewUnpaidBalance(2550))); !ok || got != 2550 {
		t.Fatalf("remaining = %d, %v", got, ok)
	}
	if _, ok := RemainingBalance(NewAlreadyPaid(100, 100)); ok {
		t.Fatal("ALREADY_PAID reported a remaining balance")
	}
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{
		0:      "$0.00",
		5:      "$0.05",
		1500:   "$15.00",
		123456: "$1234.56",
		-250:   "-$2.50",
	}
	for cents, want := range tests {
		if got := FormatCents(cents); got != want {
			t.Errorf("FormatCents(%d) = %q, want %q", cents, got, want)
		}
	}
}
