package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/service"
)

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{{"migrate"}, {"reminders"}, {"reconcile"}, {"staff", "create"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
	for _, name := range []string{"reminders", "reconcile"} {
		cmd, _, _ := rootCmd.Find([]string{name})
		if cmd.Flags().Lookup("dry-run") == nil {
			t.Errorf("%s has no --dry-run flag", name)
		}
	}
}

func TestPrintSweep(t *testing.T) {
	var buf bytes.Buffer
	printSweep(&buf, &service.SweepReport{
		Scanned: 3,
		Items: []service.SweepItem{
			{TicketNumber: "STR-00000001", TemplateKey: "day8_reminder", Outcome: service.OutcomeSent},
			{TicketNumber: "STR-00000002", TemplateKey: "day10_notice", Outcome: service.OutcomeFailed, Error: "gateway down"},
		},
	})
	out := buf.String()
	for _, want := range []string{"STR-00000002", "gateway down", "scanned 3, sent 1, planned 0, throttled 0, failed 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReconcile(t *testing.T) {
	report := &service.ReconcileReport{
		Checked: 4,
		Fixed:   []ledger.Drift{{JobID: "job-1", Cached: 1500, Ledger: 3500}},
	}
	tests := []struct {
		dryRun bool
		want   string
	}{
		{false, "checked 4 job(s), fixed 1"},
		{true, "checked 4 job(s), would fix 1"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		printReconcile(&buf, report, tc.dryRun)
		out := buf.String()
		if !strings.Contains(out, "job-1: cached $15.00, ledger $35.00") || !strings.Contains(out, tc.want) {
			t.Errorf("dryRun=%v output:\n%s", tc.dryRun, out)
		}
	}
}
