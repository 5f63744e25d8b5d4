package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stringdesk/stringing-service/internal/bootstrap"
	"github.com/stringdesk/stringing-service/internal/service"
	"github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().Bool("dry-run", false, "Report drift without rewriting cached totals")
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute cached payment totals from the payment ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
			report, err := c.Payments.Reconcile(ctx, dryRun)
			if err != nil {
				return err
			}
			printReconcile(cmd.OutOrStdout(), report, dryRun)
			return nil
		})
	},
}

func printReconcile(out io.Writer, report *service.ReconcileReport, dryRun bool) {
	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	for _, d := range report.Fixed {
		fmt.Fprintf(out, "%s: cached %s, ledger %s\n", d.JobID,
			errorutil.FormatCents(d.Cached), errorutil.FormatCents(d.Ledger))
	}
	fmt.Fprintf(out, "checked %d job(s), %s %d\n", report.Checked, verb, len(report.Fixed))
}
