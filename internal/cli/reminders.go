package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stringdesk/stringing-service/internal/bootstrap"
	"github.com/stringdesk/stringing-service/internal/service"
)

func init() {
	rootCmd.AddCommand(remindersCmd)
	remindersCmd.Flags().Bool("dry-run", false, "List the reminders that are due without sending them")
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send due day-8 and day-10 pickup reminders once",
	Long: `Scans racquets waiting for pickup and sends each due reminder once.
A racquet past day 10 gets only the final notice.`,
	Args: cobra.NoArgs,
	RunE: runReminders,
}

func runReminders(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
		report, err := c.Reminders.Sweep(ctx, dryRun)
		if err != nil {
			return err
		}
		printSweep(cmd.OutOrStdout(), report)
		return nil
	})
}

func printSweep(out io.Writer, report *service.SweepReport) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKET\tTEMPLATE\tOUTCOME\tERROR")
	for _, item := range report.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.TicketNumber, item.TemplateKey, item.Outcome, item.Error)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "scanned %d, sent %d, planned %d, throttled %d, failed %d\n",
		report.Scanned,
		report.Count(service.OutcomeSent),
		report.Count(service.OutcomePlanned),
		report.Count(service.OutcomeThrottled),
		report.Count(service.OutcomeFailed))
}
