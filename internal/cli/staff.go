package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stringdesk/stringing-service/internal/bootstrap"
	"github.com/stringdesk/stringing-service/internal/domain"
)

func init() {
	rootCmd.AddCommand(staffCmd)
	staffCmd.AddCommand(staffCreateCmd)

	staffCreateCmd.Flags().String("name", "", "Display name recorded on audit events")
	staffCreateCmd.Flags().String("email", "", "Sign-in email")
	staffCreateCmd.Flags().String("password", "", "Initial password")
	staffCreateCmd.Flags().String("role", string(domain.StaffRoleFrontDesk), "FRONT_DESK, STRINGER or MANAGER")
	_ = staffCreateCmd.MarkFlagRequired("name")
	_ = staffCreateCmd.MarkFlagRequired("email")
	_ = staffCreateCmd.MarkFlagRequired("password")
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff accounts",
}

var staffCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff account, e.g. the first manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		parsedRole, _ := domain.ParseStaffRole(role)
		return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
			staff, err := c.Auth.CreateStaff(ctx, name, email, password, parsedRole)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) as %s\n", staff.Name, staff.Email, staff.Role)
			return nil
		})
	},
}
