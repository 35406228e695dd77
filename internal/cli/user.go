package cli

import (
	"fmt"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewUserCmd manages accounts from the command line.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var password, name, role string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("role must be %q or %q", domain.RoleAdmin, domain.RoleOperator)
			}
			return withAdmin(cmd, *configPath, func(admin *app.AdminService, _ *zap.Logger) error {
				user, err := admin.AddUser(cmd.Context(), args[0], password, name, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Username, user.Role)
				return nil
			})
		},
	}
	add.Flags().StringVar(&password, "password", "", "account password")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", string(domain.RoleOperator), "admin or operator")
	_ = add.MarkFlagRequired("password")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}
