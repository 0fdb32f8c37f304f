package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
)

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff and portal users",
	}
	cmd.AddCommand(usersCreateCmd(e), usersListCmd(e))
	return cmd
}

func usersCreateCmd(e *env) *cobra.Command {
	var in service.CreateUserInput
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = domain.Role(role)
			svc := &service.UserService{Store: e.db}
			u, err := svc.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAccountant), "admin, accountant or client")
	cmd.Flags().StringVar(&in.ClientID, "client-id", "", "client the portal user belongs to (role client)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func usersListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := &service.UserService{Store: e.db}
			users, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tCLIENT\tMFA")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Role, u.ClientID, u.MFAEnabledAt != nil)
			}
			return w.Flush()
		},
	}
}
