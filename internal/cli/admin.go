package cli

import (
	"fmt"
	"text/tabwriter"

	"storefront/internal/client"

	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer storefront accounts (admin session required)",
	}
	cmd.AddCommand(
		newAdminUsersCmd(a),
		newAdminSetCmd(a, "grant", true),
		newAdminSetCmd(a, "revoke", false),
	)
	return cmd
}

func newAdminUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guard.ProtectAdmin(func(client.Session) error {
				users, err := a.api.AdminListUsers(cmd.Context())
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tADMIN")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.IsAdmin)
				}
				return w.Flush()
			})
		},
	}
}

func newAdminSetCmd(a *app, verb string, isAdmin bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <user_id>",
		Short: verb + " the admin flag; takes effect at the user's next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guard.ProtectAdmin(func(client.Session) error {
				u, err := a.api.AdminSetAdmin(cmd.Context(), args[0], isAdmin)
				if err != nil {
					return fmt.Errorf("%s admin: %w", verb, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> admin=%t\n", u.Name, u.Email, u.IsAdmin)
				return nil
			})
		},
	}
}
