package cli

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/client"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				p, err := a.prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				req.Password = p
			}
			s, err := a.api.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>\n", s.User.Name, s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				e, err := a.prompt(cmd, "Email: ")
				if err != nil {
					return err
				}
				email = e
			}
			if password == "" {
				p, err := a.prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			s, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", s.User.Name, s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guard.Protect(func(client.Session) error {
				u, err := a.api.Profile(cmd.Context())
				if err != nil {
					return fmt.Errorf("profile: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:    %s\n", u.ID)
				fmt.Fprintf(out, "Name:  %s\n", u.Name)
				fmt.Fprintf(out, "Email: %s\n", u.Email)
				if u.Phone != "" {
					fmt.Fprintf(out, "Phone: %s\n", u.Phone)
				}
				fmt.Fprintf(out, "Admin: %t\n", u.IsAdmin)
				return nil
			})
		},
	}
}

func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := a.stdin.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	if line == "" {
		return "", errors.New("input cannot be empty")
	}
	return line, nil
}
