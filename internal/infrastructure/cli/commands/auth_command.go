package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/budgetq/internal/app"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/auth"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
)

// NewLoginCommand authenticates against the service and stores the token.
func NewLoginCommand(container *app.Container) *cobra.Command {
	var creds domain.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the query service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gateway == nil {
				return errors.New(ErrGatewayUnavailable)
			}
			if err := completeCredentials(cmd, &creds); err != nil {
				return err
			}
			session, err := container.Gateway.Login(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			out := cmd.OutOrStdout()
			if session.Token == "" {
				helpers.PrintWarnings(cmd.ErrOrStderr(), []string{"the service returned no token; requests stay anonymous"})
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s.\n", creds.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (or set "+EnvPassword+")")
	return cmd
}

// NewRegisterCommand creates an account; it does not log in.
func NewRegisterCommand(container *app.Container) *cobra.Command {
	var creds domain.Credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the query service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gateway == nil {
				return errors.New(ErrGatewayUnavailable)
			}
			if err := completeCredentials(cmd, &creds); err != nil {
				return err
			}
			body, err := container.Gateway.Register(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			out := cmd.OutOrStdout()
			if msg, ok := body.GetString("message"); ok && msg != "" {
				fmt.Fprintln(out, msg)
			} else {
				fmt.Fprintf(out, "Registered %s.\n", creds.Username)
			}
			fmt.Fprintln(out, "Run `budgetq login` to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (or set "+EnvPassword+")")
	cmd.Flags().StringVar(&creds.Email, "email", "", "Contact email")
	return cmd
}

// NewLogoutCommand forgets the stored token and notifies the service.
func NewLogoutCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gateway == nil {
				return errors.New(ErrGatewayUnavailable)
			}
			out := cmd.OutOrStdout()
			if err := container.Gateway.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(out, MsgLoggedOut)
				return fmt.Errorf("service logout failed (local token removed): %w", err)
			}
			fmt.Fprintln(out, MsgLoggedOut)
			return nil
		},
	}
}

// NewAuthCommand groups token inspection.
func NewAuthCommand(container *app.Container) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect stored credentials",
	}
	authCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored and when it expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showAuthStatus(cmd, container, time.Now())
		},
	})
	return authCmd
}

// requireToken fails with domain.ErrNotAuthenticated when no token is stored.
func requireToken(container *app.Container) error {
	if container.Tokens == nil {
		return domain.ErrNotAuthenticated
	}
	token, err := container.Tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: run `budgetq login` first", domain.ErrNotAuthenticated)
	}
	return nil
}

func showAuthStatus(cmd *cobra.Command, container *app.Container, now time.Time) error {
	if container.Tokens == nil {
		return errors.New("token store unavailable")
	}
	token, err := container.Tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	out := cmd.OutOrStdout()
	info := auth.Inspect(token)
	if !info.Present {
		fmt.Fprintln(out, MsgNotLoggedIn)
		return nil
	}

	fmt.Fprintf(out, "Token file: %s\n", container.Tokens.Path())
	if info.Opaque {
		fmt.Fprintln(out, "Token: present (opaque)")
		return nil
	}
	if info.Subject != "" {
		fmt.Fprintf(out, "Subject: %s\n", info.Subject)
	}
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(out, "Expires: never")
	case info.Expired(now):
		fmt.Fprintf(out, "Expired: %s (%s)\n", info.ExpiresAt.Local().Format(domain.DisplayTimestampFormat), humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
	default:
		fmt.Fprintf(out, "Expires: %s (%s)\n", info.ExpiresAt.Local().Format(domain.DisplayTimestampFormat), humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
	}
	return nil
}

// completeCredentials fills missing fields from the environment or a prompt.
func completeCredentials(cmd *cobra.Command, creds *domain.Credentials) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()

	if strings.TrimSpace(creds.Username) == "" {
		creds.Username = helpers.PromptForString(out, reader, "Username", "")
	}
	if strings.TrimSpace(creds.Username) == "" {
		return errors.New(ErrUsernameRequired)
	}
	if creds.Password == "" {
		creds.Password = os.Getenv(EnvPassword)
	}
	if creds.Password == "" {
		creds.Password = helpers.PromptForString(out, reader, "Password", "")
	}
	if creds.Password == "" {
		return errors.New(ErrPasswordRequired)
	}
	return nil
}
