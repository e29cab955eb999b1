package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/notify"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Long:  "Open the identity provider's sign-in page and wait for the browser to hand the session back to the CLI.",
	Args:  cobra.NoArgs,
	RunE:  withApp(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local session",
	Args:  cobra.NoArgs,
	RunE:  withApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  withApp(runWhoami),
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if err := a.cfg.ValidateAuth(); err != nil {
		return err
	}

	user, err := a.session.SignInWithBrowser(ctx, func(url string) error {
		a.println("Opening your browser to sign in. If it does not open, visit:\n%s", url)
		if err := openBrowser(url); err != nil {
			a.log.Debug("failed to open browser", "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}

	if err := a.session.SyncUser(ctx, a.client); err != nil {
		a.log.Warn("failed to sync user", "error", err)
	}
	notify.Success(a.notifier, fmt.Sprintf("Signed in as %s", user.DisplayName()))

	next, err := a.prefs.ConsumeReturnPath(ctx, loginReturnKey, "")
	if err != nil {
		a.log.Debug("failed to read return path", "error", err)
	}
	if next != "" {
		a.println("Pick up where you left off: %s", next)
	}
	return nil
}

func runLogout(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	notify.Success(a.notifier, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if !a.session.IsAuthenticated(ctx) {
		a.println("Not signed in")
		return nil
	}
	user, err := a.session.CurrentUser(ctx)
	if err != nil {
		return err
	}
	a.println("%s <%s>", user.DisplayName(), user.Email)
	a.println("Session valid until %s", user.ExpiresAt.Local().Format("Jan 2, 2006 15:04"))
	return nil
}
