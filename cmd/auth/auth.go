package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/login"
	"github.com/storefront/cli/internal/tui"
)

// AuthCmd represents the auth command
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Login, logout and profile commands",
	Long: `Authentication commands for Storefront CLI.

Login uses your mobile number and a one-time password. New numbers are
asked for a short signup form before the OTP is sent.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login with mobile number and OTP",
	Long: `Open the login screen. On a terminal this is an interactive screen;
otherwise answers are read line by line from stdin.`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout",
	Long:  "Forget the stored session. The wishlist is kept.",
	RunE:  runLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  "Display who is logged in, refreshing the profile from the gateway",
	RunE:  runStatus,
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	force, _ := cmd.Flags().GetBool("force")
	if a.Session.IsLoggedIn() && !force {
		format.PrintInfo(out, "Already logged in as %s", a.Session.DisplayName())
		return nil
	}

	ctrl, err := a.NewLoginController()
	if err != nil {
		return err
	}

	plain, _ := cmd.Flags().GetBool("plain")
	if !plain && isTerminal(cmd) {
		err = tui.RunLogin(cmd.Context(), ctrl)
	} else {
		err = login.NewRunner(ctrl, cmd.InOrStdin(), out).Run(cmd.Context())
	}
	if err != nil {
		if errors.Is(err, login.ErrLoginCancelled) || errors.Is(err, login.ErrFlowClosed) {
			format.PrintWarning(out, "Login cancelled")
			return nil
		}
		return fmt.Errorf("login failed: %w", err)
	}

	format.PrintSuccess(out, "✓ Logged in as %s", a.Session.DisplayName())
	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Session.Clear(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Successfully logged out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	status := map[string]interface{}{
		"status": "guest",
		"server": a.Config.Server.URL,
	}
	if a.Session.IsLoggedIn() && a.Session.SyncProfile(cmd.Context(), "") {
		status["status"] = "logged in"
		status["name"] = a.Session.DisplayName()
		status["wishlist"] = a.Wishlist.Count()
	}
	return format.Print(cmd.OutOrStdout(), status)
}

func init() {
	loginCmd.Flags().Bool("plain", false, "use line prompts even on a terminal")
	loginCmd.Flags().Bool("force", false, "login again even when a session exists")

	// Add subcommands
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(profileCmd)
}
