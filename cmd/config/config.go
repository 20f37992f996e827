package config

import (
	"fmt"

	"github.com/spf13/cobra"

	appConfig "github.com/storefront/cli/internal/config"
	"github.com/storefront/cli/internal/format"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "CLI configuration commands",
	Long: `CLI configuration commands for Storefront CLI.

This command group shows the current configuration, sets single values
and prints where the configuration file lives.`,
}

// showCmd prints the configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runShow,
}

// setCmd sets a value
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a single configuration value by its dotted key and save the file.

Examples:
  storefront config set server.url https://shop.example.com
  storefront config set login.resend_seconds 45
  storefront config set login.existence_check_unavailable fail`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

// pathCmd prints the config file path
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runPath,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Get()
	if format.IsStructured() {
		return format.Print(cmd.OutOrStdout(), cfg)
	}

	return format.Print(cmd.OutOrStdout(), map[string]interface{}{
		"server.url":                        cfg.Server.URL,
		"server.timeout":                    cfg.Server.Timeout,
		"storage.path":                      cfg.Storage.Path,
		"login.resend_seconds":              cfg.Login.ResendSeconds,
		"login.otp_length":                  cfg.Login.OTPLength,
		"login.existence_check_unavailable": cfg.Login.ExistenceCheckUnavailable,
		"format.default":                    cfg.Format.Default,
		"format.colors":                     cfg.Format.Colors,
		"checkout.convenience_fee":          cfg.Checkout.ConvenienceFee,
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := appConfig.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ %s set to %s", key, value)
	return nil
}

func runPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), appConfig.Path())
	return nil
}

func init() {
	// Add subcommands
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(setCmd)
	ConfigCmd.AddCommand(pathCmd)
}
