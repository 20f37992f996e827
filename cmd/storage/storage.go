package storage

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/session"
	"github.com/storefront/cli/internal/utils"
)

// StorageCmd represents the storage command
var StorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Local storage commands",
	Long: `Local storage commands for Storefront CLI.

Local storage keeps the session, the wishlist and the last order id
between runs. Tokens are redacted when listed.`,
}

// listCmd lists stored keys
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys and values",
	RunE:  runList,
}

// pathCmd prints the storage file path
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the local storage file path",
	RunE:  runPath,
}

// clearCmd removes keys
var clearCmd = &cobra.Command{
	Use:   "clear <key>...",
	Short: "Remove stored keys",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClear,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	values := a.Store.Snapshot()
	for _, key := range []string{session.KeyAccess, session.KeyRefresh} {
		if v, ok := values[key]; ok {
			values[key] = utils.RedactToken(v)
		}
	}
	if len(values) == 0 && !format.IsStructured() {
		fmt.Fprintln(cmd.OutOrStdout(), "Local storage is empty")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), values)
}

func runPath(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.Store.Path())
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Store.Remove(args...); err != nil {
		return fmt.Errorf("failed to clear keys: %w", err)
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Removed %d key(s)", len(args))
	return nil
}

func init() {
	// Add subcommands
	StorageCmd.AddCommand(listCmd)
	StorageCmd.AddCommand(pathCmd)
	StorageCmd.AddCommand(clearCmd)
}
