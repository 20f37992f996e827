package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/cmd/addresses"
	"github.com/storefront/cli/cmd/auth"
	"github.com/storefront/cli/cmd/cart"
	"github.com/storefront/cli/cmd/checkout"
	"github.com/storefront/cli/cmd/config"
	"github.com/storefront/cli/cmd/products"
	"github.com/storefront/cli/cmd/storage"
	"github.com/storefront/cli/cmd/wishlist"
	"github.com/storefront/cli/internal/app"
	appConfig "github.com/storefront/cli/internal/config"
	"github.com/storefront/cli/internal/logging"
)

var (
	cfgFile string
	debug   bool
	output  string
	server  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront CLI - shop the storefront from your terminal",
	Long: `Storefront CLI talks to the storefront REST gateway.

Log in with your mobile number and an OTP, browse products, manage your
bag, wishlist and addresses, and place orders.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize configuration
		if err := appConfig.Initialize(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}

		appConfig.SetDebug(debug)
		if output != "" {
			appConfig.SetOutputFormat(output)
		}
		if server != "" {
			appConfig.SetServerURL(server)
		}

		logger, err := logging.New(appConfig.IsDebug())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		a, err := app.New(appConfig.Get(), logger)
		if err != nil {
			return err
		}
		app.Set(a)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a, err := app.Get(); err == nil {
			a.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storefront.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format (table, json, json-compact, yaml, text)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "gateway URL for this run")

	// Add subcommands
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(products.ProductsCmd)
	rootCmd.AddCommand(cart.CartCmd)
	rootCmd.AddCommand(wishlist.WishlistCmd)
	rootCmd.AddCommand(addresses.AddressesCmd)
	rootCmd.AddCommand(checkout.CheckoutCmd)
	rootCmd.AddCommand(config.ConfigCmd)
	rootCmd.AddCommand(storage.StorageCmd)
}
