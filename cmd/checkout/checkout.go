package checkout

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	checkoutsvc "github.com/storefront/cli/internal/checkout"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/utils"
)

// CheckoutCmd represents the checkout command
var CheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Shipping and order commands",
	Long: `Checkout commands for Storefront CLI.

Review the shipping summary and place an order to one of your saved
addresses. Requires login.`,
}

// summaryCmd shows the shipping page
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show addresses and order totals",
	RunE:  runSummary,
}

// placeCmd places an order
var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Place an order",
	Long: `Place an order for the bag. Without --address the default address is
used, or the first saved one.`,
	RunE: runPlace,
}

// lastCmd shows the last order id
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the id of the last placed order",
	RunE:  runLast,
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	summary, err := a.Checkout.ShippingSummary(cmd.Context())
	if err != nil {
		return err
	}
	if format.IsStructured() {
		return format.Print(cmd.OutOrStdout(), summary)
	}

	out := cmd.OutOrStdout()
	if len(summary.Addresses) == 0 {
		format.PrintWarning(out, "No saved addresses. Add one with 'storefront addresses add'.")
	} else {
		fmt.Fprintln(out, "Addresses:")
		if err := format.Print(out, summary.Addresses); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "Bag:")
	return format.Print(out, summary.Cart)
}

func runPlace(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	addressID, _ := cmd.Flags().GetInt64("address")
	if addressID == 0 {
		addresses, err := a.Addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		if def, ok := checkoutsvc.DefaultAddress(addresses); ok {
			addressID = def.ID
		}
	}

	order, err := a.Checkout.PlaceOrder(cmd.Context(), addressID)
	if err != nil {
		if utils.IsGatewayError(err) && !utils.IsAuthError(err) {
			return fmt.Errorf("order failed: %w", err)
		}
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Order %s placed", order.OrderID)
	return nil
}

func runLast(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	id, ok := a.Checkout.LastOrderID()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No orders placed yet")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), map[string]interface{}{"order_id": id})
}

func init() {
	placeCmd.Flags().Int64("address", 0, "address id to ship to")

	// Add subcommands
	CheckoutCmd.AddCommand(summaryCmd)
	CheckoutCmd.AddCommand(placeCmd)
	CheckoutCmd.AddCommand(lastCmd)
}
