package products

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
)

// ProductsCmd represents the products command
var ProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse products",
	Long: `Product commands for Storefront CLI.

List and search the catalogue, open a product's quick view and add a size
to your bag.`,
}

// listCmd lists products
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long:  "List products, optionally filtered by a search term",
	RunE:  runList,
}

// viewCmd shows the quick view
var viewCmd = &cobra.Command{
	Use:   "view <product-id>",
	Short: "Show a product's quick view",
	Long:  "Show price, colours, sizes and images of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

// addToCartCmd adds a size to the bag
var addToCartCmd = &cobra.Command{
	Use:   "add-to-cart <product-id>",
	Short: "Add a product to the bag",
	Long:  "Add one unit of an in-stock size to your bag. Requires login.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddToCart,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	products, err := a.Catalog.List(cmd.Context(), search)
	if err != nil {
		return err
	}
	if len(products) == 0 && !format.IsStructured() {
		fmt.Fprintln(cmd.OutOrStdout(), "No products found")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), products)
}

func runView(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	qv, err := a.Catalog.QuickView(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return format.Print(cmd.OutOrStdout(), *qv)
}

func runAddToCart(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	size, _ := cmd.Flags().GetString("size")
	if err := a.Catalog.AddToCart(cmd.Context(), args[0], size); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Added to bag")
	return nil
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "search term")
	addToCartCmd.Flags().String("size", "", "size to add")

	// Add subcommands
	ProductsCmd.AddCommand(listCmd)
	ProductsCmd.AddCommand(viewCmd)
	ProductsCmd.AddCommand(addToCartCmd)
}
