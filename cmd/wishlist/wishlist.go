package wishlist

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/models"
)

// WishlistCmd represents the wishlist command
var WishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Wishlist commands",
	Long: `Wishlist commands for Storefront CLI.

The wishlist is kept in local storage and works without login.`,
}

// listCmd lists the wishlist
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List wishlisted products",
	RunE:  runList,
}

// addCmd wishlists a product
var addCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the wishlist",
	Long:  "Look the product up and save it to the wishlist. Adding it again replaces the entry.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

// removeCmd removes a product
var removeCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

// moveCmd moves an entry into the bag
var moveCmd = &cobra.Command{
	Use:   "move-to-bag <product-id>",
	Short: "Move a wishlisted product to the bag",
	Long: `Add one unit of a wishlisted product to the bag and drop it from the
wishlist. The size saved with the entry is used; --size is needed only when
none was saved. Requires login.`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

// countCmd prints the number of entries
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of wishlisted products",
	RunE:  runCount,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	list := a.Wishlist.List()
	if len(list) == 0 && !format.IsStructured() {
		fmt.Fprintln(cmd.OutOrStdout(), "Your wishlist is empty")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), list)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	qv, err := a.Catalog.QuickView(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	size, _ := cmd.Flags().GetString("size")
	entry := models.WishlistEntry{
		ID:    qv.ID,
		Name:  qv.Name,
		Brand: qv.Brand,
		Price: fmt.Sprintf("%.2f", float64(qv.FinalPrice())),
		Image: qv.PrimaryImage(),
		Size:  size,
	}
	if err := a.Wishlist.Upsert(entry); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ %s added to wishlist", entry.Name)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Wishlist.Remove(args[0]); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Removed from wishlist")
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	size, _ := cmd.Flags().GetString("size")
	entry, err := a.Cart.MoveFromWishlist(cmd.Context(), args[0], size)
	if err != nil {
		if entry != nil {
			format.PrintWarning(cmd.OutOrStdout(), "%s", err.Error())
			return nil
		}
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Added to bag (%s)", entry.Size)
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}
	return format.Print(cmd.OutOrStdout(), map[string]interface{}{"count": a.Wishlist.Count()})
}

func init() {
	addCmd.Flags().String("size", "", "size to remember with the entry")
	moveCmd.Flags().String("size", "", "size to add when the entry has none")

	// Add subcommands
	WishlistCmd.AddCommand(listCmd)
	WishlistCmd.AddCommand(addCmd)
	WishlistCmd.AddCommand(removeCmd)
	WishlistCmd.AddCommand(moveCmd)
	WishlistCmd.AddCommand(countCmd)
}
