package cart

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/utils"
)

// CartCmd represents the cart command
var CartCmd = &cobra.Command{
	Use:     "cart",
	Aliases: []string{"bag"},
	Short:   "Bag commands",
	Long: `Bag commands for Storefront CLI.

Show the bag with its totals, change quantities and sizes, or move lines
to the wishlist. All bag commands require login.`,
}

// showCmd shows the bag
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the bag",
	Long:  "Show bag lines with bag total, convenience fee and order total",
	RunE:  runShow,
}

// addCmd adds a product size
var addCmd = &cobra.Command{
	Use:   "add <product-id> <size>",
	Short: "Add a product size to the bag",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

// removeCmd removes a line
var removeCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a bag line",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

// qtyCmd changes a line's quantity
var qtyCmd = &cobra.Command{
	Use:   "qty <item-id> <delta>",
	Short: "Change a line's quantity",
	Long: `Change a line's quantity by delta, for example +1 or -1.
Reaching zero removes the line.`,
	Args: cobra.ExactArgs(2),
	RunE: runQty,
}

// sizeCmd changes a line's size
var sizeCmd = &cobra.Command{
	Use:   "size <item-id> <size>",
	Short: "Change a line's size",
	Args:  cobra.ExactArgs(2),
	RunE:  runSize,
}

// moveCmd moves a line to the wishlist
var moveCmd = &cobra.Command{
	Use:   "move-to-wishlist <item-id>",
	Short: "Move a bag line to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runMove,
}

// countCmd prints the number of units
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of units in the bag",
	RunE:  runCount,
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("item", fmt.Sprintf("invalid item id %q", s))
	}
	return id, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	summary, err := a.Cart.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(summary.Items) == 0 && !format.IsStructured() {
		fmt.Fprintln(cmd.OutOrStdout(), "Your bag is empty")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), *summary)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	qty, _ := cmd.Flags().GetInt("quantity")
	if err := a.Cart.Upsert(cmd.Context(), args[0], args[1], qty); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Added %s (%s) to bag", args[0], args[1])
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Cart.Remove(cmd.Context(), id); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Item %d removed", id)
	return nil
}

func runQty(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return utils.NewValidationError("delta", fmt.Sprintf("invalid quantity change %q", args[1]))
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	qty, err := a.Cart.ChangeQuantity(cmd.Context(), id, delta)
	if err != nil {
		return err
	}
	if qty == 0 {
		format.PrintSuccess(cmd.OutOrStdout(), "✓ Item %d removed", id)
		return nil
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Item %d quantity is now %d", id, qty)
	return nil
}

func runSize(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Cart.ChangeSize(cmd.Context(), id, args[1]); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Item %d size changed to %s", id, args[1])
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	entry, err := a.Cart.MoveToWishlist(cmd.Context(), id)
	if err != nil {
		if entry != nil {
			format.PrintWarning(cmd.OutOrStdout(), "%s", err.Error())
			return nil
		}
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ %s moved to wishlist", entry.Name)
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	n, err := a.Cart.Count(cmd.Context())
	if err != nil {
		return err
	}
	return format.Print(cmd.OutOrStdout(), map[string]interface{}{"count": n})
}

func init() {
	addCmd.Flags().IntP("quantity", "q", 1, "number of units")

	// Add subcommands
	CartCmd.AddCommand(showCmd)
	CartCmd.AddCommand(addCmd)
	CartCmd.AddCommand(removeCmd)
	CartCmd.AddCommand(qtyCmd)
	CartCmd.AddCommand(sizeCmd)
	CartCmd.AddCommand(moveCmd)
	CartCmd.AddCommand(countCmd)
}
