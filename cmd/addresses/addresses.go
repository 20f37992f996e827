package addresses

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

// AddressesCmd represents the addresses command
var AddressesCmd = &cobra.Command{
	Use:     "addresses",
	Aliases: []string{"address"},
	Short:   "Address book commands",
	Long: `Address book commands for Storefront CLI.

Manage the shipping addresses saved on your account. Requires login.`,
}

// listCmd lists addresses
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE:  runList,
}

// addCmd adds an address
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an address",
	Long: `Add a shipping address. Every field except landmark is required;
type is HOME, WORK or OTHER (HOME when omitted).`,
	RunE: runAdd,
}

// updateCmd updates an address
var updateCmd = &cobra.Command{
	Use:   "update <address-id>",
	Short: "Update an address",
	Long:  "Update the given fields of a saved address, keeping the rest",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

// deleteCmd deletes an address
var deleteCmd = &cobra.Command{
	Use:   "delete <address-id>",
	Short: "Delete an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func addressFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "recipient name")
	fs.String("mobile", "", "10 digit mobile number")
	fs.String("pincode", "", "6 digit pincode")
	fs.String("area", "", "locality or area")
	fs.String("address-line", "", "house and street")
	fs.String("landmark", "", "nearby landmark")
	fs.String("city", "", "city")
	fs.String("state", "", "state")
	fs.String("type", "", "HOME, WORK or OTHER")
	fs.Bool("default", false, "make this the default address")
}

// applyFlags copies the flags the user set onto a.
func applyFlags(fs *pflag.FlagSet, a *models.Address) {
	fields := map[string]*string{
		"name":         &a.Name,
		"mobile":       &a.Mobile,
		"pincode":      &a.Pincode,
		"area":         &a.Area,
		"address-line": &a.AddressLine,
		"landmark":     &a.Landmark,
		"city":         &a.City,
		"state":        &a.State,
		"type":         &a.Type,
	}
	for name, dst := range fields {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("default") {
		a.IsDefault, _ = fs.GetBool("default")
	}
}

func parseAddressID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("address", fmt.Sprintf("invalid address id %q", s))
	}
	return id, nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	list, err := a.Addresses.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 && !format.IsStructured() {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved addresses")
		return nil
	}
	return format.Print(cmd.OutOrStdout(), list)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}

	var addr models.Address
	applyFlags(cmd.Flags(), &addr)
	saved, err := a.Addresses.Add(cmd.Context(), addr)
	if err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Address %d added", saved.ID)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseAddressID(args[0])
	if err != nil {
		return err
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	current, err := a.Addresses.Find(cmd.Context(), id)
	if err != nil {
		return err
	}
	addr := *current
	applyFlags(cmd.Flags(), &addr)
	if _, err := a.Addresses.Update(cmd.Context(), id, addr); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Address %d updated", id)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseAddressID(args[0])
	if err != nil {
		return err
	}
	a, err := app.Get()
	if err != nil {
		return err
	}

	if err := a.Addresses.Delete(cmd.Context(), id); err != nil {
		return err
	}
	format.PrintSuccess(cmd.OutOrStdout(), "✓ Address %d deleted", id)
	return nil
}

func init() {
	addressFlags(addCmd.Flags())
	addressFlags(updateCmd.Flags())

	// Add subcommands
	AddressesCmd.AddCommand(listCmd)
	AddressesCmd.AddCommand(addCmd)
	AddressesCmd.AddCommand(updateCmd)
	AddressesCmd.AddCommand(deleteCmd)
}
