package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/cli/internal/app"
	"github.com/storefront/cli/internal/format"
	"github.com/storefront/cli/internal/login"
	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Long:  "Display the profile stored by the gateway for the logged in user",
	RunE:  runProfileShow,
}

// profileUpdateCmd updates the profile
var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Long:  "Update name, email, gender or invite code",
	RunE:  runProfileUpdate,
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}
	if !a.Session.IsLoggedIn() {
		return utils.ErrLoginRequired
	}

	profile, err := a.Client.Profile(cmd.Context(), a.Session.AccessToken())
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	return format.Print(cmd.OutOrStdout(), profile)
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	a, err := app.Get()
	if err != nil {
		return err
	}
	if !a.Session.IsLoggedIn() {
		return utils.ErrLoginRequired
	}
	token := a.Session.AccessToken()

	current, err := a.Client.Profile(cmd.Context(), token)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	update := models.SignupProfile{
		FirstName: current.FirstName,
		Email:     current.Email,
		Gender:    current.Gender,
	}
	if cmd.Flags().Changed("name") {
		update.FirstName, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("email") {
		update.Email, _ = cmd.Flags().GetString("email")
		if err := utils.ValidateEmail(update.Email); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("gender") {
		g, _ := cmd.Flags().GetString("gender")
		if update.Gender = login.NormalizeGender(g); update.Gender == "" {
			return utils.NewValidationError("gender", "gender must be F or M")
		}
	}
	update.InviteCode, _ = cmd.Flags().GetString("invite-code")

	if err := a.Client.UpdateProfile(cmd.Context(), token, update); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	a.Session.SyncProfile(cmd.Context(), token)

	format.PrintSuccess(cmd.OutOrStdout(), "✓ Profile updated")
	return nil
}

func init() {
	profileUpdateCmd.Flags().String("name", "", "first name")
	profileUpdateCmd.Flags().String("email", "", "email address")
	profileUpdateCmd.Flags().String("gender", "", "gender (F or M)")
	profileUpdateCmd.Flags().String("invite-code", "", "invite code")

	profileCmd.AddCommand(profileUpdateCmd)
}
