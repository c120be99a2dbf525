package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/campusworks/portal/internal/portal/app"
	"github.com/campusworks/portal/pkg/cryptox"
)

var (
	superAdminHandle   string
	superAdminEmail    string
	superAdminPassword string
)

var createSuperAdminCmd = &cobra.Command{
	Use:   "create-superadmin",
	Short: "Create the super admin account",
	Long: `Creates a super admin account directly in the database. When --password is
omitted a temporary password is generated and printed once; it must be changed
on first login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if superAdminHandle == "" || superAdminEmail == "" {
			return errors.New("--handle and --email are required")
		}

		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		admins, _ := application.Services()

		password := superAdminPassword
		temp := false
		if password == "" {
			password, err = cryptox.GenerateTempPassword()
			if err != nil {
				return err
			}
			temp = true
		}

		if err := admins.CreateSuperAdmin(cmd.Context(), superAdminHandle, superAdminEmail, password, temp); err != nil {
			return err
		}

		color.Green("Super admin %q created.", superAdminHandle)
		if temp {
			color.Yellow("Temporary password (shown once): %s", password)
			color.Yellow("It must be changed on first login.")
		}
		return nil
	},
}

func init() {
	createSuperAdminCmd.Flags().StringVar(&superAdminHandle, "handle", "", "login handle for the super admin")
	createSuperAdminCmd.Flags().StringVar(&superAdminEmail, "email", "", "email address for the super admin")
	createSuperAdminCmd.Flags().StringVar(&superAdminPassword, "password", "", "password (generated when omitted)")
}
