package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/campusworks/portal/internal/portal/app"
	"github.com/campusworks/portal/internal/portal/domain"
)

var maintenanceMessage string

// cliActor stands in for a super admin when toggling from the host.
var cliActor = domain.Account{Handle: "cli", Role: domain.RoleSuperAdmin}

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Inspect or toggle maintenance mode",
}

var maintenanceOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable maintenance mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		_, maintenance := application.Services()
		st, err := maintenance.Set(cmd.Context(), cliActor, true, maintenanceMessage)
		if err != nil {
			return err
		}

		color.Yellow("Maintenance mode ENABLED.")
		if st.Announcement != "" {
			color.Yellow("Announcement: %s", st.Announcement)
		}
		return nil
	},
}

var maintenanceOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable maintenance mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		_, maintenance := application.Services()
		if _, err := maintenance.Set(cmd.Context(), cliActor, false, ""); err != nil {
			return err
		}

		color.Green("Maintenance mode disabled.")
		return nil
	},
}

var maintenanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current maintenance state",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		_, maintenance := application.Services()
		st, err := maintenance.Current(cmd.Context())
		if err != nil {
			return err
		}

		if st.Enabled {
			color.Yellow("Maintenance mode: ENABLED")
			if st.Announcement != "" {
				color.Yellow("Announcement: %s", st.Announcement)
			}
			if st.UpdatedBy != "" {
				color.Yellow("Set by %s at %s", st.UpdatedBy, st.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
			}
		} else {
			color.Green("Maintenance mode: disabled")
		}
		return nil
	},
}

func init() {
	maintenanceOnCmd.Flags().StringVar(&maintenanceMessage, "message", "", "announcement shown to blocked users")
	maintenanceCmd.AddCommand(maintenanceOnCmd)
	maintenanceCmd.AddCommand(maintenanceOffCmd)
	maintenanceCmd.AddCommand(maintenanceStatusCmd)
}
