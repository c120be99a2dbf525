package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Campus admin portal authentication service",
	Long: `The campus portal serves authentication and session arbitration for the
college admin portal. Each admin account holds at most one active session;
logins complete with an emailed one-time code.

Configuration comes from PORTAL_* environment variables.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createSuperAdminCmd)
	rootCmd.AddCommand(maintenanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
