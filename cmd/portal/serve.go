package main

import (
	"github.com/spf13/cobra"

	"github.com/campusworks/portal/internal/portal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		return application.Run()
	},
}
