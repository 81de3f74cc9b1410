package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JFR35/pdaw-client/internal/app"
	"github.com/JFR35/pdaw-client/internal/config"
)

var client *app.App

func main() {
	root := &cobra.Command{
		Use:           "pdawctl",
		Short:         "Command-line client for the PDAW clinical-records service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
				cfg.API.BaseURL = baseURL
			}
			client, err = app.New(cfg)
			return err
		},
	}
	root.PersistentFlags().String("base-url", "", "override the API base URL")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newPatientsCmd(),
		newPractitionersCmd(),
		newVisitsCmd(),
		newUsersCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
