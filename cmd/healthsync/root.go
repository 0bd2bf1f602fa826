package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "healthsync",
		Short: "HealthSync 2040 site backend",
		Long: `HealthSync serves the form validation, notifications, simulated
patient dashboard and blog actions behind the HealthSync 2040 pages.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newReportCmd(), newCheckCmd())
	return root
}
