package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

var Version = "dev"

func main() {
	env.SetupEnvFile()

	rootCmd := &cobra.Command{
		Use:           "hubctl",
		Short:         "Operator commands for the integration hub",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(syncDirectoryCmd())
	rootCmd.AddCommand(resolveDiscrepancyCmd())
	rootCmd.AddCommand(discrepanciesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
