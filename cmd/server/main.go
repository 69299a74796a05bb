package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "freight-backend",
	Short: "Freight invoicing API",
	Long: `freight-backend serves the freight invoicing HTTP API: accounts, invoices
with export and printing, and the customer, vehicle, location and app user registries.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
