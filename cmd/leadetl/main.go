// Command leadetl cleans Water Quality Portal lead samples into a geolocated
// dataset of the contiguous United States.
//
// Usage:
//
//	leadetl run                       # clean and export once
//	leadetl serve                     # clean, export, then serve the dataset over HTTP
//	leadetl validate --expect counts.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadetl",
		Short: "Lead sample cleaning pipeline",
		Long: `leadetl loads WQP lead samples, monitoring sites, state boundaries and
state population estimates, then writes a cleaned, deduplicated dataset of
lead concentrations (ug/l) located within the contiguous United States.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(runCmd(), serveCmd(), validateCmd())
	return cmd
}
