// Package cli implements the curate command tree. Every subcommand builds
// the same app container the API server runs on, so pipeline runs and
// served reads share one configuration.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "curate",
	Short: "PinLore catalog curation pipeline",
	Long: `curate drives the PinLore ingestion and resolution pipeline:
sync source registrations, ingest claim dumps from scraper output,
seed type profiles, and re-resolve materialized records from the
claim ledger.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
