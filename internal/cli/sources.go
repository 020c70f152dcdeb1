package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinlore/pinlore-backend/internal/app"
	"github.com/pinlore/pinlore-backend/internal/ingest"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

var sourcesFile string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage registered claim sources",
}

var sourcesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upsert source registrations from a YAML config",
	Long: `Reads a YAML file of source definitions (slug, name, source_type,
priority, url, description) and upserts them. Priority changes take
effect on the next resolution pass; stored claims are untouched.`,
	RunE: runSourcesSync,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesSyncCmd)

	sourcesSyncCmd.Flags().StringVar(&sourcesFile, "file", "sources.yaml", "source config YAML path")
}

func runSourcesSync(cmd *cobra.Command, args []string) error {
	cfg, err := ingest.ReadSourcesConfig(sourcesFile)
	if err != nil {
		return err
	}

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.Ingest.SyncSources(dbctx.Background(), cfg)
	if err != nil {
		return err
	}
	fmt.Printf("sources synced: %d created, %d updated\n", result.Created, result.Updated)
	return nil
}
