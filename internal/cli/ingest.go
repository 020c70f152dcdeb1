package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinlore/pinlore-backend/internal/app"
	"github.com/pinlore/pinlore-backend/internal/ingest"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

var (
	claimsFile   string
	claimsDryRun bool
	profilesFile string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest scraper dumps into the claim ledger",
}

var ingestClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Ingest a claim dump for one source",
	Long: `Reads a JSON claim dump, ensures the entities it names, and asserts
its claims through the bulk path with the dump's sweep settings.
Resolution is not triggered; run "curate resolve" afterwards.

With --dry-run the dump is validated and counted but nothing is
written, and no run is recorded.`,
	RunE: runIngestClaims,
}

var ingestTypeProfilesCmd = &cobra.Command{
	Use:   "type-profiles",
	Short: "Upsert machine and display type profiles from a JSON seed",
	RunE:  runIngestTypeProfiles,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestClaimsCmd)
	ingestCmd.AddCommand(ingestTypeProfilesCmd)

	ingestClaimsCmd.Flags().StringVar(&claimsFile, "file", "", "claim dump JSON path (required)")
	ingestClaimsCmd.Flags().BoolVar(&claimsDryRun, "dry-run", false, "validate and count without writing")
	_ = ingestClaimsCmd.MarkFlagRequired("file")

	ingestTypeProfilesCmd.Flags().StringVar(&profilesFile, "file", "", "type profile seed JSON path (required)")
	_ = ingestTypeProfilesCmd.MarkFlagRequired("file")
}

func runIngestClaims(cmd *cobra.Command, args []string) error {
	dump, err := ingest.ReadDump(claimsFile)
	if err != nil {
		return err
	}

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.Ingest.IngestClaims(dbctx.Background(), dump, ingest.IngestOptions{DryRun: claimsDryRun})
	if err != nil {
		return err
	}

	mode := "ingested"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Printf("%s %q: %d entities declared, %d candidates (%d empty skipped)\n",
		mode, result.Source, result.EntitiesDeclared, result.Candidates, result.SkippedEmpty)
	fmt.Printf("claims: %d created, %d superseded, %d unchanged, %d swept, %d duplicates removed\n",
		result.Bulk.Created, result.Bulk.Superseded, result.Bulk.Unchanged, result.Bulk.Swept, result.Bulk.DuplicatesRemoved)
	for kind, n := range result.EntitiesCreated {
		fmt.Printf("created %d new %s\n", n, kind)
	}
	return nil
}

func runIngestTypeProfiles(cmd *cobra.Command, args []string) error {
	seed, err := ingest.ReadTypeProfileSeed(profilesFile)
	if err != nil {
		return err
	}

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.Ingest.IngestTypeProfiles(dbctx.Background(), seed)
	if err != nil {
		return err
	}
	fmt.Printf("type profiles upserted: %d machine types, %d display types\n",
		result.MachineTypes, result.DisplayTypes)
	return nil
}
