package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinlore/pinlore-backend/internal/app"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/invalidation"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

var (
	resolveKind string
	resolveSlug string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Re-resolve materialized records from active claims",
	Long: `Replays active claims into materialized columns and relationship
rows. With no flags every entity of every kind is resolved; --kind
narrows to one kind and --slug (with --kind) to one entity.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveKind, "kind", "", "entity kind (machine, manufacturer, person, award)")
	resolveCmd.Flags().StringVar(&resolveSlug, "slug", "", "entity slug (requires --kind)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if resolveSlug != "" && resolveKind == "" {
		return fmt.Errorf("--slug requires --kind")
	}

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	dbc := dbctx.Background()

	scope := "all"
	if resolveKind != "" {
		scope = resolveKind
		if resolveSlug != "" {
			scope = resolveKind + "/" + resolveSlug
		}
	}
	run, err := a.Repos.IngestRun.Start(dbc, types.RunKindResolve, scope)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	changed, resolveErr := resolveScope(ctx, a)

	var stats []byte
	if resolveErr == nil {
		stats, _ = json.Marshal(map[string]interface{}{
			"scope":   scope,
			"changed": changed,
		})
	}
	if err := a.Repos.IngestRun.Finish(dbc, run.ID, stats, resolveErr); err != nil {
		a.Log.Warn("Failed to finish resolve run", "run_id", run.ID.String(), "error", err)
	}
	if resolveErr != nil {
		return resolveErr
	}

	if changed > 0 {
		ev := invalidation.Event{Kind: resolveKind, Slug: resolveSlug, Changed: changed}
		if ev.Kind == "" {
			ev.Kind = "*"
		}
		if err := a.Services.Publisher.Publish(ctx, ev); err != nil {
			a.Log.Warn("Invalidation publish failed", "error", err)
		}
	}

	fmt.Printf("resolved %s: %d entities written\n", scope, changed)
	return nil
}

func resolveScope(ctx context.Context, a *app.App) (int, error) {
	if resolveKind == "" {
		return a.Services.Resolve.ResolveAll(ctx)
	}
	kind, err := types.ParseKind(resolveKind)
	if err != nil {
		return 0, err
	}
	if resolveSlug == "" {
		return a.Services.Resolve.ResolveKind(ctx, kind)
	}
	subject, err := a.Services.Catalog.SubjectBySlug(dbctx.Background(), kind, resolveSlug)
	if err != nil {
		return 0, err
	}
	if err := a.Services.Resolve.ResolveEntity(ctx, subject); err != nil {
		return 0, err
	}
	return 1, nil
}
