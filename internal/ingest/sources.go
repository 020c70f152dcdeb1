package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

// SourcesConfig is the operator-maintained source registry. Priorities
// live here, not in dumps: a dump only names its source.
type SourcesConfig struct {
	Sources []SourceSeed `yaml:"sources"`
}

type SourceSeed struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	SourceType  string `yaml:"source_type"`
	Priority    int    `yaml:"priority"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

var validSourceTypes = map[string]bool{
	types.SourceTypeDatabase:  true,
	types.SourceTypeBook:      true,
	types.SourceTypeEditorial: true,
	types.SourceTypeOther:     true,
}

// ReadSourcesConfig loads and validates a sources YAML file. An omitted
// source_type defaults to database.
func ReadSourcesConfig(path string) (*SourcesConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}
	var cfg SourcesConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("sources config is empty")
	}
	seen := map[string]bool{}
	for i := range cfg.Sources {
		seed := &cfg.Sources[i]
		if seed.Slug == "" || seed.Name == "" {
			return nil, fmt.Errorf("source %d: slug and name are required", i)
		}
		if seen[seed.Slug] {
			return nil, fmt.Errorf("source %d: duplicate slug %q", i, seed.Slug)
		}
		seen[seed.Slug] = true
		if seed.SourceType == "" {
			seed.SourceType = types.SourceTypeDatabase
		}
		if !validSourceTypes[seed.SourceType] {
			return nil, fmt.Errorf("source %q: unknown source_type %q", seed.Slug, seed.SourceType)
		}
	}
	return &cfg, nil
}

type SourceSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncSources upserts every configured source, keyed by slug. Priority
// changes apply on the next resolution pass; stored claims keep their
// attribution untouched.
func (s *service) SyncSources(dbc dbctx.Context, cfg *SourcesConfig) (*SourceSyncResult, error) {
	if cfg == nil || len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources to sync")
	}

	run, err := s.runRepo.Start(dbc, types.RunKindSources, "")
	if err != nil {
		return nil, fmt.Errorf("start ingest run: %w", err)
	}

	result := &SourceSyncResult{}
	syncErr := func() error {
		for _, seed := range cfg.Sources {
			existing, err := s.sourceRepo.GetBySlug(dbc, seed.Slug)
			if err != nil {
				return fmt.Errorf("look up source %q: %w", seed.Slug, err)
			}
			src := &types.Source{
				Slug:        seed.Slug,
				Name:        seed.Name,
				SourceType:  seed.SourceType,
				Priority:    seed.Priority,
				URL:         seed.URL,
				Description: seed.Description,
			}
			if err := s.sourceRepo.Upsert(dbc, src); err != nil {
				return fmt.Errorf("upsert source %q: %w", seed.Slug, err)
			}
			if existing == nil {
				result.Created++
				s.log.Info("source registered", "slug", seed.Slug, "priority", seed.Priority)
			} else {
				result.Updated++
				if existing.Priority != seed.Priority {
					s.log.Info("source priority changed",
						"slug", seed.Slug,
						"old", existing.Priority,
						"new", seed.Priority)
				}
			}
		}
		return nil
	}()

	stats, _ := json.Marshal(result)
	if ferr := s.runRepo.Finish(dbc, run.ID, stats, syncErr); ferr != nil {
		s.log.Warn("finish ingest run", "run_id", run.ID, "error", ferr)
	}
	if syncErr != nil {
		return nil, syncErr
	}
	return result, nil
}
