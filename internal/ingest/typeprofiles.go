package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

// TypeProfileSeed is the editorial seed file for the browse surface:
// one titled profile per machine type and display type enum value.
type TypeProfileSeed struct {
	MachineTypes []TypeProfileEntry `json:"machine_types"`
	DisplayTypes []TypeProfileEntry `json:"display_types"`
}

type TypeProfileEntry struct {
	MachineType  string `json:"machine_type,omitempty"`
	DisplayType  string `json:"display_type,omitempty"`
	Slug         string `json:"slug,omitempty"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"display_order"`
	Description  string `json:"description,omitempty"`
}

// ReadTypeProfileSeed loads and validates a profile seed file. Every
// entry must name a canonical enum value; slugs default to the enum
// value itself.
func ReadTypeProfileSeed(path string) (*TypeProfileSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read type profiles: %w", err)
	}
	var seed TypeProfileSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse type profiles: %w", err)
	}
	if len(seed.MachineTypes) == 0 && len(seed.DisplayTypes) == 0 {
		return nil, fmt.Errorf("type profile seed is empty")
	}
	for i := range seed.MachineTypes {
		entry := &seed.MachineTypes[i]
		if !canonicalMachineTypes[entry.MachineType] {
			return nil, fmt.Errorf("machine type profile %d: unknown machine_type %q", i, entry.MachineType)
		}
		if entry.Title == "" {
			return nil, fmt.Errorf("machine type profile %q: title is required", entry.MachineType)
		}
		if entry.Slug == "" {
			entry.Slug = entry.MachineType
		}
		entry.Slug = catalog.Slugify(entry.Slug)
	}
	for i := range seed.DisplayTypes {
		entry := &seed.DisplayTypes[i]
		if !canonicalDisplayTypes[entry.DisplayType] {
			return nil, fmt.Errorf("display type profile %d: unknown display_type %q", i, entry.DisplayType)
		}
		if entry.Title == "" {
			return nil, fmt.Errorf("display type profile %q: title is required", entry.DisplayType)
		}
		if entry.Slug == "" {
			entry.Slug = entry.DisplayType
		}
		entry.Slug = catalog.Slugify(entry.Slug)
	}
	return &seed, nil
}

type TypeProfileResult struct {
	MachineTypes int `json:"machine_types"`
	DisplayTypes int `json:"display_types"`
}

// IngestTypeProfiles upserts the seed's profiles, keyed by enum value.
func (s *service) IngestTypeProfiles(dbc dbctx.Context, seed *TypeProfileSeed) (*TypeProfileResult, error) {
	if seed == nil || (len(seed.MachineTypes) == 0 && len(seed.DisplayTypes) == 0) {
		return nil, fmt.Errorf("no type profiles to ingest")
	}

	result := &TypeProfileResult{}
	for _, entry := range seed.MachineTypes {
		p := &types.MachineTypeProfile{
			MachineType:  entry.MachineType,
			Slug:         entry.Slug,
			Title:        entry.Title,
			DisplayOrder: entry.DisplayOrder,
			Description:  entry.Description,
		}
		if err := s.typeProfileRepo.UpsertMachineTypeProfile(dbc, p); err != nil {
			return nil, fmt.Errorf("upsert machine type %q: %w", entry.MachineType, err)
		}
		result.MachineTypes++
	}
	for _, entry := range seed.DisplayTypes {
		p := &types.DisplayTypeProfile{
			DisplayType:  entry.DisplayType,
			Slug:         entry.Slug,
			Title:        entry.Title,
			DisplayOrder: entry.DisplayOrder,
			Description:  entry.Description,
		}
		if err := s.typeProfileRepo.UpsertDisplayTypeProfile(dbc, p); err != nil {
			return nil, fmt.Errorf("upsert display type %q: %w", entry.DisplayType, err)
		}
		result.DisplayTypes++
	}

	s.log.Info("type profiles ingested",
		"machine_types", result.MachineTypes,
		"display_types", result.DisplayTypes)
	return result, nil
}
