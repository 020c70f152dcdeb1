package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, priority int) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: "Editor",
		Priority:    priority,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSource(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, priority int) *types.Source {
	tb.Helper()
	s := &types.Source{
		Name:       slug,
		Slug:       slug,
		SourceType: types.SourceTypeDatabase,
		Priority:   priority,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed source: %v", err)
	}
	return s
}

func SeedMachine(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Machine {
	tb.Helper()
	m := &types.Machine{
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed machine: %v", err)
	}
	return m
}

func SeedManufacturer(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Manufacturer {
	tb.Helper()
	m := &types.Manufacturer{
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed manufacturer: %v", err)
	}
	return m
}

func SeedManufacturerEntity(tb testing.TB, ctx context.Context, tx *gorm.DB, manufacturerID uint, name string, ipdbID *int64) *types.ManufacturerEntity {
	tb.Helper()
	e := &types.ManufacturerEntity{
		ManufacturerID:     manufacturerID,
		Name:               name,
		IPDBManufacturerID: ipdbID,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed manufacturer entity: %v", err)
	}
	return e
}

func SeedMachineGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, opdbGroupID, name, slug string) *types.MachineGroup {
	tb.Helper()
	g := &types.MachineGroup{
		OPDBGroupID: opdbGroupID,
		Name:        name,
		Slug:        slug,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed machine group: %v", err)
	}
	return g
}

func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Person {
	tb.Helper()
	p := &types.Person{
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

func SeedTheme(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Theme {
	tb.Helper()
	th := &types.Theme{
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(th).Error; err != nil {
		tb.Fatalf("seed theme: %v", err)
	}
	return th
}

func SeedAward(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Award {
	tb.Helper()
	a := &types.Award{
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed award: %v", err)
	}
	return a
}

// SeedSourceClaim inserts an active claim attributed to a source. Value
// must be valid JSON.
func SeedSourceClaim(tb testing.TB, ctx context.Context, tx *gorm.DB, sourceID uint, subject types.Subject, fieldName, claimKey, value string) *types.Claim {
	tb.Helper()
	c := &types.Claim{
		SubjectKind: subject.Kind,
		SubjectID:   subject.ID,
		SourceID:    &sourceID,
		FieldName:   fieldName,
		ClaimKey:    claimKey,
		Value:       datatypes.JSON([]byte(value)),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed source claim: %v", err)
	}
	return c
}

// SeedAuthorClaim inserts an active claim attributed to an editor.
func SeedAuthorClaim(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, subject types.Subject, fieldName, claimKey, value string) *types.Claim {
	tb.Helper()
	c := &types.Claim{
		SubjectKind: subject.Kind,
		SubjectID:   subject.ID,
		AuthorID:    &authorID,
		FieldName:   fieldName,
		ClaimKey:    claimKey,
		Value:       datatypes.JSON([]byte(value)),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed author claim: %v", err)
	}
	return c
}

func PtrInt(v int) *int { return &v }

func PtrInt64(v int64) *int64 { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
