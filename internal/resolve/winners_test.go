package resolve

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/pinlore/pinlore-backend/internal/domain"
)

func sourceClaim(id uint, sourceID uint, claimKey string, createdAt time.Time) *types.Claim {
	return &types.Claim{
		ID:        id,
		SourceID:  &sourceID,
		ClaimKey:  claimKey,
		CreatedAt: createdAt,
	}
}

func TestPickWinnersPriorityThenRecency(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	prio := Priorities{Source: map[uint]int{1: 10, 2: 20, 3: 20}}

	claims := []*types.Claim{
		sourceClaim(1, 1, "year", base.Add(3*time.Hour)),
		sourceClaim(2, 2, "year", base),
		sourceClaim(3, 3, "year", base.Add(time.Hour)),
		sourceClaim(4, 1, "name", base),
	}

	winners := PickWinners(claims, prio)
	if len(winners) != 2 {
		t.Fatalf("winners = %d keys, want 2", len(winners))
	}
	// Priority 20 beats 10 even though the priority-10 claim is newest,
	// and within priority 20 the newer claim wins.
	if winners["year"].ID != 3 {
		t.Fatalf("year winner = claim %d, want 3", winners["year"].ID)
	}
	if winners["name"].ID != 4 {
		t.Fatalf("name winner = claim %d, want 4", winners["name"].ID)
	}
}

func TestPickWinnersIDBreaksExactTies(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	prio := Priorities{Source: map[uint]int{1: 10}}
	claims := []*types.Claim{
		sourceClaim(7, 1, "year", at),
		sourceClaim(9, 1, "year", at),
		sourceClaim(8, 1, "year", at),
	}
	winners := PickWinners(claims, prio)
	if winners["year"].ID != 9 {
		t.Fatalf("tie winner = claim %d, want 9", winners["year"].ID)
	}
}

func TestEffectivePriorityAuthorAndUnknown(t *testing.T) {
	author := uuid.New()
	prio := Priorities{
		Source: map[uint]int{1: 10},
		Author: map[uuid.UUID]int{author: 10000},
	}

	src := sourceClaim(1, 1, "year", time.Now())
	if got := prio.Effective(src); got != 10 {
		t.Fatalf("source priority = %d, want 10", got)
	}

	authored := &types.Claim{ID: 2, AuthorID: &author, ClaimKey: "year"}
	if got := prio.Effective(authored); got != 10000 {
		t.Fatalf("author priority = %d, want 10000", got)
	}

	unknownSource := uint(99)
	stray := &types.Claim{ID: 3, SourceID: &unknownSource, ClaimKey: "year"}
	if got := prio.Effective(stray); got != 0 {
		t.Fatalf("unknown attributor priority = %d, want 0", got)
	}
}
