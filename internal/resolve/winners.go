package resolve

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/pinlore/pinlore-backend/internal/domain"
)

// Priorities are the effective-priority lookup tables used to rank
// claims. A claim borrows its source's priority or its author's; a
// claim whose attributor is missing from the tables ranks at 0.
type Priorities struct {
	Source map[uint]int
	Author map[uuid.UUID]int
}

func (p Priorities) Effective(c *types.Claim) int {
	if c.SourceID != nil {
		return p.Source[*c.SourceID]
	}
	if c.AuthorID != nil {
		return p.Author[*c.AuthorID]
	}
	return 0
}

// SortClaims orders claims in place for resolution and display: claim
// key ascending, then effective priority descending, then newest
// first, with the higher row id breaking exact created_at ties.
func SortClaims(claims []*types.Claim, p Priorities) {
	sort.SliceStable(claims, func(i, j int) bool {
		a, b := claims[i], claims[j]
		if a.ClaimKey != b.ClaimKey {
			return a.ClaimKey < b.ClaimKey
		}
		pa, pb := p.Effective(a), p.Effective(b)
		if pa != pb {
			return pa > pb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// PickWinners sorts claims and keeps the first per claim key.
func PickWinners(claims []*types.Claim, p Priorities) map[string]*types.Claim {
	SortClaims(claims, p)
	winners := make(map[string]*types.Claim, len(claims))
	for _, c := range claims {
		if _, ok := winners[c.ClaimKey]; !ok {
			winners[c.ClaimKey] = c
		}
	}
	return winners
}
