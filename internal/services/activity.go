package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
	"github.com/pinlore/pinlore-backend/internal/resolve"
)

// ActivityEntry is one active claim annotated for display. IsWinner marks
// the claim currently materialized for its claim key, per the same
// ordering resolution uses.
type ActivityEntry struct {
	ClaimID        uint            `json:"claim_id"`
	FieldName      string          `json:"field_name"`
	ClaimKey       string          `json:"claim_key"`
	Value          json.RawMessage `json:"value"`
	Citation       string          `json:"citation,omitempty"`
	AttributorKind string          `json:"attributor_kind"`
	AttributedTo   string          `json:"attributed_to"`
	Priority       int             `json:"priority"`
	IsWinner       bool            `json:"is_winner"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ActivityService interface {
	Feed(dbc dbctx.Context, subject types.Subject) ([]ActivityEntry, error)
}

type activityService struct {
	db         *gorm.DB
	log        *logger.Logger
	claimRepo  repos.ClaimRepo
	sourceRepo repos.SourceRepo
	userRepo   repos.UserRepo
}

func NewActivityService(
	db *gorm.DB,
	log *logger.Logger,
	claimRepo repos.ClaimRepo,
	sourceRepo repos.SourceRepo,
	userRepo repos.UserRepo,
) ActivityService {
	serviceLog := log.With("service", "ActivityService")
	return &activityService{
		db:         db,
		log:        serviceLog,
		claimRepo:  claimRepo,
		sourceRepo: sourceRepo,
		userRepo:   userRepo,
	}
}

func (s *activityService) Feed(dbc dbctx.Context, subject types.Subject) ([]ActivityEntry, error) {
	claims, err := s.claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	if len(claims) == 0 {
		return []ActivityEntry{}, nil
	}

	sourceNames, userNames, prio, err := s.attributors(dbc, claims)
	if err != nil {
		return nil, err
	}

	ranked := make([]*types.Claim, len(claims))
	copy(ranked, claims)
	resolve.SortClaims(ranked, prio)
	winners := make(map[uint]bool, len(ranked))
	seenKey := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		if !seenKey[c.ClaimKey] {
			seenKey[c.ClaimKey] = true
			winners[c.ID] = true
		}
	}

	entries := make([]ActivityEntry, 0, len(claims))
	for _, c := range claims {
		e := ActivityEntry{
			ClaimID:   c.ID,
			FieldName: c.FieldName,
			ClaimKey:  c.ClaimKey,
			Value:     json.RawMessage(c.Value),
			Citation:  c.Citation,
			Priority:  prio.Effective(c),
			IsWinner:  winners[c.ID],
			CreatedAt: c.CreatedAt,
		}
		switch {
		case c.SourceID != nil:
			e.AttributorKind = "source"
			e.AttributedTo = sourceNames[*c.SourceID]
		case c.AuthorID != nil:
			e.AttributorKind = "editor"
			e.AttributedTo = userNames[*c.AuthorID]
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ClaimID > entries[j].ClaimID
	})
	return entries, nil
}

func (s *activityService) attributors(dbc dbctx.Context, claims []*types.Claim) (map[uint]string, map[uuid.UUID]string, resolve.Priorities, error) {
	sourceIDs := make([]uint, 0, len(claims))
	authorIDs := make([]uuid.UUID, 0)
	seenSource := make(map[uint]bool)
	seenAuthor := make(map[uuid.UUID]bool)
	for _, c := range claims {
		if c.SourceID != nil && !seenSource[*c.SourceID] {
			seenSource[*c.SourceID] = true
			sourceIDs = append(sourceIDs, *c.SourceID)
		}
		if c.AuthorID != nil && !seenAuthor[*c.AuthorID] {
			seenAuthor[*c.AuthorID] = true
			authorIDs = append(authorIDs, *c.AuthorID)
		}
	}

	prio := resolve.Priorities{
		Source: make(map[uint]int, len(sourceIDs)),
		Author: make(map[uuid.UUID]int, len(authorIDs)),
	}
	sourceNames := make(map[uint]string, len(sourceIDs))
	userNames := make(map[uuid.UUID]string, len(authorIDs))

	sources, err := s.sourceRepo.GetByIDs(dbc, sourceIDs)
	if err != nil {
		return nil, nil, prio, fmt.Errorf("load sources: %w", err)
	}
	for _, src := range sources {
		sourceNames[src.ID] = src.Name
		prio.Source[src.ID] = src.Priority
	}

	users, err := s.userRepo.GetByIDs(dbc, authorIDs)
	if err != nil {
		return nil, nil, prio, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.Email
		}
		userNames[u.ID] = name
		prio.Author[u.ID] = u.Priority
	}

	return sourceNames, userNames, prio, nil
}
