package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/invalidation"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/ctxutil"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
	"github.com/pinlore/pinlore-backend/internal/resolve"
)

// CurationService lets an authenticated editor assert claims over an
// entity's editable fields. Edits never write catalog columns directly;
// they land in the ledger and the entity is re-resolved, so a later
// higher-priority assertion replays over them the same as any other claim.
type CurationService interface {
	EditClaims(dbc dbctx.Context, in EditClaimsInput) (*EditResult, error)
}

type EditClaimsInput struct {
	Kind     string
	Slug     string
	Claims   map[string]json.RawMessage
	Citation string
}

// EditResult is the fresh state after re-resolution: the materialized
// record and the activity feed including the new claims.
type EditResult struct {
	Entity   interface{}     `json:"entity"`
	Activity []ActivityEntry `json:"activity"`
}

type curationService struct {
	db             *gorm.DB
	log            *logger.Logger
	ledgerService  ledger.Service
	resolveService resolve.Service
	catalogService CatalogService
	activity       ActivityService
	publisher      invalidation.Publisher
}

func NewCurationService(
	db *gorm.DB,
	log *logger.Logger,
	ledgerService ledger.Service,
	resolveService resolve.Service,
	catalogService CatalogService,
	activityService ActivityService,
	publisher invalidation.Publisher,
) CurationService {
	serviceLog := log.With("service", "CurationService")
	return &curationService{
		db:             db,
		log:            serviceLog,
		ledgerService:  ledgerService,
		resolveService: resolveService,
		catalogService: catalogService,
		activity:       activityService,
		publisher:      publisher,
	}
}

func (s *curationService) EditClaims(dbc dbctx.Context, in EditClaimsInput) (*EditResult, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated editor"))
	}

	kind, err := types.ParseKind(in.Kind)
	if err != nil {
		return nil, apierr.BadRequest("unknown_kind", err)
	}
	d, ok := catalog.DescriptorFor(kind)
	if !ok {
		return nil, apierr.BadRequest("unknown_kind", fmt.Errorf("no descriptor for kind %q", kind))
	}
	if len(in.Claims) == 0 {
		return nil, apierr.BadRequest("no_fields", fmt.Errorf("no claim fields provided"))
	}

	// Reject the whole edit before any write if a single field falls
	// outside the editable whitelist.
	fields := make([]string, 0, len(in.Claims))
	var unknown []string
	for name := range in.Claims {
		if !d.IsEditable(name) {
			unknown = append(unknown, name)
			continue
		}
		fields = append(fields, name)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apierr.Unprocessable("uneditable_fields",
			fmt.Errorf("fields not editable for %s: %s", kind, strings.Join(unknown, ", ")))
	}
	sort.Strings(fields)

	values := make(map[string]ledger.Value, len(fields))
	for _, name := range fields {
		v, err := ledger.FromJSON(in.Claims[name])
		if err != nil {
			return nil, apierr.BadRequest("invalid_value", fmt.Errorf("field %q: %w", name, err))
		}
		values[name] = v
	}

	subject, err := s.catalogService.SubjectBySlug(dbc, kind, in.Slug)
	if err != nil {
		return nil, err
	}

	assert := func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		for _, name := range fields {
			_, err := s.ledgerService.Assert(txc, ledger.AssertInput{
				Subject:   subject,
				FieldName: name,
				Value:     values[name],
				Citation:  strings.TrimSpace(in.Citation),
				AuthorID:  &rd.UserID,
			})
			if err != nil {
				return fmt.Errorf("assert %q: %w", name, err)
			}
		}
		return nil
	}
	if dbc.Tx != nil {
		err = assert(dbc.Tx)
	} else {
		err = s.db.WithContext(dbc.Ctx).Transaction(assert)
	}
	if err != nil {
		return nil, err
	}

	if err := s.resolveService.ResolveEntity(dbc.Ctx, subject); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", subject, err)
	}

	if s.publisher != nil {
		ev := invalidation.Event{Kind: string(kind), Slug: in.Slug, Changed: 1}
		if err := s.publisher.Publish(dbc.Ctx, ev); err != nil {
			s.log.Warn("Invalidation publish failed", "kind", kind, "slug", in.Slug, "error", err)
		}
	}

	s.log.Info("Editor claims applied",
		"editor", rd.UserID.String(),
		"kind", kind,
		"slug", in.Slug,
		"fields", strings.Join(fields, ","))

	entity, err := s.catalogService.Detail(dbc, kind, in.Slug)
	if err != nil {
		return nil, err
	}
	feed, err := s.activity.Feed(dbc, subject)
	if err != nil {
		return nil, err
	}
	return &EditResult{Entity: entity, Activity: feed}, nil
}
