package service

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"

	"kankamcp/internal/filter"
	"kankamcp/internal/kanka"
)

// DateRange bounds the date filter, both ends inclusive.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FindParams bundles the optional predicates of one find request.
// It is built fresh per call and never persisted.
type FindParams struct {
	Query      string
	EntityType string
	Name       string
	NameFuzzy  bool
	Type       string
	Tags       []string
	DateRange  *DateRange
	Page       int
	Limit      int
	LastSynced string
}

// SyncInfo describes the snapshot a find result was computed from.
type SyncInfo struct {
	RequestTimestamp string `json:"request_timestamp"`
	NewestUpdatedAt  string `json:"newest_updated_at,omitempty"`
	TotalCount       int    `json:"total_count"`
	ReturnedCount    int    `json:"returned_count"`
}

// FindResult is the orchestrator's answer: the filtered page plus the
// sync metadata, with Truncated set when a non-first remote page could
// not be fetched and the result is best effort.
type FindResult struct {
	Entities  []Entity `json:"entities"`
	SyncInfo  SyncInfo `json:"sync_info"`
	Truncated bool     `json:"truncated,omitempty"`
}

// FindEntities runs the Dispatch → Fetch → Filter → Paginate pipeline.
// The remote API cannot apply any of the requested predicates, so every
// candidate record is fetched in full and filtered here.
func (s *Service) FindEntities(ctx context.Context, params FindParams) (*FindResult, error) {
	types, err := resolveTypes(params.EntityType)
	if err != nil {
		return nil, err
	}

	var dateStart, dateEnd time.Time
	if params.DateRange != nil {
		dateStart, err = dateparse.ParseAny(params.DateRange.Start)
		if err != nil {
			return nil, fmt.Errorf("parsing date range start: %w", err)
		}
		dateEnd, err = dateparse.ParseAny(params.DateRange.End)
		if err != nil {
			return nil, fmt.Errorf("parsing date range end: %w", err)
		}
	}

	tags := newTagResolver(s.api, s.log)

	// Fetch every candidate, one slot per type so the merged order is
	// stable: type enumeration order, remote order within a type.
	merged, truncated, err := s.fetchCandidates(ctx, types, params.LastSynced, tags)
	if err != nil {
		return nil, err
	}

	// The remote search endpoint indexes fields the entry text does
	// not carry, so its hits supplement the local content match.
	searchHits := map[int]struct{}{}
	if params.Query != "" {
		stubs, err := s.api.SearchEntities(ctx, params.Query)
		if err != nil {
			s.log.Warn().Err(err).Msg("remote search failed, using local matching only")
		}
		for _, stub := range stubs {
			searchHits[stub.EntityID] = struct{}{}
		}
	}

	// Filter. All supplied predicates must hold.
	filtered := make([]Entity, 0, len(merged))
	for _, entity := range merged {
		if params.Query != "" && !filter.MatchesContent(params.Query, entity.Name, entity.Entry) {
			if _, hit := searchHits[entity.EntityID]; !hit {
				continue
			}
		}
		if params.Name != "" {
			ok, score := filter.MatchesName(params.Name, entity.Name, params.NameFuzzy)
			if !ok {
				continue
			}
			if params.NameFuzzy {
				entity.MatchScore = &score
			}
		}
		if params.Type != "" && !filter.MatchesSubtype(params.Type, entity.Type, params.NameFuzzy) {
			continue
		}
		if len(params.Tags) > 0 && !filter.MatchesTags(entity.Tags, params.Tags) {
			continue
		}
		if params.DateRange != nil && !filter.MatchesDateRange(entity.Entry, dateStart, dateEnd) {
			continue
		}
		filtered = append(filtered, entity)
	}

	// Paginate locally; remote pagination was consumed during fetch.
	pageItems, _, total := filter.Paginate(filtered, params.Page, params.Limit)

	newest := ""
	for _, entity := range pageItems {
		if entity.UpdatedAt > newest {
			newest = entity.UpdatedAt
		}
	}

	return &FindResult{
		Entities: pageItems,
		SyncInfo: SyncInfo{
			RequestTimestamp: nowTimestamp(),
			NewestUpdatedAt:  newest,
			TotalCount:       total,
			ReturnedCount:    len(pageItems),
		},
		Truncated: truncated,
	}, nil
}

func resolveTypes(entityType string) ([]kanka.EntityType, error) {
	if entityType == "" {
		return kanka.EntityTypes, nil
	}
	resolved := kanka.EntityType(entityType)
	if !resolved.Valid() {
		return nil, fmt.Errorf("invalid entity_type %q", entityType)
	}
	return []kanka.EntityType{resolved}, nil
}

// fetchCandidates pulls all pages of every requested type, bounded by
// the service concurrency limit. A failure on a type's first page is
// fatal only when that type was requested explicitly; in a fan-out it
// degrades that type's contribution and flags truncation.
func (s *Service) fetchCandidates(ctx context.Context, types []kanka.EntityType, lastSync string, tags *tagResolver) ([]Entity, bool, error) {
	fanOut := len(types) > 1
	perType := make([][]Entity, len(types))
	truncatedFlags := make([]bool, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, entityType := range types {
		g.Go(func() error {
			records, truncated, err := s.fetchAllPages(gctx, entityType, lastSync)
			if err != nil {
				if !fanOut {
					return err
				}
				// Campaigns without this type, or a flaky first page:
				// drop the type, keep the request alive.
				s.log.Warn().Err(err).Str("entity_type", string(entityType)).Msg("type fetch failed")
				truncatedFlags[i] = true
				return nil
			}
			truncatedFlags[i] = truncated
			converted := make([]Entity, 0, len(records))
			for _, record := range records {
				converted = append(converted, s.entityFromWire(gctx, record, entityType, tags))
			}
			perType[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	var merged []Entity
	seen := make(map[int]struct{})
	truncated := false
	for i, batch := range perType {
		truncated = truncated || truncatedFlags[i]
		for _, entity := range batch {
			if _, dup := seen[entity.EntityID]; dup {
				continue
			}
			seen[entity.EntityID] = struct{}{}
			merged = append(merged, entity)
		}
	}
	return merged, truncated, nil
}

// fetchAllPages walks a typed endpoint's remote pagination to the end.
// The first page failing is an error; a later page failing returns
// what was fetched with the truncated flag set.
func (s *Service) fetchAllPages(ctx context.Context, entityType kanka.EntityType, lastSync string) ([]kanka.Entity, bool, error) {
	var all []kanka.Entity
	page := 1
	for {
		records, hasMore, err := s.api.ListEntities(ctx, entityType, page, kanka.ListOptions{LastSync: lastSync})
		if err != nil {
			if page == 1 {
				return nil, false, fmt.Errorf("fetching %s page 1: %w", entityType, err)
			}
			s.log.Warn().Err(err).Str("entity_type", string(entityType)).Int("page", page).Msg("page fetch failed, returning partial result")
			return all, true, nil
		}
		all = append(all, records...)
		if !hasMore || len(records) == 0 {
			return all, false, nil
		}
		page++
	}
}
