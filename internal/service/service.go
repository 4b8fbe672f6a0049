// Package service holds the request-scoped core: the query
// orchestrator that layers real filtering over the remote API's weak
// one, and the batch executor that applies writes item by item with
// partial-success reporting. It keeps no state between requests.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kankamcp/internal/content"
	"kankamcp/internal/kanka"
)

// API is the remote collaborator the core needs. *kanka.Client
// satisfies it; tests substitute mocks.
type API interface {
	ListEntities(ctx context.Context, entityType kanka.EntityType, page int, opts kanka.ListOptions) ([]kanka.Entity, bool, error)
	SearchEntities(ctx context.Context, query string) ([]kanka.EntityStub, error)
	ListEntityRecords(ctx context.Context, page int) ([]kanka.EntityRecord, bool, error)
	GetEntity(ctx context.Context, entityType kanka.EntityType, childID int) (*kanka.Entity, error)
	CreateEntity(ctx context.Context, entityType kanka.EntityType, payload kanka.EntityPayload) (*kanka.Entity, error)
	UpdateEntity(ctx context.Context, entityType kanka.EntityType, childID int, payload kanka.EntityPayload) error
	DeleteEntity(ctx context.Context, entityType kanka.EntityType, childID int) error
	ListPosts(ctx context.Context, entityID, page int) ([]kanka.Post, bool, error)
	CreatePost(ctx context.Context, entityID int, payload kanka.PostPayload) (*kanka.Post, error)
	UpdatePost(ctx context.Context, entityID, postID int, payload kanka.PostPayload) error
	DeletePost(ctx context.Context, entityID, postID int) error
	ListTags(ctx context.Context, page int) ([]kanka.Tag, bool, error)
	CreateTag(ctx context.Context, name string) (*kanka.Tag, error)
}

type Service struct {
	api         API
	converter   *content.Converter
	concurrency int
	log         zerolog.Logger
}

func New(api API, concurrency int, log zerolog.Logger) *Service {
	if concurrency < 1 {
		concurrency = 4
	}
	return &Service{
		api:         api,
		converter:   content.NewConverter(),
		concurrency: concurrency,
		log:         log,
	}
}

// Entity is the caller-facing record: entry in Markdown, tags by name.
type Entity struct {
	ID         int              `json:"id"`
	EntityID   int              `json:"entity_id"`
	Name       string           `json:"name"`
	EntityType kanka.EntityType `json:"entity_type"`
	Type       string           `json:"type,omitempty"`
	Entry      string           `json:"entry,omitempty"`
	Tags       []string         `json:"tags"`
	IsPrivate  bool             `json:"is_private"`
	CreatedAt  string           `json:"created_at,omitempty"`
	UpdatedAt  string           `json:"updated_at,omitempty"`
	MatchScore *float64         `json:"match_score,omitempty"`
}

// Post is the caller-facing post record, entry in Markdown.
type Post struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Entry     string `json:"entry,omitempty"`
	IsPrivate bool   `json:"is_private"`
}

func (s *Service) entityFromWire(ctx context.Context, wire kanka.Entity, entityType kanka.EntityType, tags *tagResolver) Entity {
	return Entity{
		ID:         wire.ID,
		EntityID:   wire.EntityID,
		Name:       wire.Name,
		EntityType: entityType,
		Type:       wire.Type,
		Entry:      s.converter.ToMarkdown(wire.Entry),
		Tags:       tags.namesForIDs(ctx, wire.Tags),
		IsPrivate:  wire.IsPrivate,
		CreatedAt:  wire.CreatedAt,
		UpdatedAt:  wire.UpdatedAt,
	}
}

func (s *Service) postFromWire(wire kanka.Post) Post {
	return Post{
		ID:        wire.ID,
		Name:      wire.Name,
		Entry:     s.converter.ToMarkdown(wire.Entry),
		IsPrivate: wire.IsPrivate,
	}
}

// entityLookupPageBudget bounds the campaign-wide scan used to resolve
// a public entity id, since that endpoint cannot filter by id.
const entityLookupPageBudget = 10

// lookupEntityRecord resolves a public entity id to its campaign-wide
// record by scanning the entities endpoint.
func (s *Service) lookupEntityRecord(ctx context.Context, entityID int) (*kanka.EntityRecord, error) {
	page := 1
	for page <= entityLookupPageBudget {
		records, hasMore, err := s.api.ListEntityRecords(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if record.ID == entityID {
				return &record, nil
			}
		}
		if !hasMore || len(records) == 0 {
			break
		}
		page++
	}
	return nil, nil
}

// getEntityByID fetches the full record behind a public entity id,
// optionally with its posts.
func (s *Service) getEntityByID(ctx context.Context, entityID int, includePosts bool, tags *tagResolver) (*Entity, []Post, error) {
	record, err := s.lookupEntityRecord(ctx, entityID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving entity %d: %w", entityID, err)
	}
	if record == nil {
		return nil, nil, nil
	}

	entityType, ok := kanka.TypeFromWire(record.Type)
	if !ok {
		return nil, nil, nil
	}

	wire, err := s.api.GetEntity(ctx, entityType, record.ChildID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching entity %d: %w", entityID, err)
	}

	entity := s.entityFromWire(ctx, *wire, entityType, tags)

	var posts []Post
	if includePosts {
		posts = []Post{}
		page := 1
		for {
			batch, hasMore, err := s.api.ListPosts(ctx, entityID, page)
			if err != nil {
				// Posts are best effort on reads; the entity itself
				// already succeeded.
				s.log.Warn().Err(err).Int("entity_id", entityID).Msg("fetching posts failed")
				break
			}
			for _, post := range batch {
				posts = append(posts, s.postFromWire(post))
			}
			if !hasMore || len(batch) == 0 {
				break
			}
			page++
		}
	}

	return &entity, posts, nil
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
