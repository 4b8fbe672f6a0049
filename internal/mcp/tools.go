package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"kankamcp/internal/service"
)

const defaultPageLimit = 25

type FindEntitiesInput struct {
	Query       string             `json:"query,omitempty" jsonschema:"full-text search across entity names and entries"`
	EntityType  string             `json:"entity_type,omitempty" jsonschema:"restrict to one entity type (character, creature, location, organization, race, note, journal, quest)"`
	Name        string             `json:"name,omitempty" jsonschema:"filter by entity name"`
	NameFuzzy   bool               `json:"name_fuzzy,omitempty" jsonschema:"tolerate misspellings in the name filter"`
	Type        string             `json:"type,omitempty" jsonschema:"filter by the user-defined subtype, e.g. NPC or City"`
	Tags        []string           `json:"tags,omitempty" jsonschema:"require all of these tags"`
	DateRange   *service.DateRange `json:"date_range,omitempty" jsonschema:"keep entities whose entry mentions a date inside this range"`
	IncludeFull *bool              `json:"include_full,omitempty" jsonschema:"return full records instead of minimal ones (default true)"`
	Page        int                `json:"page,omitempty" jsonschema:"result page, starting at 1"`
	Limit       *int               `json:"limit,omitempty" jsonschema:"results per page, 0 for all (default 25)"`
	LastSynced  string             `json:"last_synced,omitempty" jsonschema:"only consider entities modified after this ISO 8601 timestamp"`
}

// EntityResult is one returned entity; minimal results carry only the
// identity fields.
type EntityResult struct {
	ID         int            `json:"id,omitempty"`
	EntityID   int            `json:"entity_id"`
	Name       string         `json:"name"`
	EntityType string         `json:"entity_type"`
	Type       string         `json:"type,omitempty"`
	Entry      string         `json:"entry,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	IsPrivate  bool           `json:"is_private,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
	MatchScore *float64       `json:"match_score,omitempty"`
	Posts      []service.Post `json:"posts,omitempty"`
}

type FindEntitiesOutput struct {
	Entities  []EntityResult   `json:"entities"`
	SyncInfo  service.SyncInfo `json:"sync_info"`
	Truncated bool             `json:"truncated,omitempty"`
}

type CreateEntitiesInput struct {
	Entities []service.EntityInput `json:"entities" jsonschema:"entities to create"`
}

type CreateEntitiesOutput struct {
	Results []service.CreateEntityOutcome `json:"results"`
}

type UpdateEntitiesInput struct {
	Updates []service.EntityUpdate `json:"updates" jsonschema:"entity updates, each must carry entity_id and name"`
}

type UpdateEntitiesOutput struct {
	Results []service.UpdateEntityOutcome `json:"results"`
}

type GetEntitiesInput struct {
	EntityIDs    []int `json:"entity_ids" jsonschema:"entity ids to fetch"`
	IncludePosts bool  `json:"include_posts,omitempty" jsonschema:"also fetch each entity's posts"`
}

type GetEntitiesOutput struct {
	Results []GetEntityResult `json:"results"`
}

// GetEntityResult flattens the entity into the outcome, matching the
// shape of the other per-item results.
type GetEntityResult struct {
	EntityResult
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type DeleteEntitiesInput struct {
	EntityIDs []int `json:"entity_ids" jsonschema:"entity ids to delete"`
}

type DeleteEntitiesOutput struct {
	Results []service.DeleteEntityOutcome `json:"results"`
}

type CreatePostsInput struct {
	Posts []service.PostInput `json:"posts" jsonschema:"posts to create, each owned by one entity"`
}

type CreatePostsOutput struct {
	Results []service.CreatePostOutcome `json:"results"`
}

type UpdatePostsInput struct {
	Updates []service.PostUpdate `json:"updates" jsonschema:"post updates, each must carry entity_id, post_id and name"`
}

type UpdatePostsOutput struct {
	Results []service.UpdatePostOutcome `json:"results"`
}

type DeletePostsInput struct {
	Deletions []service.PostDeletion `json:"deletions" jsonschema:"posts to delete"`
}

type DeletePostsOutput struct {
	Results []service.DeletePostOutcome `json:"results"`
}

type CheckEntityUpdatesInput struct {
	EntityIDs  []int  `json:"entity_ids" jsonschema:"entity ids to check"`
	LastSynced string `json:"last_synced" jsonschema:"ISO 8601 timestamp of the last sync"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "find_entities",
		Description: "Find entities by full-text search and/or name, type, tag, and date filters",
	}, s.handleFindEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_entities",
		Description: "Create one or more entities, reporting success per item",
	}, s.handleCreateEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_entities",
		Description: "Update one or more entities, reporting success per item",
	}, s.handleUpdateEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entities",
		Description: "Fetch specific entities by id, optionally with their posts",
	}, s.handleGetEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_entities",
		Description: "Delete one or more entities, reporting success per item",
	}, s.handleDeleteEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_posts",
		Description: "Create posts on entities, reporting success per item",
	}, s.handleCreatePosts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_posts",
		Description: "Update existing posts, reporting success per item",
	}, s.handleUpdatePosts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_posts",
		Description: "Delete posts from entities, reporting success per item",
	}, s.handleDeletePosts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_entity_updates",
		Description: "Report which entity ids changed since a sync timestamp and which are gone",
	}, s.handleCheckEntityUpdates)
}

func (s *Server) toolLogger(tool string) zerolog.Logger {
	return s.log.With().Str("tool", tool).Str("request_id", uuid.NewString()).Logger()
}

func (s *Server) handleFindEntities(ctx context.Context, req *sdk.CallToolRequest, input FindEntitiesInput) (*sdk.CallToolResult, FindEntitiesOutput, error) {
	log := s.toolLogger("find_entities")

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := defaultPageLimit
	if input.Limit != nil {
		limit = *input.Limit
	}
	includeFull := input.IncludeFull == nil || *input.IncludeFull

	result, err := s.core.FindEntities(ctx, service.FindParams{
		Query:      input.Query,
		EntityType: input.EntityType,
		Name:       input.Name,
		NameFuzzy:  input.NameFuzzy,
		Type:       input.Type,
		Tags:       input.Tags,
		DateRange:  input.DateRange,
		Page:       page,
		Limit:      limit,
		LastSynced: input.LastSynced,
	})
	if err != nil {
		log.Error().Err(err).Msg("find failed")
		return nil, FindEntitiesOutput{}, err
	}
	log.Info().Int("returned", result.SyncInfo.ReturnedCount).Int("total", result.SyncInfo.TotalCount).Msg("find done")

	entities := make([]EntityResult, 0, len(result.Entities))
	for _, entity := range result.Entities {
		entities = append(entities, entityResultFromService(entity, includeFull))
	}
	return nil, FindEntitiesOutput{
		Entities:  entities,
		SyncInfo:  result.SyncInfo,
		Truncated: result.Truncated,
	}, nil
}

func (s *Server) handleCreateEntities(ctx context.Context, req *sdk.CallToolRequest, input CreateEntitiesInput) (*sdk.CallToolResult, CreateEntitiesOutput, error) {
	if len(input.Entities) == 0 {
		return nil, CreateEntitiesOutput{}, fmt.Errorf("entities are required")
	}
	log := s.toolLogger("create_entities")

	results := s.core.CreateEntities(ctx, input.Entities)
	log.Info().Int("items", len(results)).Int("failed", countEntityCreateFailures(results)).Msg("batch done")
	return nil, CreateEntitiesOutput{Results: results}, nil
}

func (s *Server) handleUpdateEntities(ctx context.Context, req *sdk.CallToolRequest, input UpdateEntitiesInput) (*sdk.CallToolResult, UpdateEntitiesOutput, error) {
	if len(input.Updates) == 0 {
		return nil, UpdateEntitiesOutput{}, fmt.Errorf("updates are required")
	}
	log := s.toolLogger("update_entities")

	results := s.core.UpdateEntities(ctx, input.Updates)
	log.Info().Int("items", len(results)).Msg("batch done")
	return nil, UpdateEntitiesOutput{Results: results}, nil
}

func (s *Server) handleGetEntities(ctx context.Context, req *sdk.CallToolRequest, input GetEntitiesInput) (*sdk.CallToolResult, GetEntitiesOutput, error) {
	if len(input.EntityIDs) == 0 {
		return nil, GetEntitiesOutput{}, fmt.Errorf("entity_ids are required")
	}
	log := s.toolLogger("get_entities")

	outcomes := s.core.GetEntities(ctx, input.EntityIDs, input.IncludePosts)
	log.Info().Int("items", len(outcomes)).Msg("batch done")

	results := make([]GetEntityResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := GetEntityResult{Success: outcome.Success, Error: outcome.Error}
		if outcome.Entity != nil {
			result.EntityResult = entityResultFromService(*outcome.Entity, true)
			result.Posts = outcome.Posts
		} else {
			result.EntityID = outcome.EntityID
		}
		results = append(results, result)
	}
	return nil, GetEntitiesOutput{Results: results}, nil
}

func (s *Server) handleDeleteEntities(ctx context.Context, req *sdk.CallToolRequest, input DeleteEntitiesInput) (*sdk.CallToolResult, DeleteEntitiesOutput, error) {
	if len(input.EntityIDs) == 0 {
		return nil, DeleteEntitiesOutput{}, fmt.Errorf("entity_ids are required")
	}
	log := s.toolLogger("delete_entities")

	results := s.core.DeleteEntities(ctx, input.EntityIDs)
	log.Info().Int("items", len(results)).Msg("batch done")
	return nil, DeleteEntitiesOutput{Results: results}, nil
}

func (s *Server) handleCreatePosts(ctx context.Context, req *sdk.CallToolRequest, input CreatePostsInput) (*sdk.CallToolResult, CreatePostsOutput, error) {
	if len(input.Posts) == 0 {
		return nil, CreatePostsOutput{}, fmt.Errorf("posts are required")
	}
	log := s.toolLogger("create_posts")

	results := s.core.CreatePosts(ctx, input.Posts)
	log.Info().Int("items", len(results)).Msg("batch done")
	return nil, CreatePostsOutput{Results: results}, nil
}

func (s *Server) handleUpdatePosts(ctx context.Context, req *sdk.CallToolRequest, input UpdatePostsInput) (*sdk.CallToolResult, UpdatePostsOutput, error) {
	if len(input.Updates) == 0 {
		return nil, UpdatePostsOutput{}, fmt.Errorf("updates are required")
	}
	log := s.toolLogger("update_posts")

	results := s.core.UpdatePosts(ctx, input.Updates)
	log.Info().Int("items", len(results)).Msg("batch done")
	return nil, UpdatePostsOutput{Results: results}, nil
}

func (s *Server) handleDeletePosts(ctx context.Context, req *sdk.CallToolRequest, input DeletePostsInput) (*sdk.CallToolResult, DeletePostsOutput, error) {
	if len(input.Deletions) == 0 {
		return nil, DeletePostsOutput{}, fmt.Errorf("deletions are required")
	}
	log := s.toolLogger("delete_posts")

	results := s.core.DeletePosts(ctx, input.Deletions)
	log.Info().Int("items", len(results)).Msg("batch done")
	return nil, DeletePostsOutput{Results: results}, nil
}

func (s *Server) handleCheckEntityUpdates(ctx context.Context, req *sdk.CallToolRequest, input CheckEntityUpdatesInput) (*sdk.CallToolResult, service.CheckUpdatesResult, error) {
	if input.LastSynced == "" {
		return nil, service.CheckUpdatesResult{}, fmt.Errorf("last_synced is required")
	}
	log := s.toolLogger("check_entity_updates")

	result, err := s.core.CheckEntityUpdates(ctx, input.EntityIDs, input.LastSynced)
	if err != nil {
		log.Error().Err(err).Msg("check failed")
		return nil, service.CheckUpdatesResult{}, err
	}
	log.Info().Int("modified", len(result.ModifiedEntityIDs)).Int("deleted", len(result.DeletedEntityIDs)).Msg("check done")
	return nil, *result, nil
}

func entityResultFromService(entity service.Entity, includeFull bool) EntityResult {
	if !includeFull {
		return EntityResult{
			EntityID:   entity.EntityID,
			Name:       entity.Name,
			EntityType: string(entity.EntityType),
		}
	}
	return EntityResult{
		ID:         entity.ID,
		EntityID:   entity.EntityID,
		Name:       entity.Name,
		EntityType: string(entity.EntityType),
		Type:       entity.Type,
		Entry:      entity.Entry,
		Tags:       entity.Tags,
		IsPrivate:  entity.IsPrivate,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
		MatchScore: entity.MatchScore,
	}
}

func countEntityCreateFailures(results []service.CreateEntityOutcome) int {
	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	return failed
}
