package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"kankamcp/internal/kanka"
)

// runBatch applies one operation across all items with bounded
// concurrency. Item workers never return errors, so no failure cancels
// a sibling and a started batch always runs to completion; outcomes
// land in an index-addressed slice so the reported order is the input
// order regardless of completion order.
func runBatch[I, O any](ctx context.Context, limit int, items []I, run func(context.Context, I) O) []O {
	outcomes := make([]O, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = run(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// EntityInput is one item of a create_entities batch.
type EntityInput struct {
	EntityType string   `json:"entity_type"`
	Name       string   `json:"name"`
	Type       *string  `json:"type,omitempty"`
	Entry      *string  `json:"entry,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsPrivate  *bool    `json:"is_private,omitempty"`
}

// CreateEntityOutcome reports one create item. Mention is the token
// callers can embed to reference the new entity.
type CreateEntityOutcome struct {
	ID       *int   `json:"id"`
	EntityID *int   `json:"entity_id"`
	Name     string `json:"name"`
	Mention  string `json:"mention,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) CreateEntities(ctx context.Context, inputs []EntityInput) []CreateEntityOutcome {
	tags := newTagResolver(s.api, s.log)

	return runBatch(ctx, s.concurrency, inputs, func(ctx context.Context, input EntityInput) CreateEntityOutcome {
		entityType := kanka.EntityType(input.EntityType)
		if !entityType.Valid() {
			return CreateEntityOutcome{
				Name:    input.Name,
				Error:   fmt.Sprintf("invalid entity_type %q", input.EntityType),
				Success: false,
			}
		}
		if input.Name == "" {
			return CreateEntityOutcome{Error: "name is required", Success: false}
		}

		payload := kanka.EntityPayload{
			Name:      input.Name,
			Type:      input.Type,
			IsPrivate: input.IsPrivate,
		}
		if input.Entry != nil {
			html := s.converter.ToHTML(*input.Entry)
			payload.Entry = &html
		}
		if input.IsPrivate == nil && entityType == kanka.TypeNote {
			// Notes default to private.
			private := true
			payload.IsPrivate = &private
		}
		if len(input.Tags) > 0 {
			payload.Tags = tags.resolveIDs(ctx, input.Tags)
		}

		created, err := s.api.CreateEntity(ctx, entityType, payload)
		if err != nil {
			return CreateEntityOutcome{Name: input.Name, Error: err.Error(), Success: false}
		}
		return CreateEntityOutcome{
			ID:       &created.ID,
			EntityID: &created.EntityID,
			Name:     created.Name,
			Mention:  fmt.Sprintf("[entity:%d]", created.EntityID),
			Success:  true,
		}
	})
}

// EntityUpdate is one item of an update_entities batch. Name is
// mandatory because the remote API requires it on every update.
type EntityUpdate struct {
	EntityID  int      `json:"entity_id"`
	Name      string   `json:"name"`
	Type      *string  `json:"type,omitempty"`
	Entry     *string  `json:"entry,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	IsPrivate *bool    `json:"is_private,omitempty"`
}

type UpdateEntityOutcome struct {
	EntityID int    `json:"entity_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) UpdateEntities(ctx context.Context, updates []EntityUpdate) []UpdateEntityOutcome {
	tags := newTagResolver(s.api, s.log)

	return runBatch(ctx, s.concurrency, updates, func(ctx context.Context, update EntityUpdate) UpdateEntityOutcome {
		if update.EntityID == 0 {
			return UpdateEntityOutcome{Error: "entity_id is required", Success: false}
		}
		if update.Name == "" {
			return UpdateEntityOutcome{EntityID: update.EntityID, Error: "name is required for updates", Success: false}
		}

		record, err := s.lookupEntityRecord(ctx, update.EntityID)
		if err != nil {
			return UpdateEntityOutcome{EntityID: update.EntityID, Error: err.Error(), Success: false}
		}
		if record == nil {
			return UpdateEntityOutcome{EntityID: update.EntityID, Error: fmt.Sprintf("entity %d not found", update.EntityID), Success: false}
		}
		entityType, ok := kanka.TypeFromWire(record.Type)
		if !ok {
			return UpdateEntityOutcome{EntityID: update.EntityID, Error: fmt.Sprintf("entity %d has unsupported type %q", update.EntityID, record.Type), Success: false}
		}

		payload := kanka.EntityPayload{
			Name:      update.Name,
			Type:      update.Type,
			IsPrivate: update.IsPrivate,
		}
		if update.Entry != nil {
			html := s.converter.ToHTML(*update.Entry)
			payload.Entry = &html
		}
		if update.Tags != nil {
			payload.Tags = tags.resolveIDs(ctx, update.Tags)
		}

		if err := s.api.UpdateEntity(ctx, entityType, record.ChildID, payload); err != nil {
			return UpdateEntityOutcome{EntityID: update.EntityID, Error: err.Error(), Success: false}
		}
		return UpdateEntityOutcome{EntityID: update.EntityID, Success: true}
	})
}

// GetEntityOutcome reports one get item; the entity is present only on
// success, posts only when they were requested.
type GetEntityOutcome struct {
	EntityID int     `json:"entity_id"`
	Entity   *Entity `json:"entity,omitempty"`
	Posts    []Post  `json:"posts,omitempty"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

func (s *Service) GetEntities(ctx context.Context, entityIDs []int, includePosts bool) []GetEntityOutcome {
	tags := newTagResolver(s.api, s.log)

	return runBatch(ctx, s.concurrency, entityIDs, func(ctx context.Context, entityID int) GetEntityOutcome {
		entity, posts, err := s.getEntityByID(ctx, entityID, includePosts, tags)
		if err != nil {
			return GetEntityOutcome{EntityID: entityID, Error: err.Error(), Success: false}
		}
		if entity == nil {
			return GetEntityOutcome{EntityID: entityID, Error: fmt.Sprintf("entity %d not found", entityID), Success: false}
		}
		return GetEntityOutcome{EntityID: entityID, Entity: entity, Posts: posts, Success: true}
	})
}

type DeleteEntityOutcome struct {
	EntityID int    `json:"entity_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) DeleteEntities(ctx context.Context, entityIDs []int) []DeleteEntityOutcome {
	return runBatch(ctx, s.concurrency, entityIDs, func(ctx context.Context, entityID int) DeleteEntityOutcome {
		record, err := s.lookupEntityRecord(ctx, entityID)
		if err != nil {
			return DeleteEntityOutcome{EntityID: entityID, Error: err.Error(), Success: false}
		}
		if record == nil {
			return DeleteEntityOutcome{EntityID: entityID, Error: fmt.Sprintf("entity %d not found", entityID), Success: false}
		}
		entityType, ok := kanka.TypeFromWire(record.Type)
		if !ok {
			return DeleteEntityOutcome{EntityID: entityID, Error: fmt.Sprintf("entity %d has unsupported type %q", entityID, record.Type), Success: false}
		}

		if err := s.api.DeleteEntity(ctx, entityType, record.ChildID); err != nil {
			return DeleteEntityOutcome{EntityID: entityID, Error: err.Error(), Success: false}
		}
		return DeleteEntityOutcome{EntityID: entityID, Success: true}
	})
}

// PostInput is one item of a create_posts batch.
type PostInput struct {
	EntityID  int     `json:"entity_id"`
	Name      string  `json:"name"`
	Entry     *string `json:"entry,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

type CreatePostOutcome struct {
	PostID   *int   `json:"post_id"`
	EntityID int    `json:"entity_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) CreatePosts(ctx context.Context, inputs []PostInput) []CreatePostOutcome {
	return runBatch(ctx, s.concurrency, inputs, func(ctx context.Context, input PostInput) CreatePostOutcome {
		if input.EntityID == 0 {
			return CreatePostOutcome{Error: "entity_id is required", Success: false}
		}
		if input.Name == "" {
			return CreatePostOutcome{EntityID: input.EntityID, Error: "name is required", Success: false}
		}

		payload := kanka.PostPayload{Name: input.Name, IsPrivate: input.IsPrivate}
		if input.Entry != nil {
			html := s.converter.ToHTML(*input.Entry)
			payload.Entry = &html
		}

		created, err := s.api.CreatePost(ctx, input.EntityID, payload)
		if err != nil {
			return CreatePostOutcome{EntityID: input.EntityID, Error: err.Error(), Success: false}
		}
		return CreatePostOutcome{PostID: &created.ID, EntityID: input.EntityID, Success: true}
	})
}

// PostUpdate is one item of an update_posts batch.
type PostUpdate struct {
	EntityID  int     `json:"entity_id"`
	PostID    int     `json:"post_id"`
	Name      string  `json:"name"`
	Entry     *string `json:"entry,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

type UpdatePostOutcome struct {
	EntityID int    `json:"entity_id"`
	PostID   int    `json:"post_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) UpdatePosts(ctx context.Context, updates []PostUpdate) []UpdatePostOutcome {
	return runBatch(ctx, s.concurrency, updates, func(ctx context.Context, update PostUpdate) UpdatePostOutcome {
		if update.EntityID == 0 || update.PostID == 0 {
			return UpdatePostOutcome{EntityID: update.EntityID, PostID: update.PostID, Error: "entity_id and post_id are required", Success: false}
		}
		if update.Name == "" {
			return UpdatePostOutcome{EntityID: update.EntityID, PostID: update.PostID, Error: "name is required for updates", Success: false}
		}

		payload := kanka.PostPayload{Name: update.Name, IsPrivate: update.IsPrivate}
		if update.Entry != nil {
			html := s.converter.ToHTML(*update.Entry)
			payload.Entry = &html
		}

		if err := s.api.UpdatePost(ctx, update.EntityID, update.PostID, payload); err != nil {
			return UpdatePostOutcome{EntityID: update.EntityID, PostID: update.PostID, Error: err.Error(), Success: false}
		}
		return UpdatePostOutcome{EntityID: update.EntityID, PostID: update.PostID, Success: true}
	})
}

// PostDeletion addresses one post of a delete_posts batch.
type PostDeletion struct {
	EntityID int `json:"entity_id"`
	PostID   int `json:"post_id"`
}

type DeletePostOutcome struct {
	EntityID int    `json:"entity_id"`
	PostID   int    `json:"post_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) DeletePosts(ctx context.Context, deletions []PostDeletion) []DeletePostOutcome {
	return runBatch(ctx, s.concurrency, deletions, func(ctx context.Context, deletion PostDeletion) DeletePostOutcome {
		if deletion.EntityID == 0 || deletion.PostID == 0 {
			return DeletePostOutcome{EntityID: deletion.EntityID, PostID: deletion.PostID, Error: "entity_id and post_id are required", Success: false}
		}

		if err := s.api.DeletePost(ctx, deletion.EntityID, deletion.PostID); err != nil {
			return DeletePostOutcome{EntityID: deletion.EntityID, PostID: deletion.PostID, Error: err.Error(), Success: false}
		}
		return DeletePostOutcome{EntityID: deletion.EntityID, PostID: deletion.PostID, Success: true}
	})
}
