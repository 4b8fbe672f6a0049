package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kankamcp/internal/kanka"
)

// mockAPI implements API with overridable behaviour per call.
type mockAPI struct {
	listEntities      func(ctx context.Context, entityType kanka.EntityType, page int, opts kanka.ListOptions) ([]kanka.Entity, bool, error)
	searchEntities    func(ctx context.Context, query string) ([]kanka.EntityStub, error)
	listEntityRecords func(ctx context.Context, page int) ([]kanka.EntityRecord, bool, error)
	getEntity         func(ctx context.Context, entityType kanka.EntityType, childID int) (*kanka.Entity, error)
	createEntity      func(ctx context.Context, entityType kanka.EntityType, payload kanka.EntityPayload) (*kanka.Entity, error)
	updateEntity      func(ctx context.Context, entityType kanka.EntityType, childID int, payload kanka.EntityPayload) error
	deleteEntity      func(ctx context.Context, entityType kanka.EntityType, childID int) error
	listPosts         func(ctx context.Context, entityID, page int) ([]kanka.Post, bool, error)
	createPost        func(ctx context.Context, entityID int, payload kanka.PostPayload) (*kanka.Post, error)
	updatePost        func(ctx context.Context, entityID, postID int, payload kanka.PostPayload) error
	deletePost        func(ctx context.Context, entityID, postID int) error
	listTags          func(ctx context.Context, page int) ([]kanka.Tag, bool, error)
	createTag         func(ctx context.Context, name string) (*kanka.Tag, error)
}

func (m *mockAPI) ListEntities(ctx context.Context, entityType kanka.EntityType, page int, opts kanka.ListOptions) ([]kanka.Entity, bool, error) {
	if m.listEntities == nil {
		return nil, false, nil
	}
	return m.listEntities(ctx, entityType, page, opts)
}

func (m *mockAPI) SearchEntities(ctx context.Context, query string) ([]kanka.EntityStub, error) {
	if m.searchEntities == nil {
		return nil, nil
	}
	return m.searchEntities(ctx, query)
}

func (m *mockAPI) ListEntityRecords(ctx context.Context, page int) ([]kanka.EntityRecord, bool, error) {
	if m.listEntityRecords == nil {
		return nil, false, nil
	}
	return m.listEntityRecords(ctx, page)
}

func (m *mockAPI) GetEntity(ctx context.Context, entityType kanka.EntityType, childID int) (*kanka.Entity, error) {
	if m.getEntity == nil {
		return nil, fmt.Errorf("not found")
	}
	return m.getEntity(ctx, entityType, childID)
}

func (m *mockAPI) CreateEntity(ctx context.Context, entityType kanka.EntityType, payload kanka.EntityPayload) (*kanka.Entity, error) {
	if m.createEntity == nil {
		return nil, fmt.Errorf("unexpected create")
	}
	return m.createEntity(ctx, entityType, payload)
}

func (m *mockAPI) UpdateEntity(ctx context.Context, entityType kanka.EntityType, childID int, payload kanka.EntityPayload) error {
	if m.updateEntity == nil {
		return nil
	}
	return m.updateEntity(ctx, entityType, childID, payload)
}

func (m *mockAPI) DeleteEntity(ctx context.Context, entityType kanka.EntityType, childID int) error {
	if m.deleteEntity == nil {
		return nil
	}
	return m.deleteEntity(ctx, entityType, childID)
}

func (m *mockAPI) ListPosts(ctx context.Context, entityID, page int) ([]kanka.Post, bool, error) {
	if m.listPosts == nil {
		return nil, false, nil
	}
	return m.listPosts(ctx, entityID, page)
}

func (m *mockAPI) CreatePost(ctx context.Context, entityID int, payload kanka.PostPayload) (*kanka.Post, error) {
	if m.createPost == nil {
		return nil, fmt.Errorf("unexpected create post")
	}
	return m.createPost(ctx, entityID, payload)
}

func (m *mockAPI) UpdatePost(ctx context.Context, entityID, postID int, payload kanka.PostPayload) error {
	if m.updatePost == nil {
		return nil
	}
	return m.updatePost(ctx, entityID, postID, payload)
}

func (m *mockAPI) DeletePost(ctx context.Context, entityID, postID int) error {
	if m.deletePost == nil {
		return nil
	}
	return m.deletePost(ctx, entityID, postID)
}

func (m *mockAPI) ListTags(ctx context.Context, page int) ([]kanka.Tag, bool, error) {
	if m.listTags == nil {
		return nil, false, nil
	}
	return m.listTags(ctx, page)
}

func (m *mockAPI) CreateTag(ctx context.Context, name string) (*kanka.Tag, error) {
	if m.createTag == nil {
		return nil, fmt.Errorf("unexpected create tag")
	}
	return m.createTag(ctx, name)
}

func newTestService(api API) *Service {
	return New(api, 2, zerolog.Nop())
}

func characterPage(names ...string) []kanka.Entity {
	entities := make([]kanka.Entity, 0, len(names))
	for i, name := range names {
		entities = append(entities, kanka.Entity{
			ID:       i + 1,
			EntityID: 100 + i,
			Name:     name,
		})
	}
	return entities
}
