package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"kankamcp/internal/kanka"
)

// tagResolver translates between tag names and remote tag ids. It is
// request-scoped: each tool invocation builds a fresh one, loads the
// campaign's tags lazily on first use, and throws it away afterward.
// Safe for use from concurrent batch items.
type tagResolver struct {
	api API
	log zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	byLower map[string]kanka.Tag
	byID    map[int]string
}

func newTagResolver(api API, log zerolog.Logger) *tagResolver {
	return &tagResolver{
		api:     api,
		log:     log,
		byLower: map[string]kanka.Tag{},
		byID:    map[int]string{},
	}
}

func (r *tagResolver) load(ctx context.Context) {
	if r.loaded {
		return
	}
	r.loaded = true

	page := 1
	for {
		tags, hasMore, err := r.api.ListTags(ctx, page)
		if err != nil {
			r.log.Warn().Err(err).Msg("loading tags failed")
			return
		}
		for _, tag := range tags {
			r.byLower[strings.ToLower(tag.Name)] = tag
			r.byID[tag.ID] = tag.Name
		}
		if !hasMore || len(tags) == 0 {
			return
		}
		page++
	}
}

// resolveIDs maps tag names to ids, creating tags that do not exist
// yet. A tag that cannot be resolved is skipped with a warning rather
// than failing the item it belongs to.
func (r *tagResolver) resolveIDs(ctx context.Context, names []string) []int {
	if len(names) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.load(ctx)

	ids := make([]int, 0, len(names))
	for _, name := range names {
		if tag, ok := r.byLower[strings.ToLower(name)]; ok {
			ids = append(ids, tag.ID)
			continue
		}
		created, err := r.api.CreateTag(ctx, name)
		if err != nil {
			r.log.Warn().Err(err).Str("tag", name).Msg("creating tag failed")
			continue
		}
		r.byLower[strings.ToLower(created.Name)] = *created
		r.byID[created.ID] = created.Name
		ids = append(ids, created.ID)
	}
	return ids
}

// namesForIDs maps tag ids back to names. Unknown ids degrade to their
// numeric form so the caller still sees something addressable.
func (r *tagResolver) namesForIDs(ctx context.Context, ids []int) []string {
	names := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return names
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.load(ctx)

	for _, id := range ids {
		if name, ok := r.byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, strconv.Itoa(id))
		}
	}
	return names
}
