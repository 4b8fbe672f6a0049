package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"kankamcp/internal/service"
)

// Core is the service surface the tools call. *service.Service
// satisfies it; tests substitute mocks.
type Core interface {
	FindEntities(ctx context.Context, params service.FindParams) (*service.FindResult, error)
	CreateEntities(ctx context.Context, inputs []service.EntityInput) []service.CreateEntityOutcome
	UpdateEntities(ctx context.Context, updates []service.EntityUpdate) []service.UpdateEntityOutcome
	GetEntities(ctx context.Context, entityIDs []int, includePosts bool) []service.GetEntityOutcome
	DeleteEntities(ctx context.Context, entityIDs []int) []service.DeleteEntityOutcome
	CreatePosts(ctx context.Context, inputs []service.PostInput) []service.CreatePostOutcome
	UpdatePosts(ctx context.Context, updates []service.PostUpdate) []service.UpdatePostOutcome
	DeletePosts(ctx context.Context, deletions []service.PostDeletion) []service.DeletePostOutcome
	CheckEntityUpdates(ctx context.Context, entityIDs []int, lastSynced string) (*service.CheckUpdatesResult, error)
}

type Server struct {
	core Core
	mcp  *sdk.Server
	log  zerolog.Logger
}

func NewServer(core Core, version string, log zerolog.Logger) *Server {
	s := &Server{
		core: core,
		log:  log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "kankamcp",
			Version: version,
		}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
