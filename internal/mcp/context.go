package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"kankamcp/internal/kanka"
)

const contextURI = "kanka://context"

// campaignContext is the static primer served as a resource so agents
// learn the vocabulary before calling tools.
type campaignContext struct {
	Description       string            `json:"description"`
	SupportedEntities map[string]string `json:"supported_entities"`
	CoreFields        map[string]string `json:"core_fields"`
	Terminology       map[string]string `json:"terminology"`
	Posts             string            `json:"posts"`
	Mentions          mentionHelp       `json:"mentions"`
	Limitations       string            `json:"limitations"`
}

type mentionHelp struct {
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Note        string   `json:"note"`
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&sdk.Resource{
		URI:         contextURI,
		Name:        "kanka-context",
		Description: "How the campaign wiki is organized and how to reference entities",
		MIMEType:    "application/json",
	}, s.handleContextResource)
}

func (s *Server) handleContextResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	supported := make(map[string]string, len(kanka.EntityTypes))
	for _, entityType := range kanka.EntityTypes {
		supported[string(entityType)] = entityTypeHelp[entityType]
	}

	payload := campaignContext{
		Description:       "A Kanka campaign wiki of named entities with rich-text entries, tags, and attached posts.",
		SupportedEntities: supported,
		CoreFields: map[string]string{
			"name":       "Entity name, always present",
			"type":       "Free-form subtype, e.g. NPC, City, Artifact",
			"entry":      "Rich-text description in Markdown",
			"tags":       "Tag names attached to the entity",
			"is_private": "Hidden from campaign players when true",
		},
		Terminology: map[string]string{
			"entity_type": "One of the fixed supported types",
			"type":        "The user-defined subtype within an entity type",
		},
		Posts: "Posts are notes attached to exactly one entity, each with its own name, entry, and privacy flag.",
		Mentions: mentionHelp{
			Description: "Entries reference other entities with mention tokens that survive all conversions.",
			Examples:    []string{"[entity:42]", "[entity:42|The Duke]"},
			Note:        "Use the mention returned by create_entities to link new entities.",
		},
		Limitations: "Filtering happens client-side: broad searches fetch full listings. Batch operations report success per item and never roll back siblings.",
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding context resource: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{{
			URI:      contextURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

var entityTypeHelp = map[kanka.EntityType]string{
	kanka.TypeCharacter:    "People and NPCs",
	kanka.TypeCreature:     "Monsters and animal species",
	kanka.TypeLocation:     "Places, from continents to rooms",
	kanka.TypeOrganization: "Groups, guilds, and factions",
	kanka.TypeRace:         "Ancestries and species",
	kanka.TypeNote:         "Game-master notes, private by default",
	kanka.TypeJournal:      "Session logs and diaries",
	kanka.TypeQuest:        "Story arcs and objectives",
}
