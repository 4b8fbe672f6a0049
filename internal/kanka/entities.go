package kanka

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListEntities fetches one page of a typed endpoint. The name filter
// does remote partial matching; lastSync narrows to records modified
// since the given ISO 8601 timestamp.
func (c *Client) ListEntities(ctx context.Context, entityType EntityType, page int, opts ListOptions) ([]Entity, bool, error) {
	endpoint, ok := endpointByType[entityType]
	if !ok {
		return nil, false, fmt.Errorf("listing entities: unsupported entity type %q", entityType)
	}

	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(pageSize))
	if opts.Name != "" {
		query.Set("name", opts.Name)
	}
	if opts.LastSync != "" {
		query.Set("lastSync", opts.LastSync)
	}

	records, hasMore, err := getPage[Entity](ctx, c, c.campaignURL(endpoint)+"?"+query.Encode())
	if err != nil {
		return nil, false, fmt.Errorf("listing %s page %d: %w", endpoint, page, err)
	}
	return records, hasMore, nil
}

// SearchEntities queries the campaign search endpoint, which returns
// only minimal records.
func (c *Client) SearchEntities(ctx context.Context, query string) ([]EntityStub, error) {
	type searchRecord struct {
		EntityID int    `json:"entity_id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
	}

	var envelope listEnvelope[searchRecord]
	searchURL := c.campaignURL("search/" + url.PathEscape(query))
	if err := c.doJSON(ctx, http.MethodGet, searchURL, nil, &envelope); err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}

	stubs := make([]EntityStub, 0, len(envelope.Data))
	for _, record := range envelope.Data {
		entityType, ok := TypeFromWire(record.Type)
		if !ok {
			// Entity types outside the supported set are skipped.
			continue
		}
		stubs = append(stubs, EntityStub{
			EntityID: record.EntityID,
			Name:     record.Name,
			Type:     entityType,
		})
	}
	return stubs, nil
}

// ListEntityRecords fetches one page of the campaign-wide entities
// endpoint, the only place the public entity id is the primary key.
func (c *Client) ListEntityRecords(ctx context.Context, page int) ([]EntityRecord, bool, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(pageSize))

	records, hasMore, err := getPage[EntityRecord](ctx, c, c.campaignURL("entities")+"?"+query.Encode())
	if err != nil {
		return nil, false, fmt.Errorf("listing entity records page %d: %w", page, err)
	}
	return records, hasMore, nil
}

// GetEntity fetches a full record by its type-specific child id.
func (c *Client) GetEntity(ctx context.Context, entityType EntityType, childID int) (*Entity, error) {
	endpoint, ok := endpointByType[entityType]
	if !ok {
		return nil, fmt.Errorf("getting entity: unsupported entity type %q", entityType)
	}

	var envelope dataEnvelope[Entity]
	url := c.campaignURL(fmt.Sprintf("%s/%d", endpoint, childID))
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &envelope); err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", entityType, childID, err)
	}
	return &envelope.Data, nil
}

// CreateEntity creates a record on the typed endpoint.
func (c *Client) CreateEntity(ctx context.Context, entityType EntityType, payload EntityPayload) (*Entity, error) {
	endpoint, ok := endpointByType[entityType]
	if !ok {
		return nil, fmt.Errorf("creating entity: unsupported entity type %q", entityType)
	}

	var envelope dataEnvelope[Entity]
	if err := c.doJSON(ctx, http.MethodPost, c.campaignURL(endpoint), payload, &envelope); err != nil {
		return nil, fmt.Errorf("creating %s %q: %w", entityType, payload.Name, err)
	}
	return &envelope.Data, nil
}

// UpdateEntity patches a record by its type-specific child id.
func (c *Client) UpdateEntity(ctx context.Context, entityType EntityType, childID int, payload EntityPayload) error {
	endpoint, ok := endpointByType[entityType]
	if !ok {
		return fmt.Errorf("updating entity: unsupported entity type %q", entityType)
	}

	url := c.campaignURL(fmt.Sprintf("%s/%d", endpoint, childID))
	if err := c.doJSON(ctx, http.MethodPatch, url, payload, nil); err != nil {
		return fmt.Errorf("updating %s %d: %w", entityType, childID, err)
	}
	return nil
}

// DeleteEntity removes a record by its type-specific child id.
func (c *Client) DeleteEntity(ctx context.Context, entityType EntityType, childID int) error {
	endpoint, ok := endpointByType[entityType]
	if !ok {
		return fmt.Errorf("deleting entity: unsupported entity type %q", entityType)
	}

	url := c.campaignURL(fmt.Sprintf("%s/%d", endpoint, childID))
	if err := c.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("deleting %s %d: %w", entityType, childID, err)
	}
	return nil
}
