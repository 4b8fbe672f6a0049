package kanka

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) ListTags(ctx context.Context, page int) ([]Tag, bool, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(pageSize))

	records, hasMore, err := getPage[Tag](ctx, c, c.campaignURL("tags")+"?"+query.Encode())
	if err != nil {
		return nil, false, fmt.Errorf("listing tags page %d: %w", page, err)
	}
	return records, hasMore, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var envelope dataEnvelope[Tag]
	payload := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, c.campaignURL("tags"), payload, &envelope); err != nil {
		return nil, fmt.Errorf("creating tag %q: %w", name, err)
	}
	return &envelope.Data, nil
}
