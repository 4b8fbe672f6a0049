package kanka

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Posts are addressed by the public entity id, not the child id.

func (c *Client) ListPosts(ctx context.Context, entityID, page int) ([]Post, bool, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(pageSize))

	path := fmt.Sprintf("entities/%d/posts", entityID)
	records, hasMore, err := getPage[Post](ctx, c, c.campaignURL(path)+"?"+query.Encode())
	if err != nil {
		return nil, false, fmt.Errorf("listing posts for entity %d: %w", entityID, err)
	}
	return records, hasMore, nil
}

func (c *Client) CreatePost(ctx context.Context, entityID int, payload PostPayload) (*Post, error) {
	var envelope dataEnvelope[Post]
	url := c.campaignURL(fmt.Sprintf("entities/%d/posts", entityID))
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &envelope); err != nil {
		return nil, fmt.Errorf("creating post on entity %d: %w", entityID, err)
	}
	return &envelope.Data, nil
}

func (c *Client) UpdatePost(ctx context.Context, entityID, postID int, payload PostPayload) error {
	url := c.campaignURL(fmt.Sprintf("entities/%d/posts/%d", entityID, postID))
	if err := c.doJSON(ctx, http.MethodPatch, url, payload, nil); err != nil {
		return fmt.Errorf("updating post %d on entity %d: %w", postID, entityID, err)
	}
	return nil
}

func (c *Client) DeletePost(ctx context.Context, entityID, postID int) error {
	url := c.campaignURL(fmt.Sprintf("entities/%d/posts/%d", entityID, postID))
	if err := c.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("deleting post %d on entity %d: %w", postID, entityID, err)
	}
	return nil
}
