// Package kanka is the HTTP client for the Kanka campaign API. It owns
// authentication, retry of transient failures, pagination envelopes,
// and the API's naming quirks; everything above it works with clean
// records and typed errors.
package kanka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.kanka.io/1.0"

// pageSize is the API's maximum page size; every list call asks for it.
const pageSize = 100

type Client struct {
	baseURL    string
	campaignID int
	http       *http.Client
	retries    uint64
	log        zerolog.Logger
}

type Options struct {
	Token      string
	CampaignID int
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Logger     zerolog.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("creating kanka client: token is required")
	}
	if opts.CampaignID <= 0 {
		return nil, fmt.Errorf("creating kanka client: campaign id is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		baseURL:    baseURL,
		campaignID: opts.CampaignID,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{token: opts.Token, base: http.DefaultTransport},
		},
		retries: uint64(retries),
		log:     opts.Logger,
	}, nil
}

// bearerTransport adds the Authorization header on every request so
// the token never appears in URLs, payloads, or error text.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	clone.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(clone)
}

func (c *Client) campaignURL(path string) string {
	return fmt.Sprintf("%s/campaigns/%d/%s", c.baseURL, c.campaignID, path)
}

// doJSON performs one API call with bounded exponential retry of
// transient failures. Non-2xx responses become *Error values carrying
// the body excerpt as the message.
func (c *Client) doJSON(ctx context.Context, method, url string, body any, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = encoded
	}

	attempt := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Timeouts and connection failures are transient.
			return &Error{Kind: KindTransient, Message: err.Error()}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
			}
			return nil
		}

		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		apiErr := &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: string(bytes.TrimSpace(excerpt)),
		}
		if !apiErr.Retryable() {
			return backoff.Permanent(apiErr)
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("retrying transient failure")
		return apiErr
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	return backoff.Retry(attempt, policy)
}

// listEnvelope is the API's standard paginated response wrapper.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

// dataEnvelope wraps single-record responses.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func getPage[T any](ctx context.Context, c *Client, url string) ([]T, bool, error) {
	var envelope listEnvelope[T]
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &envelope); err != nil {
		return nil, false, err
	}
	hasMore := envelope.Meta.CurrentPage < envelope.Meta.LastPage
	return envelope.Data, hasMore, nil
}
