package kanka

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		Token:      "test-token",
		CampaignID: 99,
		BaseURL:    server.URL,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client, server
}

func TestListEntities_PageAndAuth(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 5, "entity_id": 50, "name": "Aelysh", "type": "Merchant"},
			},
			"meta": map[string]int{"current_page": 1, "last_page": 2},
		})
	}))

	records, hasMore, err := client.ListEntities(context.Background(), TypeCharacter, 1, ListOptions{Name: "Ael"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("missing bearer token, got %q", gotAuth)
	}
	if gotPath != "/campaigns/99/characters" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery != "limit=100&name=Ael&page=1" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(records) != 1 || records[0].EntityID != 50 || records[0].Name != "Aelysh" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if !hasMore {
		t.Fatalf("expected more pages")
	}
}

func TestListEntities_OrganizationUsesRemoteSpelling(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}, "meta": map[string]int{"current_page": 1, "last_page": 1}})
	}))

	_, _, err := client.ListEntities(context.Background(), TypeOrganization, 1, ListOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/campaigns/99/organisations" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestSearchEntities_MapsWireTypes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"entity_id": 1, "name": "Guild", "type": "organisation"},
				{"entity_id": 2, "name": "Map", "type": "map"},
			},
		})
	}))

	stubs, err := client.SearchEntities(context.Background(), "gu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected unsupported types skipped, got %+v", stubs)
	}
	if stubs[0].Type != TypeOrganization {
		t.Fatalf("wire type not mapped: %+v", stubs[0])
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{401, KindAuth},
		{404, KindNotFound},
		{422, KindValidation},
		{418, KindRemote},
	}

	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		_, err := client.GetEntity(context.Background(), TypeNote, 1)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *Error, got %v", tc.status, err)
		}
		if apiErr.Kind != tc.kind {
			t.Fatalf("status %d: expected kind %s, got %s", tc.status, tc.kind, apiErr.Kind)
		}
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": 3, "entity_id": 30, "name": "Keep"}})
	}))
	client.retries = 2

	entity, err := client.GetEntity(context.Background(), TypeLocation, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	if entity.Name != "Keep" {
		t.Fatalf("unexpected entity: %+v", entity)
	}
}

func TestNoRetry_PermanentFailure(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	client.retries = 3

	_, err := client.GetEntity(context.Background(), TypeLocation, 3)
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent failure retried: %d calls", calls)
	}
}

func TestCreatePost_PathUsesPublicEntityID(t *testing.T) {
	var gotPath, gotMethod string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": 7, "name": "Session 1"}})
	}))

	post, err := client.CreatePost(context.Background(), 42, PostPayload{Name: "Session 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/campaigns/99/entities/42/posts" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if post.ID != 7 {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Options{CampaignID: 1}); err == nil {
		t.Fatalf("expected error for missing token")
	}
	if _, err := NewClient(Options{Token: "x"}); err == nil {
		t.Fatalf("expected error for missing campaign id")
	}
}
