package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

func completionBody(t *testing.T, content string) string {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientOptions{
		Endpoint:    srv.URL,
		APIKey:      "test-key",
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		Timeout:     time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClient_Suggest(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, completionBody(t, `{"description":"A doc.","keywords":["go","seo"],"structuredData":{"type":"Article"}}`))
	})

	cand, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if cand.Description != "A doc." || len(cand.Keywords) != 2 || cand.StructuredData["type"] != "Article" {
		t.Errorf("candidate = %+v", cand)
	}
}

func TestClient_RetriesTransientFailure(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, completionBody(t, `{"description":"ok"}`))
	})

	cand, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if cand.Description != "ok" {
		t.Errorf("candidate = %+v", cand)
	}
}

func TestClient_BoundedRetry(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if !errors.Is(err, apperr.ErrSuggestUnavailable) {
		t.Fatalf("err = %v, want ErrSuggestUnavailable", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want exactly MaxAttempts", calls)
	}
}

func TestClient_NoRetryOnAuthFailure(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if !errors.Is(err, apperr.ErrSuggestUnavailable) {
		t.Fatalf("err = %v, want ErrSuggestUnavailable", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, auth failures must not retry", calls)
	}
}

func TestClient_MalformedCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(t, "not json at all"))
	})
	_, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if !errors.Is(err, apperr.ErrSuggestUnavailable) {
		t.Fatalf("err = %v, want ErrSuggestUnavailable", err)
	}
}

func TestClient_FencedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(t, "```json\n{\"description\":\"fenced\"}\n```"))
	})
	cand, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cand.Description != "fenced" {
		t.Errorf("description = %q", cand.Description)
	}
}

func TestClient_KeywordsAsCommaString(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(t, `{"keywords":"alpha, beta, gamma"}`))
	})
	cand, err := c.Suggest(context.Background(), "a.md", "body", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cand.Keywords) != 3 || cand.Keywords[1] != "beta" {
		t.Errorf("keywords = %v", cand.Keywords)
	}
}

func TestNewClient_RequiresKeyAndEndpoint(t *testing.T) {
	if _, err := NewClient(ClientOptions{Endpoint: "https://x"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewClient(ClientOptions{APIKey: "k"}); err == nil {
		t.Error("expected error for missing endpoint")
	}
}
