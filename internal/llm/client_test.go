package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientNotConfigured(t *testing.T) {
	c := NewClient("", "")
	if c.Configured() {
		t.Error("expected unconfigured client")
	}

	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "missing access token") {
		t.Errorf("error = %q, want mention of missing access token", err)
	}
}

func TestClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Bonjour"}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-token", WithHTTPClient(server.Client()))

	got, err := c.Complete(context.Background(), "be a translator", "translate Hello")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("content = %q, want %q", got, "Bonjour")
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q, want bearer token", gotAuth)
	}
	if gotReq.Model != defaultModel {
		t.Errorf("model = %q, want %q", gotReq.Model, defaultModel)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
	if gotReq.Temperature != 1.0 || gotReq.TopP != 1.0 {
		t.Errorf("sampling params = (%v, %v), want (1, 1)", gotReq.Temperature, gotReq.TopP)
	}
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad credentials"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "stale-token", WithHTTPClient(server.Client()))

	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "bad credentials") {
		t.Errorf("error = %q, want upstream message included", err)
	}
}

func TestClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "token", WithHTTPClient(server.Client()))

	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
