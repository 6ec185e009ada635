package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSuggestNotConfigured(t *testing.T) {
	client := New(Config{})

	_, err := client.Suggest(context.Background(), []string{"Acme Inc"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Suggest() error = %v, want ErrNotConfigured", err)
	}
}

func TestSuggestNoNames(t *testing.T) {
	client := New(Config{APIKey: "test-key"})

	_, err := client.Suggest(context.Background(), nil)
	if !errors.Is(err, ErrNoNames) {
		t.Errorf("Suggest() error = %v, want ErrNoNames", err)
	}
}

func TestSuggestSuccess(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotVersion = r.Header.Get("Anthropic-Version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": ` "Acme Incorporated" `}},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	got, err := client.Suggest(context.Background(), []string{"Acme Inc", "ACME INCORPORATED"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	if got != "ACME INCORPORATED" {
		t.Errorf("Suggest() = %q, want trimmed, unquoted, uppercased suggestion", got)
	}
	if gotPath != "/v1/messages" {
		t.Errorf("path = %q, want /v1/messages", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want test-key", gotKey)
	}
	if gotVersion == "" {
		t.Error("Anthropic-Version header not set")
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
}

func TestSuggestUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "api_error", "message": "overloaded"},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Suggest(context.Background(), []string{"Acme Inc"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Suggest() error = %v, want ErrUpstream", err)
	}
}

func TestSuggestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Suggest(context.Background(), []string{"Acme Inc"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Suggest() error = %v, want ErrUpstream", err)
	}
}

func TestSuggestEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]string{}})
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Suggest(context.Background(), []string{"Acme Inc"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Suggest() error = %v, want ErrUpstream", err)
	}
}

func TestSuggestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut down before use

	client := New(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Suggest(context.Background(), []string{"Acme Inc"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Suggest() error = %v, want ErrUpstream", err)
	}
}

func TestBuildPromptIncludesGuidance(t *testing.T) {
	client := New(Config{APIKey: "k", Guidance: "Prefer legal entity suffixes"})

	prompt := client.buildPrompt([]string{"Acme Inc", "Acme"})
	for _, want := range []string{"- Acme Inc\n", "- Acme\n", "Prefer legal entity suffixes"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
