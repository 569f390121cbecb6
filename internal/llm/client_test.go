package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{Provider: "gemini"}); err == nil {
		t.Fatal("expected configuration error for missing API key")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "oracle", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOpenAICompleteWithSystem(t *testing.T) {
	var sawAuth, sawSystem atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer test-key" {
			sawAuth.Store(true)
		}
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		if string(body) != "" && strings.Contains(string(body), `"role":"system"`) {
			sawSystem.Store(true)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"SELECT 1;"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 5})
	got, err := c.CompleteWithSystem(context.Background(), "you are a SQL assistant", "count matches")
	if err != nil {
		t.Fatalf("CompleteWithSystem: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("completion = %q", got)
	}
	if !sawAuth.Load() {
		t.Error("missing bearer token")
	}
	if !sawSystem.Load() {
		t.Error("system prompt not sent")
	}
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"SELECT "},{"text":"2;"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIKey: "k", BaseURL: srv.URL, TimeoutSeconds: 5})
	got, err := c.Complete(context.Background(), "count matches")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "SELECT 2;" {
		t.Errorf("completion = %q, want concatenated parts", got)
	}
}

func TestProviderErrorOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid request","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL, TimeoutSeconds: 5})
	_, err := c.Complete(context.Background(), "q")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL, TimeoutSeconds: 10})
	got, err := c.Complete(context.Background(), "q")
	if err != nil {
		t.Fatalf("Complete after retry: %v", err)
	}
	if got != "ok" || calls.Load() != 2 {
		t.Errorf("got %q after %d calls, want ok after 2", got, calls.Load())
	}
}
