package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ollama "github.com/ollama/ollama/api"
)

func TestOllamaComplete(t *testing.T) {
	var gotReq ollama.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"test-model","message":{"role":"assistant","content":"{\"final\":\"ok\"}"},"done":true}` + "\n"))
	}))
	defer server.Close()

	client, err := NewOllamaClient(server.URL, "test-model")
	if err != nil {
		t.Fatalf("NewOllamaClient failed: %v", err)
	}

	text, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"final":"ok"}` {
		t.Errorf("text = %q", text)
	}

	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if string(gotReq.Format) != `"json"` {
		t.Errorf("request format = %s, want \"json\"", gotReq.Format)
	}
	if gotReq.Stream == nil || *gotReq.Stream {
		t.Error("streaming should be disabled")
	}
}

func TestOllamaCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewOllamaClient(server.URL, "test-model")
	if err != nil {
		t.Fatalf("NewOllamaClient failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestNewOllamaClientValidation(t *testing.T) {
	if _, err := NewOllamaClient("http://localhost:11434", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := NewOllamaClient("://bad", "test-model"); err == nil {
		t.Error("expected error for unparseable host")
	}
}
