package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faisal1025/Q-AChatBotAirtribe/pipeline"
)

func newTestGenerator(t *testing.T, endpoint string) *pipeline.OpenAIGenerator {
	t.Helper()
	gen, err := pipeline.NewOpenAIGenerator(pipeline.GeneratorConfig{
		Endpoint: endpoint,
		APIKey:   "fake-key",
		Model:    "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestGenerate_SendsPromptAndSystemMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.Unmarshal(body, &req)

		if req.Model != "gpt-4o-mini" {
			t.Errorf("bad model: %q", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("want 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message role %q", req.Messages[0].Role)
		}
		if req.Messages[1].Role != "user" || req.Messages[1].Content != "the prompt" {
			t.Errorf("user message not forwarded: %+v", req.Messages[1])
		}

		json.NewEncoder(w).Encode(chatReply("the answer"))
	}))
	defer srv.Close()

	got, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the answer" {
		t.Errorf("want %q, got %q", "the answer", got)
	}
}

func TestGenerate_ReturnsErrorOnAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestGenerate_ErrorsOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerate_RetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer srv.Close()

	got, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("want ok after 2 calls, got %q after %d", got, calls)
	}
}
