package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" ok sir, which app? "},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test", Model: "gpt-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.Complete(context.Background(), Request{
		System:  "persona",
		History: []Turn{{Role: RoleScammer, Text: "hello"}, {Role: RoleAgent, Text: "hi who is this"}},
		Latest:  "pay now",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "ok sir, which app?" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if captured.Model != "gpt-test" || len(captured.Messages) != 4 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if captured.Messages[0].Role != "system" || captured.Messages[2].Role != "assistant" || captured.Messages[3].Content != "pay now" {
		t.Fatalf("history not reshaped: %+v", captured.Messages)
	}
}

func TestOpenAIClient_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client, _ := NewOpenAIClient(OpenAIConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), Request{Latest: "hi"})
	pe, ok := err.(*ProviderError)
	if !ok || pe.Kind != KindAuth {
		t.Fatalf("expected auth ProviderError, got %v", err)
	}
}
