package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedChat struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func newOpenAIServer(t *testing.T, got *capturedChat, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` +
			strconvQuote(reply) + `},"finish_reason":"stop"}]}`))
	}))
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAIGenerateText(t *testing.T) {
	var got capturedChat
	srv := newOpenAIServer(t, &got, "grounded answer")
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := client.GenerateText(context.Background(), "question", SamplingConfig{
		Temperature: 0.7, TopP: 0.8, TopK: 40, MaxOutputTokens: 2048,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "grounded answer" {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "gpt-test" || got.MaxTokens != 2048 || got.TopP != 0.8 {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAIDescribeImageUsesDataURI(t *testing.T) {
	var got capturedChat
	srv := newOpenAIServer(t, &got, "receipt text")
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "sk-test", Model: "gpt-test", VisionModel: "gpt-vision", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := client.DescribeImage(context.Background(), "read it", []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if text != "receipt text" || got.Model != "gpt-vision" {
		t.Fatalf("unexpected result %q model %q", text, got.Model)
	}
	if !strings.Contains(string(got.Messages[0].Content), "data:image/jpeg;base64,AQID") {
		t.Fatalf("image part missing: %s", got.Messages[0].Content)
	}
}

func TestOpenAIEmptyCompletionIsError(t *testing.T) {
	var got capturedChat
	srv := newOpenAIServer(t, &got, "   ")
	defer srv.Close()

	client, _ := NewOpenAIClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if _, err := client.GenerateText(context.Background(), "q", SamplingConfig{}); err == nil {
		t.Fatal("expected error for empty completion")
	}
}
