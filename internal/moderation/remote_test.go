package moderation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/ideaswipe/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// チャット補完レスポンスを組み立てるヘルパー
func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestRemoteReviewer_Approve(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatCompletionBody(`{"approved": true, "reason": ""}`))
	}))
	defer server.Close()

	r := NewRemoteReviewer(server.Client(), testLogger(), server.URL, "openai/gpt-3.5-turbo", "test-key")
	verdict, err := r.Review(context.Background(), validIdea)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if !verdict.Approved {
		t.Error("verdict.Approved = false, want true")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotReq.Model != "openai/gpt-3.5-turbo" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != validIdea {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestRemoteReviewer_Reject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionBody(`{"approved": false, "reason": "Contains personal information."}`))
	}))
	defer server.Close()

	r := NewRemoteReviewer(server.Client(), testLogger(), server.URL, "openai/gpt-3.5-turbo", "test-key")
	verdict, err := r.Review(context.Background(), validIdea)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if verdict.Approved {
		t.Error("verdict.Approved = true, want false")
	}
	if verdict.Reason != "Contains personal information." {
		t.Errorf("Reason = %q", verdict.Reason)
	}
}

// モデルがコードフェンスでJSONを囲んだ場合もパースできることを検証
func TestRemoteReviewer_CodeFencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionBody("```json\n{\"approved\": true, \"reason\": \"\"}\n```"))
	}))
	defer server.Close()

	r := NewRemoteReviewer(server.Client(), testLogger(), server.URL, "openai/gpt-3.5-turbo", "test-key")
	verdict, err := r.Review(context.Background(), validIdea)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if !verdict.Approved {
		t.Error("verdict.Approved = false, want true")
	}
}

func TestRemoteReviewer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"invalid body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}},
		{"non-json verdict", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(chatCompletionBody("I approve of this idea!"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			r := NewRemoteReviewer(server.Client(), testLogger(), server.URL, "openai/gpt-3.5-turbo", "test-key")
			if _, err := r.Review(context.Background(), validIdea); err == nil {
				t.Error("Review should return error")
			}
		})
	}
}

// Factoryの審査器選択: APIキーの有無で切り替わる
func TestFactory_ReviewerFor(t *testing.T) {
	f := NewFactory(http.DefaultClient, testLogger(), FactoryConfig{
		Endpoint: "https://openrouter.ai/api/v1/chat/completions",
		Model:    "openai/gpt-3.5-turbo",
	})

	if _, ok := f.ReviewerFor(model.AppConfig{}).(*RuleReviewer); !ok {
		t.Error("without API key, ReviewerFor should return RuleReviewer")
	}
	if _, ok := f.ReviewerFor(model.AppConfig{ModerationAPIKey: "sk-test"}).(*RemoteReviewer); !ok {
		t.Error("with API key, ReviewerFor should return RemoteReviewer")
	}
}
