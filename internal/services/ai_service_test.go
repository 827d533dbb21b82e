package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infographic-service/internal/config"
)

// newFakeCompletionServer serves an OpenAI-compatible chat completion endpoint
func newFakeCompletionServer(t *testing.T, handler http.HandlerFunc) *AIService {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	return NewAIService(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL + "/v1",
		Model:   "test-model",
	})
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestGenerateInfographicReturnsCompletion(t *testing.T) {
	svc := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse("<html>generated</html>"))
	})

	html, err := svc.GenerateInfographic(context.Background(), "some prompt")
	require.NoError(t, err)
	assert.Equal(t, "<html>generated</html>", html)
}

func TestGenerateInfographicSendsBearerAuth(t *testing.T) {
	svc := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse("<html>ok</html>"))
	})

	_, err := svc.GenerateInfographic(context.Background(), "some prompt")
	require.NoError(t, err)
}

func TestGenerateInfographicRejectsEmptyCompletion(t *testing.T) {
	svc := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1", "object": "chat.completion", "choices": []any{},
		})
	})

	_, err := svc.GenerateInfographic(context.Background(), "some prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestGenerateInfographicSurfacesServerError(t *testing.T) {
	svc := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	})

	_, err := svc.GenerateInfographic(context.Background(), "some prompt")
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"<html>plain</html>":                       "<html>plain</html>",
		"```html\n<html>fenced</html>\n```":        "<html>fenced</html>",
		"```\n<html>anon fence</html>\n```":        "<html>anon fence</html>",
		"  \n```html\n<html>padded</html>\n```\n ": "<html>padded</html>",
	}
	for input, want := range cases {
		assert.Equal(t, want, StripCodeFences(input))
	}
}
