package sonar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompleteSendsExpectedRequest(t *testing.T) {
	var captured completionBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "three days in Kyoto"}},
			},
			"usage": map[string]int{"prompt_tokens": 40, "completion_tokens": 120, "total_tokens": 160},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	answer, usage, err := client.Complete(context.Background(), CompletionRequest{
		System:   "be helpful",
		Messages: []Message{{Role: "user", Content: "plan kyoto"}},
	})
	require.NoError(t, err)
	require.Equal(t, "three days in Kyoto", answer)
	require.Equal(t, 160, usage.TotalTokens)
	require.GreaterOrEqual(t, usage.LatencySeconds, 0.0)

	require.Equal(t, DefaultModel, captured.Model)
	require.Equal(t, 0.4, captured.Temperature)
	require.Equal(t, 1.0, captured.TopP)
	require.Equal(t, 2048, captured.MaxTokens)
	require.False(t, captured.Stream)
	require.Nil(t, captured.ResponseFormat)
	require.Len(t, captured.Messages, 2)
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Equal(t, "be helpful", captured.Messages[0].Content)
	require.Equal(t, "plan kyoto", captured.Messages[1].Content)
}

func TestCompleteJSONOnlySetsResponseFormat(t *testing.T) {
	var captured completionBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"title":"x"}`}},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	_, _, err := client.Complete(context.Background(), CompletionRequest{
		System:   "json only",
		Messages: []Message{{Role: "user", Content: "finalize"}},
		JSONOnly: true,
	})
	require.NoError(t, err)
	require.NotNil(t, captured.ResponseFormat)
	require.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	_, _, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	_, _, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewHTTPClient("", "")
	_, _, err := client.Complete(context.Background(), CompletionRequest{})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
