package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 512, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "four actions coming up"}},
			},
		})
	})

	got, err := client.Complete(context.Background(), "suggest", Options{MaxTokens: 512, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "four actions coming up", got)
}

func TestOpenAIClient_NonSuccessStatus(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "x", SuggestOptions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_MalformedBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := client.Complete(context.Background(), "x", SuggestOptions)
	require.Error(t, err)
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "x", SuggestOptions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewClient_RequiresCredential(t *testing.T) {
	_, err := NewClient(ProviderSettings{Provider: "openai"})
	require.Error(t, err)

	_, err = NewClient(ProviderSettings{Provider: "martian", APIKey: "k"})
	require.Error(t, err)

	c, err := NewClient(ProviderSettings{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
