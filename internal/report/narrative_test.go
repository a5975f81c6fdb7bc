package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "hello", req.Messages[0].Content)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A summary."}}]}`))
	}))
	defer srv.Close()

	gen := &OpenAIText{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini", Timeout: 5 * time.Second}
	text, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "A summary.", text)
}

func TestOpenAITextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	gen := &OpenAIText{APIKey: "k", BaseURL: srv.URL, Model: "m"}
	_, err := gen.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.Empty(t, narrative(context.Background(), gen, "hello"))
}

func TestNoopText(t *testing.T) {
	text, err := NoopText{}.Generate(context.Background(), "x")
	assert.NoError(t, err)
	assert.Empty(t, text)
}
