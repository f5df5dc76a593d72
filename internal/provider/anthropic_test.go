package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/entropy-agent/internal/provider"
)

func TestNewAnthropicClient_UsesKeyAndBaseURL(t *testing.T) {
	var gotKey, gotVersion, gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("X-Api-Key"))
		gotVersion.Store(r.Header.Get("Anthropic-Version"))
		gotPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"hi"}],"model":"test","stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c := provider.NewAnthropicClient(provider.Settings{APIKey: "test-key", BaseURL: srv.URL + "/"})
	msg, err := c.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     provider.DefaultModel,
		MaxTokens: 16,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("hello"))},
	})
	require.NoError(t, err)
	require.Len(t, msg.Content, 1)

	assert.Equal(t, "test-key", gotKey.Load())
	assert.Equal(t, "2023-06-01", gotVersion.Load(), "anthropic-version header")
	assert.Equal(t, "/v1/messages", gotPath.Load())
}
