package provider

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Settings selects credentials and endpoint for the Messages API.
type Settings struct {
	APIKey  string
	BaseURL string
	// HTTPClient overrides the SDK's client; tests use it to intercept requests.
	HTTPClient *http.Client
}

// NewAnthropicClient returns a client for s. An empty APIKey leaves the SDK
// to read ANTHROPIC_API_KEY from the environment.
func NewAnthropicClient(s Settings) *anthropic.Client {
	var opts []option.RequestOption
	if s.APIKey != "" {
		opts = append(opts, option.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	c := anthropic.NewClient(opts...)
	return &c
}

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
