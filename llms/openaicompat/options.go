package openaicompat

import (
	"net/http"

	"github.com/tmc/langchaingo/callbacks"
)

const (
	// DefaultBaseURL is the Ollama OpenAI-compatible endpoint.
	DefaultBaseURL = "http://localhost:11434/v1"
	// DefaultAPIKey is sent when the server does not check keys.
	DefaultAPIKey = "local"
	// DefaultModel is used when no model is configured.
	DefaultModel = "qwen2.5:3b"
)

type options struct {
	apiKey           string
	baseURL          string
	model            string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option is a function that configures an LLM.
type Option func(*options)

// WithAPIKey sets the bearer token.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL sets the API root, including the /v1 suffix.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithModel sets the default model name.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithCallbacks sets the callbacks handler for the LLM.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}
