package provider

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/ontollm/llms/openaicompat"
)

const (
	// OpenAI selects the hosted OpenAI API.
	OpenAI = "openai"
	// Local selects an OpenAI-compatible local server.
	Local = "local"

	// DefaultOpenAIModel is used when no OpenAI model is configured.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned when the openai provider has no key.
var ErrMissingAPIKey = errors.New("missing required environment variable: OPENAI_API_KEY")

// Config selects and configures the model.
type Config struct {
	Provider     string
	OpenAIAPIKey string
	OpenAIModel  string
	LocalBaseURL string
	LocalAPIKey  string
	LocalModel   string
	// Callbacks, when set, observes every generation.
	Callbacks callbacks.Handler
}

// Model is a constructed model and the name it was built for.
type Model struct {
	llms.Model
	Name     string
	Provider string
}

// New builds the model for cfg. Providers other than "local" use OpenAI.
func New(cfg Config) (*Model, error) {
	if strings.ToLower(strings.TrimSpace(cfg.Provider)) == Local {
		model := cfg.LocalModel
		if model == "" {
			model = openaicompat.DefaultModel
		}
		opts := []openaicompat.Option{
			openaicompat.WithModel(model),
		}
		if cfg.LocalBaseURL != "" {
			opts = append(opts, openaicompat.WithBaseURL(cfg.LocalBaseURL))
		}
		if cfg.LocalAPIKey != "" {
			opts = append(opts, openaicompat.WithAPIKey(cfg.LocalAPIKey))
		}
		if cfg.Callbacks != nil {
			opts = append(opts, openaicompat.WithCallbacks(cfg.Callbacks))
		}
		llm, err := openaicompat.New(opts...)
		if err != nil {
			return nil, errors.Wrap(err, "build local model")
		}
		return &Model{Model: llm, Name: model, Provider: Local}, nil
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []openai.Option{
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(model),
	}
	if cfg.Callbacks != nil {
		opts = append(opts, openai.WithCallback(cfg.Callbacks))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "build openai model")
	}
	return &Model{Model: llm, Name: model, Provider: OpenAI}, nil
}
