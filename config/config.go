package config

import (
	"net"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/smallnest/ontollm/llms/provider"
	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/prompt"
)

// FileName is the base name searched for in the working directory.
const FileName = "ontollm"

// Config holds every runtime setting.
type Config struct {
	SQLitePath string
	// StoreURL overrides SQLitePath when set.
	StoreURL string

	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string
	LocalBaseURL string
	LocalAPIKey  string
	LocalModel   string

	MaxFacts           int
	MaxRelations       int
	MaxContextChars    int
	BudgetMode         prompt.Mode
	TokenWarnThreshold int
	// TokenizerDir holds local tiktoken rank files. Empty uses the
	// heuristic tokenizer.
	TokenizerDir string
	// TokenizerFallback is the tiktoken encoding used when the embeddings
	// model is not a tiktoken model or encoding. Empty disables it.
	TokenizerFallback string

	MemoryEnabled         bool
	MemoryRedisAddr       string
	MemoryEmbeddingsModel string
	EntityID              string
	ProcessID             string

	APIHost     string
	APIPort     int
	LogLevel    string
	OntologyDir string

	// File is the config file that was read, if any.
	File string
}

type intSetting struct {
	key     string
	def     int
	minimum int
}

var (
	stringDefaults = map[string]string{
		"sqlite_path":             "./data/ontology_memori.db",
		"ontology_store_url":      "",
		"llm_provider":            provider.OpenAI,
		"openai_api_key":          "",
		"openai_model":            provider.DefaultOpenAIModel,
		"local_base_url":          "http://localhost:11434/v1",
		"local_api_key":           "local",
		"local_model":             "qwen2.5:3b",
		"prompt_budget_mode":      string(prompt.ModeBalanced),
		"tokenizer_dir":           "",
		"tokenizer_fallback":      prompt.DefaultFallbackEncoding,
		"memori_embeddings_model": "all-MiniLM-L6-v2",
		"memori_enabled":          "0",
		"memori_redis_addr":       "",
		"entity_id":               "user-001",
		"process_id":              "ontology-agent",
		"api_host":                "0.0.0.0",
		"log_level":               "INFO",
		"ontology_dir":            "data/ontologies",
	}

	intSettings = []intSetting{
		{"max_ontology_facts", 5, 1},
		{"max_relations", 3, 0},
		{"max_context_chars", 1200, 1},
		{"prompt_token_warn_threshold", prompt.DefaultTokenWarnThreshold, 1},
		{"api_port", 8000, 1},
	}
)

// SetDefaults registers the default of every key on v and binds each key
// to its upper-case environment variable.
func SetDefaults(v *viper.Viper) {
	for key, def := range stringDefaults {
		v.SetDefault(key, def)
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	for _, s := range intSettings {
		v.SetDefault(s.key, s.def)
		_ = v.BindEnv(s.key, strings.ToUpper(s.key))
	}
}

// Load reads the configuration. An explicit path must exist; otherwise an
// ontollm.{toml,yaml} in the working directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config file")
			}
		}
	}
	return FromViper(v), nil
}

// FromViper builds a Config from v. Integers that do not parse fall back
// to their default and values below the minimum are clamped.
func FromViper(v *viper.Viper) *Config {
	ints := make(map[string]int, len(intSettings))
	for _, s := range intSettings {
		ints[s.key] = intValue(v.GetString(s.key), s.def, s.minimum)
	}
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	return &Config{
		SQLitePath:            str("sqlite_path"),
		StoreURL:              str("ontology_store_url"),
		LLMProvider:           strings.ToLower(str("llm_provider")),
		OpenAIAPIKey:          str("openai_api_key"),
		OpenAIModel:           str("openai_model"),
		LocalBaseURL:          str("local_base_url"),
		LocalAPIKey:           str("local_api_key"),
		LocalModel:            str("local_model"),
		MaxFacts:              ints["max_ontology_facts"],
		MaxRelations:          ints["max_relations"],
		MaxContextChars:       ints["max_context_chars"],
		BudgetMode:            prompt.ParseMode(str("prompt_budget_mode")),
		TokenWarnThreshold:    ints["prompt_token_warn_threshold"],
		TokenizerDir:          str("tokenizer_dir"),
		TokenizerFallback:     str("tokenizer_fallback"),
		MemoryEnabled:         truthy(str("memori_enabled")),
		MemoryRedisAddr:       str("memori_redis_addr"),
		MemoryEmbeddingsModel: str("memori_embeddings_model"),
		EntityID:              str("entity_id"),
		ProcessID:             str("process_id"),
		APIHost:               str("api_host"),
		APIPort:               ints["api_port"],
		LogLevel:              strings.ToUpper(str("log_level")),
		OntologyDir:           str("ontology_dir"),
		File:                  v.ConfigFileUsed(),
	}
}

func intValue(raw string, def, minimum int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return max(n, minimum)
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Store returns the fact store URL: StoreURL when set, else SQLitePath.
func (c *Config) Store() string {
	if c.StoreURL != "" {
		return c.StoreURL
	}
	return c.SQLitePath
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.APIHost, strconv.Itoa(c.APIPort))
}

// Provider returns the model settings.
func (c *Config) Provider() provider.Config {
	return provider.Config{
		Provider:     c.LLMProvider,
		OpenAIAPIKey: c.OpenAIAPIKey,
		OpenAIModel:  c.OpenAIModel,
		LocalBaseURL: c.LocalBaseURL,
		LocalAPIKey:  c.LocalAPIKey,
		LocalModel:   c.LocalModel,
	}
}

// Memory returns the conversation memory settings.
func (c *Config) Memory() memory.Config {
	return memory.Config{
		Enabled:   c.MemoryEnabled,
		RedisAddr: c.MemoryRedisAddr,
		EntityID:  c.EntityID,
		ProcessID: c.ProcessID,
	}
}

// ModelName is the name of the configured model.
func (c *Config) ModelName() string {
	if c.LLMProvider == provider.Local {
		return c.LocalModel
	}
	return c.OpenAIModel
}
