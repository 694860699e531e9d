package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/llms/provider"
	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/prompt"
)

// isolate runs the test in an empty directory with every setting unset.
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Chdir(dir)
	for key := range stringDefaults {
		t.Setenv(strings.ToUpper(key), "")
	}
	for _, s := range intSettings {
		t.Setenv(strings.ToUpper(s.key), "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		SQLitePath:            "./data/ontology_memori.db",
		LLMProvider:           provider.OpenAI,
		OpenAIModel:           "gpt-4o-mini",
		LocalBaseURL:          "http://localhost:11434/v1",
		LocalAPIKey:           "local",
		LocalModel:            "qwen2.5:3b",
		MaxFacts:              5,
		MaxRelations:          3,
		MaxContextChars:       1200,
		BudgetMode:            prompt.ModeBalanced,
		TokenWarnThreshold:    220,
		TokenizerFallback:     "cl100k_base",
		MemoryEmbeddingsModel: "all-MiniLM-L6-v2",
		EntityID:              "user-001",
		ProcessID:             "ontology-agent",
		APIHost:               "0.0.0.0",
		APIPort:               8000,
		LogLevel:              "INFO",
		OntologyDir:           "data/ontologies",
	}, cfg)
	assert.Equal(t, "./data/ontology_memori.db", cfg.Store())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("ONTOLOGY_STORE_URL", "memory://")
	t.Setenv("LLM_PROVIDER", "LOCAL")
	t.Setenv("LOCAL_MODEL", "llama3")
	t.Setenv("PROMPT_BUDGET_MODE", " Strict ")
	t.Setenv("MEMORI_ENABLED", "yes")
	t.Setenv("MEMORI_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("ENTITY_ID", "user-9")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOKENIZER_FALLBACK", "o200k_base")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory://", cfg.Store())
	assert.Equal(t, "o200k_base", cfg.TokenizerFallback)
	assert.Equal(t, prompt.ModeStrict, cfg.BudgetMode)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "llama3", cfg.ModelName())
	assert.Equal(t, provider.Config{
		Provider:     provider.Local,
		OpenAIModel:  "gpt-4o-mini",
		LocalBaseURL: "http://localhost:11434/v1",
		LocalAPIKey:  "local",
		LocalModel:   "llama3",
	}, cfg.Provider())
	assert.Equal(t, memory.Config{
		Enabled:   true,
		RedisAddr: "127.0.0.1:6379",
		EntityID:  "user-9",
		ProcessID: "ontology-agent",
	}, cfg.Memory())
}

func TestIntegerFallbackAndClamp(t *testing.T) {
	isolate(t)
	t.Setenv("MAX_ONTOLOGY_FACTS", "many")
	t.Setenv("MAX_RELATIONS", "-4")
	t.Setenv("MAX_CONTEXT_CHARS", "0")
	t.Setenv("PROMPT_TOKEN_WARN_THRESHOLD", " 300 ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxFacts)
	assert.Equal(t, 0, cfg.MaxRelations)
	assert.Equal(t, 1, cfg.MaxContextChars)
	assert.Equal(t, 300, cfg.TokenWarnThreshold)
}

func TestMemoryEnabledValues(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "TRUE": true, "on": true, "0": false, "no": false, "maybe": false} {
		assert.Equal(t, want, truthy(raw), raw)
	}
}

func TestLoadFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ontollm.toml"),
		[]byte("max_ontology_facts = 8\nprompt_budget_mode = \"strict\"\nontology_dir = \"onto\"\n"), 0o644))
	t.Setenv("MAX_ONTOLOGY_FACTS", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxFacts, "environment overrides the file")
	assert.Equal(t, prompt.ModeStrict, cfg.BudgetMode)
	assert.Equal(t, "onto", cfg.OntologyDir)
	assert.Equal(t, "ontollm.toml", filepath.Base(cfg.File))
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(isolate(t), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_port: 7000\nmemori_enabled: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.APIPort)
	assert.True(t, cfg.MemoryEnabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
