package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/config"
	"github.com/smallnest/ontollm/llms/provider"
	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/prompt"
	"github.com/smallnest/ontollm/store"
)

// app is the state shared by every command.
type app struct {
	configPath string
	storeURL   string
	cfg        *config.Config
	logger     log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ontollm",
		Short: "Ontology-grounded question answering",
		Long: `ontollm answers questions from an ontology fact store with one of eight
retrieval methods, compresses the retrieved context to a token budget and
asks a language model.

Configuration comes from ontollm.toml or ontollm.yaml in the working
directory, --config, and environment variables such as SQLITE_PATH,
LLM_PROVIDER, OPENAI_API_KEY and MAX_ONTOLOGY_FACTS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./ontollm.{toml,yaml})")
	root.PersistentFlags().StringVar(&a.storeURL, "store", "", "fact store: a SQLite path, sqlite://, postgres:// or memory:// (default $ONTOLOGY_STORE_URL or $SQLITE_PATH)")

	root.AddCommand(
		newInitDBCmd(a),
		newIngestCmd(a),
		newChatCmd(a),
		newExpCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storeURL != "" {
		cfg.StoreURL = a.storeURL
	}
	a.cfg = cfg
	logger := log.NewLogger(log.ParseLevel(cfg.LogLevel))
	log.SetDefaultLogger(logger)
	a.logger = logger
	return nil
}

// openStore opens the configured store, creating the directory of a
// SQLite file first.
func (a *app) openStore(ctx context.Context) (ontology.Store, error) {
	url := a.cfg.Store()
	if path, ok := sqlitePath(url); ok && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create directory for %s", path)
		}
	}
	s, err := store.Open(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", url)
	}
	return s, nil
}

func sqlitePath(url string) (string, bool) {
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		return rest, true
	}
	if strings.Contains(url, "://") {
		return "", false
	}
	return url, url != ""
}

// newAgent builds the model, the memory attachment and the agent. The
// returned func releases the memory backend.
func (a *app) newAgent(ctx context.Context, s ontology.Store) (*prebuilt.OntologyAgent, func(), error) {
	pc := a.cfg.Provider()
	pc.Callbacks = provider.NewLogHandler(a.logger)
	model, err := provider.New(pc)
	if err != nil {
		return nil, nil, err
	}

	att := memory.Attach(ctx, a.cfg.Memory())
	if strings.HasPrefix(att.Status, "error:") {
		a.logger.Warn("conversation memory unavailable: %s", att.Status)
	}

	estimator := prompt.NewEstimator(a.cfg.MemoryEmbeddingsModel,
		prompt.WithThreshold(a.cfg.TokenWarnThreshold),
		prompt.WithTokenizerDir(a.cfg.TokenizerDir),
		prompt.WithFallbackEncoding(a.cfg.TokenizerFallback),
		prompt.WithEstimatorLogger(a.logger),
	)
	release := func() {
		if att.Store != nil {
			_ = att.Store.Close()
		}
	}
	agent, err := prebuilt.NewOntologyAgent(model, s,
		prebuilt.WithModelName(model.Name),
		prebuilt.WithLimits(a.cfg.MaxFacts, a.cfg.MaxRelations, a.cfg.MaxContextChars),
		prebuilt.WithBudgetMode(a.cfg.BudgetMode),
		prebuilt.WithEstimator(estimator),
		prebuilt.WithMemory(att),
		prebuilt.WithLogger(a.logger),
	)
	if err != nil {
		release()
		return nil, nil, err
	}
	return agent, release, nil
}
