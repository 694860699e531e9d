package prompt

import (
	"sync"
	"unicode/utf8"

	"github.com/smallnest/ontollm/log"
)

const (
	// DefaultTokenWarnThreshold is the token count above which a budget
	// is reported as exceeded.
	DefaultTokenWarnThreshold = 220
	// DefaultEmbeddingModel names the tokenizer used for budgets.
	DefaultEmbeddingModel = "all-MiniLM-L6-v2"
	// DefaultFallbackEncoding is tried when the embedding model is not a
	// tiktoken model or encoding.
	DefaultFallbackEncoding = "cl100k_base"
)

// Budget is the size report of one prompt. Character counts are runes.
type Budget struct {
	EmbeddingModel     string `json:"embedding_model"`
	TokenSource        string `json:"token_source"`
	TokenWarnThreshold int    `json:"token_warn_threshold"`
	QuestionChars      int    `json:"question_chars"`
	ContextChars       int    `json:"ontology_context_chars"`
	PromptChars        int    `json:"user_prompt_chars"`
	QuestionTokens     int    `json:"question_tokens"`
	ContextTokens      int    `json:"ontology_context_tokens"`
	PromptTokens       int    `json:"user_prompt_tokens"`
	RecallQueryChars   int    `json:"memori_recall_query_chars_proxy"`
	RecallQueryTokens  int    `json:"memori_recall_query_tokens_proxy"`
}

// Exceeded reports whether any token count is above the threshold.
func (b Budget) Exceeded() bool {
	t := b.TokenWarnThreshold
	return b.QuestionTokens > t || b.ContextTokens > t || b.PromptTokens > t
}

// Estimator measures prompts. It is safe for concurrent use.
type Estimator struct {
	model        string
	threshold    int
	tokenizerDir string
	fallback     string
	logger       log.Logger

	once      sync.Once
	tokenizer Tokenizer
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithThreshold sets the warning threshold; values below 1 are ignored.
func WithThreshold(n int) EstimatorOption {
	return func(e *Estimator) {
		if n >= 1 {
			e.threshold = n
		}
	}
}

// WithTokenizer fixes the tokenizer instead of loading one for the model.
func WithTokenizer(t Tokenizer) EstimatorOption {
	return func(e *Estimator) { e.tokenizer = t }
}

// WithTokenizerDir sets the directory holding local tiktoken ranks.
func WithTokenizerDir(dir string) EstimatorOption {
	return func(e *Estimator) { e.tokenizerDir = dir }
}

// WithFallbackEncoding sets the tiktoken encoding tried when the model
// itself cannot be loaded. An empty name disables it.
func WithFallbackEncoding(name string) EstimatorOption {
	return func(e *Estimator) { e.fallback = name }
}

// WithEstimatorLogger sets the logger used by Log.
func WithEstimatorLogger(l log.Logger) EstimatorOption {
	return func(e *Estimator) { e.logger = l }
}

// NewEstimator returns an estimator for model, DefaultEmbeddingModel when
// empty. The tokenizer is loaded on first use.
func NewEstimator(model string, opts ...EstimatorOption) *Estimator {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	e := &Estimator{
		model:     model,
		threshold: DefaultTokenWarnThreshold,
		fallback:  DefaultFallbackEncoding,
		logger:    log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tokenizer returns the tokenizer in use.
func (e *Estimator) Tokenizer() Tokenizer {
	e.once.Do(func() {
		if e.tokenizer == nil {
			e.tokenizer = LoadTokenizer(e.model, e.tokenizerDir, e.fallback)
		}
	})
	return e.tokenizer
}

// Estimate measures the question, the context and the full prompt.
func (e *Estimator) Estimate(question, context, prompt string) Budget {
	tok := e.Tokenizer()
	promptTokens := tok.Count(prompt)
	return Budget{
		EmbeddingModel:     e.model,
		TokenSource:        tok.Source(),
		TokenWarnThreshold: e.threshold,
		QuestionChars:      utf8.RuneCountInString(question),
		ContextChars:       utf8.RuneCountInString(context),
		PromptChars:        utf8.RuneCountInString(prompt),
		QuestionTokens:     tok.Count(question),
		ContextTokens:      tok.Count(context),
		PromptTokens:       promptTokens,
		RecallQueryChars:   utf8.RuneCountInString(prompt),
		RecallQueryTokens:  promptTokens,
	}
}

// Log writes b at info level and warns when it is exceeded.
func (e *Estimator) Log(b Budget) {
	e.logger.Info("PromptBudget model=%s source=%s chars(q=%d ctx=%d prompt=%d) tokens(q=%d ctx=%d prompt=%d) threshold=%d",
		b.EmbeddingModel, b.TokenSource,
		b.QuestionChars, b.ContextChars, b.PromptChars,
		b.QuestionTokens, b.ContextTokens, b.PromptTokens,
		b.TokenWarnThreshold)
	if b.Exceeded() {
		e.logger.Warn("Token budget exceeded (threshold=%d): question=%d, context=%d, prompt=%d",
			b.TokenWarnThreshold, b.QuestionTokens, b.ContextTokens, b.PromptTokens)
	}
}
