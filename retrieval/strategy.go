package retrieval

import (
	"context"

	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/ontology"
)

// seedCount is the number of top candidates graph strategies expand from.
const seedCount = 5

// Request is the input of a Strategy.
type Request struct {
	Question string
	Limit    int
	Base     *Lookup
}

// Trace is the per-method record of what a strategy found. Counts are
// nil when the method does not produce them.
type Trace struct {
	MethodID                  Method `json:"method_id"`
	RetrievalType             string `json:"retrieval_type,omitempty"`
	ConstraintCount           *int   `json:"constraint_count,omitempty"`
	RelationEvidenceCount     *int   `json:"relation_evidence_count,omitempty"`
	MultiHopPathCount         *int   `json:"multi_hop_path_count,omitempty"`
	VerificationEvidenceCount *int   `json:"verification_evidence_count,omitempty"`
	EnrichmentTargetCount     *int   `json:"enrichment_target_count,omitempty"`
}

func count(n int) *int { return &n }

// DenseCandidate is a dense-proxy hit.
type DenseCandidate struct {
	ID           string   `json:"id"`
	ClassName    string   `json:"class_name"`
	Label        string   `json:"label"`
	Props        string   `json:"props"`
	Score        int      `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
}

// Debug is the base lookup debug extended with each method's evidence.
type Debug struct {
	LookupDebug

	ConstraintHits       []string                `json:"constraint_hits,omitempty"`
	GraphRelations       []string                `json:"graph_relations,omitempty"`
	ReasoningPaths       []string                `json:"reasoning_paths,omitempty"`
	VerificationEvidence []string                `json:"verification_evidence,omitempty"`
	Tokens               []string                `json:"tokens,omitempty"`
	ScoredCandidates     []DenseCandidate        `json:"scored_candidates,omitempty"`
	EnrichmentTargets    []ontology.MissingValue `json:"enrichment_targets,omitempty"`
}

// Result is the output of a Strategy.
type Result struct {
	Context string `json:"context"`
	Debug   Debug  `json:"debug"`
	Trace   Trace  `json:"trace"`
}

// Strategy builds a method's context on top of the base lookup.
type Strategy interface {
	Retrieve(ctx context.Context, req Request) (*Result, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, req Request) (*Result, error)

// Retrieve calls f.
func (f StrategyFunc) Retrieve(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Dispatcher runs the base lookup and applies the strategy registered
// for a method.
type Dispatcher struct {
	store      ontology.Store
	strategies map[Method]Strategy
	logger     log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger log.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithStrategy overrides the strategy of one method.
func WithStrategy(m Method, s Strategy) DispatcherOption {
	return func(d *Dispatcher) { d.strategies[m] = s }
}

// NewDispatcher registers the eight built-in strategies over store.
func NewDispatcher(store ontology.Store, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: log.GetDefaultLogger(),
		strategies: map[Method]Strategy{
			Method1: lexical{},
			Method2: policy{store: store},
			Method3: relationEvidence{store: store, method: Method3, minCap: 6, perLimit: 2},
			Method4: multiHop{store: store},
			Method5: dense{store: store},
			Method6: neuroSymbolic{store: store},
			Method7: relationEvidence{store: store, method: Method7, minCap: 4, perLimit: 1},
			Method8: enrichment{store: store},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store returns the fact store the dispatcher reads.
func (d *Dispatcher) Store() ontology.Store {
	return d.store
}

// Retrieve runs the base lookup for question and applies method's
// strategy. Unknown methods use the Method1 strategy.
func (d *Dispatcher) Retrieve(ctx context.Context, method Method, question string, limit int) (*Result, error) {
	base, err := BaseLookup(ctx, d.store, question, limit)
	if err != nil {
		return nil, err
	}

	strategy, ok := d.strategies[method]
	if !ok {
		method = DefaultMethod
		strategy = d.strategies[DefaultMethod]
	}
	res, err := strategy.Retrieve(ctx, Request{Question: question, Limit: limit, Base: base})
	if err != nil {
		return nil, err
	}
	res.Trace.MethodID = method
	d.logger.Debug("retrieval method=%s facts=%d candidates=%d", method, len(base.Facts), len(base.Debug.Candidates))
	return res, nil
}
