package prebuilt

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/ontollm/graph"
	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/prompt"
	"github.com/smallnest/ontollm/retrieval"
	"github.com/smallnest/ontollm/tool"
)

// Defaults of an OntologyAgent.
const (
	DefaultMaxFacts        = 5
	DefaultMaxRelations    = 3
	DefaultMaxContextChars = 1200
	DefaultRecallTurns     = 3
	DefaultTemperature     = 0.2
)

var (
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("empty question")

	// ErrNoChoices is returned when the model answers without choices.
	ErrNoChoices = errors.New("model returned no choices")
)

// ToolCallRecord is one tool call answered during generation.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
}

// ChatResult is the outcome of one question.
type ChatResult struct {
	Answer    string           `json:"answer"`
	Method    retrieval.Method `json:"method_id"`
	Question  string           `json:"question"`
	Context   string           `json:"ontology_context"`
	Prompt    string           `json:"prompt"`
	Budget    prompt.Budget    `json:"budget"`
	Trace     retrieval.Trace  `json:"trace"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// Prepared is the prompt of a question before generation.
type Prepared struct {
	Method    retrieval.Method `json:"method_id"`
	Question  string           `json:"question"`
	Context   string           `json:"ontology_context"`
	PriceHint string           `json:"price_hint,omitempty"`
	Prompt    string           `json:"prompt"`
	Budget    prompt.Budget    `json:"budget"`
	Trace     retrieval.Trace  `json:"trace"`
	Debug     retrieval.Debug  `json:"debug"`
}

// chatRun is the graph state of one question.
type chatRun struct {
	sink     EventSink
	question string
	methodID string

	normalized string
	method     retrieval.Method
	lookup     *retrieval.Result
	context    string
	priceHint  string
	prompt     string
	budget     prompt.Budget
	answer     string
	toolCalls  []ToolCallRecord
}

func (r *chatRun) emit(ev Event) {
	if r.sink != nil {
		r.sink(ev)
	}
}

// OntologyAgent answers questions from an ontology fact store. It is
// safe for concurrent use.
type OntologyAgent struct {
	model      llms.Model
	modelName  string
	store      ontology.Store
	dispatcher *retrieval.Dispatcher
	estimator  *prompt.Estimator
	executor   *tool.Executor
	memory     memory.Attachment
	logger     log.Logger

	maxFacts        int
	maxRelations    int
	maxContextChars int
	mode            prompt.Mode
	temperature     float64
	recallTurns     int

	chat    *graph.StateRunnable[*chatRun]
	prepare *graph.StateRunnable[*chatRun]
}

// Option configures an OntologyAgent.
type Option func(*OntologyAgent)

// WithModelName sets the model name reported in events.
func WithModelName(name string) Option {
	return func(a *OntologyAgent) { a.modelName = name }
}

// WithLimits sets the compression caps. Facts and characters below 1
// and relations below 0 are clamped.
func WithLimits(maxFacts, maxRelations, maxContextChars int) Option {
	return func(a *OntologyAgent) {
		a.maxFacts = max(maxFacts, 1)
		a.maxRelations = max(maxRelations, 0)
		a.maxContextChars = max(maxContextChars, 1)
	}
}

// WithBudgetMode sets the compression mode.
func WithBudgetMode(mode prompt.Mode) Option {
	return func(a *OntologyAgent) { a.mode = mode }
}

// WithEstimator sets the prompt budget estimator.
func WithEstimator(e *prompt.Estimator) Option {
	return func(a *OntologyAgent) { a.estimator = e }
}

// WithDispatcher sets the retrieval dispatcher.
func WithDispatcher(d *retrieval.Dispatcher) Option {
	return func(a *OntologyAgent) { a.dispatcher = d }
}

// WithExecutor sets the tools offered to the model.
func WithExecutor(e *tool.Executor) Option {
	return func(a *OntologyAgent) { a.executor = e }
}

// WithMemory attaches conversation memory.
func WithMemory(att memory.Attachment) Option {
	return func(a *OntologyAgent) { a.memory = att }
}

// WithRecallTurns sets how many past turns are recalled.
func WithRecallTurns(n int) Option {
	return func(a *OntologyAgent) { a.recallTurns = n }
}

// WithTemperature sets the sampling temperature of both completions.
func WithTemperature(t float64) Option {
	return func(a *OntologyAgent) { a.temperature = t }
}

// WithLogger sets the agent logger.
func WithLogger(logger log.Logger) Option {
	return func(a *OntologyAgent) { a.logger = logger }
}

// NewOntologyAgent builds an agent answering with model from store.
func NewOntologyAgent(model llms.Model, store ontology.Store, opts ...Option) (*OntologyAgent, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	a := &OntologyAgent{
		model:           model,
		store:           store,
		memory:          memory.Disabled(),
		logger:          log.GetDefaultLogger(),
		maxFacts:        DefaultMaxFacts,
		maxRelations:    DefaultMaxRelations,
		maxContextChars: DefaultMaxContextChars,
		mode:            prompt.ModeBalanced,
		temperature:     DefaultTemperature,
		recallTurns:     DefaultRecallTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.dispatcher == nil {
		a.dispatcher = retrieval.NewDispatcher(store, retrieval.WithLogger(a.logger))
	}
	if a.estimator == nil {
		a.estimator = prompt.NewEstimator("", prompt.WithEstimatorLogger(a.logger))
	}
	if a.executor == nil {
		a.executor = tool.NewExecutor(tool.NewTodayDate())
	}

	var err error
	if a.chat, err = a.compile(true); err != nil {
		return nil, err
	}
	if a.prepare, err = a.compile(false); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *OntologyAgent) compile(generate bool) (*graph.StateRunnable[*chatRun], error) {
	g := graph.NewStateGraph[*chatRun]()
	g.AddNode(StageReceived, "normalize the question and resolve the method", a.received)
	g.AddNode(StageLookup, "retrieve ontology context", a.lookupNode)
	g.AddNode(StageCompare, "compress context and build the prompt", a.compare)
	g.AddEdge(StageReceived, StageLookup)
	g.AddEdge(StageLookup, StageCompare)
	if generate {
		g.AddNode(StageGenerate, "generate the answer", a.generate)
		g.AddEdge(StageCompare, StageGenerate)
		g.AddEdge(StageGenerate, graph.END)
	} else {
		g.AddEdge(StageCompare, graph.END)
	}
	g.SetEntryPoint(StageReceived)
	g.AddListener(graph.NodeListenerFunc[*chatRun](a.onNodeEvent))
	return g.Compile()
}

// onNodeEvent turns node lifecycle events into stage events.
func (a *OntologyAgent) onNodeEvent(_ context.Context, event graph.NodeEvent, node string, run *chatRun, _ error) {
	spec, ok := stages[node]
	if !ok {
		return
	}
	switch event {
	case graph.NodeEventStart:
		run.emit(Event{
			Event:   EventStage,
			Stage:   node,
			Status:  StatusRunning,
			Message: spec.running,
			Input:   spec.input(a, run),
		})
	case graph.NodeEventComplete:
		out, meta := spec.output(a, run)
		run.emit(Event{
			Event:   EventStage,
			Stage:   node,
			Status:  StatusDone,
			Message: spec.done,
			Meta:    meta,
			Output:  out,
		})
	}
}

// ModelName returns the model name reported in events.
func (a *OntologyAgent) ModelName() string { return a.modelName }

// Memory returns the memory attachment.
func (a *OntologyAgent) Memory() memory.Attachment { return a.memory }

// Run answers question with the method named by methodID, reporting
// stage events to sink. Unknown methods use method1.
func (a *OntologyAgent) Run(ctx context.Context, question, methodID string, sink EventSink) (*ChatResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	run, err := a.chat.Invoke(ctx, &chatRun{sink: sink, question: question, methodID: methodID})
	if err != nil {
		return nil, err
	}
	return &ChatResult{
		Answer:    run.answer,
		Method:    run.method,
		Question:  run.normalized,
		Context:   run.context,
		Prompt:    run.prompt,
		Budget:    run.budget,
		Trace:     run.lookup.Trace,
		ToolCalls: run.toolCalls,
	}, nil
}

// Ask answers question without reporting events.
func (a *OntologyAgent) Ask(ctx context.Context, question, methodID string) (string, error) {
	res, err := a.Run(ctx, question, methodID, nil)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Prepare runs every stage but generation and returns the prompt the
// model would receive.
func (a *OntologyAgent) Prepare(ctx context.Context, question, methodID string) (*Prepared, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	run, err := a.prepare.Invoke(ctx, &chatRun{question: question, methodID: methodID})
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Method:    run.method,
		Question:  run.normalized,
		Context:   run.context,
		PriceHint: run.priceHint,
		Prompt:    run.prompt,
		Budget:    run.budget,
		Trace:     run.lookup.Trace,
		Debug:     run.lookup.Debug,
	}, nil
}

func (a *OntologyAgent) lookupLimit() int {
	return max(a.maxFacts*3, a.maxFacts)
}

func (a *OntologyAgent) compareTrace(run *chatRun) CompareTrace {
	d := run.lookup.Debug
	return CompareTrace{
		MethodID:             run.method,
		CandidateCount:       len(d.Candidates),
		HasConstraintHits:    len(d.ConstraintHits) > 0,
		HasGraphRelations:    len(d.GraphRelations) > 0,
		HasReasoningPaths:    len(d.ReasoningPaths) > 0,
		HasEnrichmentTargets: len(d.EnrichmentTargets) > 0,
		MemoryAttached:       a.memory.Enabled,
		MemoryStatus:         a.memory.Status,
	}
}
