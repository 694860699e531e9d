package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/retrieval"
)

// Name is the implementation name reported to clients.
const Name = "ontollm"

// Agent answers and prepares questions. *prebuilt.OntologyAgent
// implements it.
type Agent interface {
	Ask(ctx context.Context, question, methodID string) (string, error)
	Prepare(ctx context.Context, question, methodID string) (*prebuilt.Prepared, error)
}

var _ Agent = (*prebuilt.OntologyAgent)(nil)

// QuestionInput is the argument of ask_ontology and lookup_context.
type QuestionInput struct {
	Question string `json:"question" jsonschema:"The user question, in any language"`
	MethodID string `json:"method_id,omitempty" jsonschema:"Retrieval method method1..method8; defaults to method1"`
}

type tools struct {
	agent  Agent
	logger log.Logger
}

type config struct {
	version string
	logger  log.Logger
}

// Option configures NewServer.
type Option func(*config)

// WithVersion sets the implementation version.
func WithVersion(v string) Option {
	return func(c *config) { c.version = v }
}

// WithLogger sets the logger used for tool failures.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// NewServer returns an MCP server exposing agent.
func NewServer(agent Agent, opts ...Option) *sdk.Server {
	cfg := config{version: "dev", logger: log.GetDefaultLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &tools{agent: agent, logger: cfg.logger}

	srv := sdk.NewServer(&sdk.Implementation{Name: Name, Version: cfg.version}, nil)
	sdk.AddTool(srv, &sdk.Tool{
		Name:        "ask_ontology",
		Description: "Answer a question grounded on the ontology fact store using one retrieval method",
	}, t.ask)
	sdk.AddTool(srv, &sdk.Tool{
		Name:        "lookup_context",
		Description: "Return the ontology context, price hint, prompt and token budget a method would use, without calling the model",
	}, t.lookup)
	sdk.AddTool(srv, &sdk.Tool{
		Name:        "list_methods",
		Description: "List the eight retrieval methods with their ontology files and sample questions",
	}, t.listMethods)
	return srv
}

func (t *tools) ask(ctx context.Context, _ *sdk.CallToolRequest, in QuestionInput) (*sdk.CallToolResult, any, error) {
	if in.Question == "" {
		return toolError("%s", prebuilt.EmptyQuestionMessage), nil, nil
	}
	answer, err := t.agent.Ask(ctx, in.Question, in.MethodID)
	if err != nil {
		t.logger.Error("mcp ask_ontology failed: %v", err)
		return toolError("ask failed: %s", prebuilt.ErrorMessage(err)), nil, nil
	}
	return toolText(answer), nil, nil
}

func (t *tools) lookup(ctx context.Context, _ *sdk.CallToolRequest, in QuestionInput) (*sdk.CallToolResult, any, error) {
	if in.Question == "" {
		return toolError("%s", prebuilt.EmptyQuestionMessage), nil, nil
	}
	p, err := t.agent.Prepare(ctx, in.Question, in.MethodID)
	if err != nil {
		t.logger.Error("mcp lookup_context failed: %v", err)
		return toolError("lookup failed: %s", prebuilt.ErrorMessage(err)), nil, nil
	}
	return toolJSON(p)
}

func (t *tools) listMethods(context.Context, *sdk.CallToolRequest, struct{}) (*sdk.CallToolResult, any, error) {
	return toolJSON(retrieval.Catalog)
}

func toolText(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: text}}}
}

func toolError(format string, args ...any) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*sdk.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("marshal result: %v", err), nil, nil
	}
	return toolText(string(data)), nil, nil
}
