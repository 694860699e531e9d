package tool

import (
	"context"
	"encoding/json"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Definer is implemented by tools that declare their own schema.
type Definer interface {
	Definition() llms.Tool
}

// Executor dispatches model tool calls to tools by name.
type Executor struct {
	order []string
	tools map[string]tools.Tool
}

// NewExecutor registers ts; a later tool replaces an earlier one with the
// same name.
func NewExecutor(ts ...tools.Tool) *Executor {
	e := &Executor{tools: make(map[string]tools.Tool, len(ts))}
	for _, t := range ts {
		if _, ok := e.tools[t.Name()]; !ok {
			e.order = append(e.order, t.Name())
		}
		e.tools[t.Name()] = t
	}
	return e
}

// Definitions returns the tool declarations in registration order.
func (e *Executor) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(e.order))
	for _, name := range e.order {
		t := e.tools[name]
		if d, ok := t.(Definer); ok {
			defs = append(defs, d.Definition())
			continue
		}
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "The input query for the tool",
						},
					},
					"required":             []string{"input"},
					"additionalProperties": false,
				},
			},
		})
	}
	return defs
}

// Execute runs the tool named by tc. Unknown names and tool failures are
// reported in the response content as {"error": "..."}; Execute itself
// never fails.
func (e *Executor) Execute(ctx context.Context, tc llms.ToolCall) llms.ToolCallResponse {
	name := ""
	args := ""
	if tc.FunctionCall != nil {
		name = tc.FunctionCall.Name
		args = tc.FunctionCall.Arguments
	}
	resp := llms.ToolCallResponse{ToolCallID: tc.ID, Name: name}

	t, ok := e.tools[name]
	if !ok {
		resp.Content = errorPayload("Unknown function: " + name)
		return resp
	}

	input := args
	var parsed map[string]any
	if json.Unmarshal([]byte(args), &parsed) == nil {
		if v, ok := parsed["input"].(string); ok {
			input = v
		}
	}
	out, err := t.Call(ctx, input)
	if err != nil {
		resp.Content = errorPayload(err.Error())
		return resp
	}
	resp.Content = out
	return resp
}

func errorPayload(msg string) string {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}
