package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type echoTool struct {
	err error
}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echo the input" }

func (e echoTool) Call(ctx context.Context, input string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "echo:" + input, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 23, 59, 0, 0, time.Local)
}

func TestTodayDate(t *testing.T) {
	td := NewTodayDate(WithClock(fixedClock))
	out, err := td.Call(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, `{"today":"2026-10-14"}`, out)

	def := td.Definition()
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, TodayDateName, def.Function.Name)
	assert.Contains(t, def.Function.Description, "바나나우유")
}

func TestExecutorDefinitions(t *testing.T) {
	e := NewExecutor(NewTodayDate(), echoTool{})
	defs := e.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, TodayDateName, defs[0].Function.Name)
	assert.Equal(t, "echo", defs[1].Function.Name)

	params := defs[1].Function.Parameters.(map[string]any)
	assert.Equal(t, []string{"input"}, params["required"])
}

func TestExecutorExecute(t *testing.T) {
	ctx := context.Background()
	e := NewExecutor(NewTodayDate(WithClock(fixedClock)), echoTool{})

	call := func(id, name, args string) llms.ToolCall {
		return llms.ToolCall{ID: id, Type: "function", FunctionCall: &llms.FunctionCall{Name: name, Arguments: args}}
	}

	resp := e.Execute(ctx, call("c1", TodayDateName, "{}"))
	assert.Equal(t, llms.ToolCallResponse{ToolCallID: "c1", Name: TodayDateName, Content: `{"today":"2026-10-14"}`}, resp)

	resp = e.Execute(ctx, call("c2", "echo", `{"input":"hi"}`))
	assert.Equal(t, "echo:hi", resp.Content)

	resp = e.Execute(ctx, call("c3", "echo", "raw"))
	assert.Equal(t, "echo:raw", resp.Content)

	resp = e.Execute(ctx, call("c4", "get_weather", "{}"))
	assert.Equal(t, `{"error":"Unknown function: get_weather"}`, resp.Content)
	assert.Equal(t, "c4", resp.ToolCallID)

	resp = e.Execute(ctx, llms.ToolCall{ID: "c5"})
	assert.Equal(t, `{"error":"Unknown function: "}`, resp.Content)
}

func TestExecutorReportsToolFailure(t *testing.T) {
	e := NewExecutor(echoTool{err: errors.New("backend down")})
	resp := e.Execute(context.Background(), llms.ToolCall{ID: "x", FunctionCall: &llms.FunctionCall{Name: "echo"}})
	assert.Equal(t, `{"error":"backend down"}`, resp.Content)
}
