package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// TodayDateName is the function name the model calls.
const TodayDateName = "get_today_date"

// TodayDate returns the current local date as {"today": "YYYY-MM-DD"}.
type TodayDate struct {
	now func() time.Time
}

var (
	_ tools.Tool = (*TodayDate)(nil)
	_ Definer    = (*TodayDate)(nil)
)

// TodayDateOption configures TodayDate.
type TodayDateOption func(*TodayDate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TodayDateOption {
	return func(t *TodayDate) { t.now = now }
}

// NewTodayDate returns the date tool.
func NewTodayDate(opts ...TodayDateOption) *TodayDate {
	t := &TodayDate{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TodayDate) Name() string { return TodayDateName }

func (t *TodayDate) Description() string {
	return "Return today's date. Use when user asks about 바나나우유 (or 빠나 우유)."
}

// Call ignores its input.
func (t *TodayDate) Call(ctx context.Context, input string) (string, error) {
	out, err := json.Marshal(map[string]string{"today": t.now().Format(time.DateOnly)})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Definition declares a function without parameters.
func (t *TodayDate) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		},
	}
}
