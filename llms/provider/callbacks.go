package provider

import (
	"context"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/ontollm/log"
)

// LogHandler logs generation start, end and errors.
type LogHandler struct {
	callbacks.SimpleHandler
	logger log.Logger
}

var _ callbacks.Handler = (*LogHandler)(nil)

// NewLogHandler returns a handler writing to logger, or to the default
// logger when nil.
func NewLogHandler(logger log.Logger) *LogHandler {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LogHandler{logger: logger}
}

func (h *LogHandler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	h.logger.Debug("llm generate start messages=%d", len(ms))
}

func (h *LogHandler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	if res == nil || len(res.Choices) == 0 {
		h.logger.Debug("llm generate end choices=0")
		return
	}
	c := res.Choices[0]
	h.logger.Debug("llm generate end stop=%s tool_calls=%d chars=%d", c.StopReason, len(c.ToolCalls), len(c.Content))
}

func (h *LogHandler) HandleLLMError(ctx context.Context, err error) {
	h.logger.Error("llm error: %v", err)
}
