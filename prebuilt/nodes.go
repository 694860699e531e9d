package prebuilt

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/prompt"
	"github.com/smallnest/ontollm/retrieval"
)

func (a *OntologyAgent) received(_ context.Context, run *chatRun) (*chatRun, error) {
	run.normalized = strings.TrimSpace(run.question)
	if run.normalized == "" {
		return nil, ErrEmptyQuestion
	}
	run.method = retrieval.ParseMethod(run.methodID)
	return run, nil
}

func (a *OntologyAgent) lookupNode(ctx context.Context, run *chatRun) (*chatRun, error) {
	res, err := a.dispatcher.Retrieve(ctx, run.method, run.normalized, a.lookupLimit())
	if err != nil {
		return nil, err
	}
	run.lookup = res
	return run, nil
}

func (a *OntologyAgent) compare(ctx context.Context, run *chatRun) (*chatRun, error) {
	run.context = prompt.Compress(prompt.CompressInput{
		Question:     run.normalized,
		Context:      run.lookup.Context,
		MaxFacts:     a.maxFacts,
		MaxRelations: a.maxRelations,
		MaxChars:     a.maxContextChars,
		Mode:         a.mode,
	})

	if retrieval.IsPriceQuestion(run.normalized) {
		hint, err := retrieval.PriceHint(ctx, a.store, run.normalized)
		if err != nil {
			return nil, err
		}
		run.priceHint = hint
	}

	run.prompt = prompt.BuildUserPrompt(prompt.UserPromptInput{
		Method:       run.method,
		PriorityFact: run.priceHint,
		Context:      run.context,
		Question:     run.normalized,
	})
	run.budget = a.estimator.Estimate(run.normalized, run.context, run.prompt)
	a.estimator.Log(run.budget)
	return run, nil
}

func (a *OntologyAgent) generate(ctx context.Context, run *chatRun) (*chatRun, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.SystemPrompt(run.method)),
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.DateToolHint),
	}
	if recall := a.recall(ctx); recall != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, recall))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, run.prompt))

	resp, err := a.model.GenerateContent(ctx, messages,
		llms.WithTools(a.executor.Definitions()),
		llms.WithToolChoice("auto"),
		llms.WithTemperature(a.temperature),
	)
	if err != nil {
		return nil, errors.Wrap(err, "generate answer")
	}
	choice, err := firstChoice(resp)
	if err != nil {
		return nil, err
	}

	if len(choice.ToolCalls) > 0 {
		messages = append(messages, assistantToolMessage(choice))
		for _, tc := range choice.ToolCalls {
			out := a.executor.Execute(ctx, tc)
			a.logger.Debug("tool call %s args=%s result=%s", out.Name, argumentsOf(tc), out.Content)
			run.toolCalls = append(run.toolCalls, ToolCallRecord{
				ID:        tc.ID,
				Name:      out.Name,
				Arguments: argumentsOf(tc),
				Result:    out.Content,
			})
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{out},
			})
		}

		resp, err = a.model.GenerateContent(ctx, messages, llms.WithTemperature(a.temperature))
		if err != nil {
			return nil, errors.Wrap(err, "generate follow-up answer")
		}
		if choice, err = firstChoice(resp); err != nil {
			return nil, err
		}
	}

	run.answer = choice.Content
	if err := a.memory.Record(ctx, string(run.method), run.normalized, run.answer); err != nil {
		a.logger.Warn("memory record failed: %v", err)
	}
	return run, nil
}

// recall renders the attached conversation. Failures only cost the
// recalled context.
func (a *OntologyAgent) recall(ctx context.Context) string {
	if !a.memory.Enabled || a.recallTurns <= 0 {
		return ""
	}
	turns, err := a.memory.Recall(ctx, a.recallTurns)
	if err != nil {
		a.logger.Warn("memory recall failed: %v", err)
		return ""
	}
	return memory.FormatRecall(turns)
}

func firstChoice(resp *llms.ContentResponse) (*llms.ContentChoice, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, ErrNoChoices
	}
	return resp.Choices[0], nil
}

func assistantToolMessage(choice *llms.ContentChoice) llms.MessageContent {
	msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		msg.Parts = append(msg.Parts, tc)
	}
	return msg
}

func argumentsOf(tc llms.ToolCall) string {
	if tc.FunctionCall == nil {
		return ""
	}
	return tc.FunctionCall.Arguments
}
