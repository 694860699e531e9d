package prebuilt

import (
	"encoding/json"

	"github.com/smallnest/ontollm/prompt"
	"github.com/smallnest/ontollm/retrieval"
)

// Event kinds.
const (
	EventStage  = "stage"
	EventAnswer = "answer"
	EventDone   = "done"
	EventError  = "error"
)

// Stage statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
)

// Stage names.
const (
	StageReceived = "received"
	StageLookup   = "lookup"
	StageCompare  = "compare"
	StageGenerate = "generate"
)

// EmptyQuestionMessage is the fixed reply to a blank question.
const EmptyQuestionMessage = "질문을 입력해주세요."

// previewChars caps prompt and answer previews in stage payloads.
const previewChars = 600

// Event is one progress notification of a chat run.
type Event struct {
	Event   string         `json:"event"`
	Stage   string         `json:"stage,omitempty"`
	Status  string         `json:"status,omitempty"`
	Message string         `json:"message,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Input   any            `json:"input,omitempty"`
	Output  any            `json:"output,omitempty"`
	Answer  string         `json:"answer,omitempty"`
}

// MarshalJSON keeps the answer key on answer events even when empty.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	if e.Event != EventAnswer {
		return json.Marshal(plain(e))
	}
	return json.Marshal(struct {
		plain
		Answer string `json:"answer"`
	}{plain(e), e.Answer})
}

// EventSink receives events in order. It is called on the goroutine
// running the chat.
type EventSink func(Event)

// ReceivedInput is the input of the received stage.
type ReceivedInput struct {
	Question string           `json:"question"`
	MethodID retrieval.Method `json:"method_id"`
}

// ReceivedOutput is the output of the received stage.
type ReceivedOutput struct {
	NormalizedQuestion string           `json:"normalized_question"`
	MethodID           retrieval.Method `json:"method_id"`
}

// LookupInput is the input of the lookup stage.
type LookupInput struct {
	Question    string           `json:"question"`
	LookupLimit int              `json:"lookup_limit"`
	MethodID    retrieval.Method `json:"method_id"`
}

// LookupOutput is the output of the lookup stage.
type LookupOutput struct {
	RawContext        string          `json:"raw_context"`
	LookupDebug       retrieval.Debug `json:"lookup_debug"`
	MethodLookupTrace retrieval.Trace `json:"method_lookup_trace"`
}

// CompareInput is the input of the compare stage.
type CompareInput struct {
	RawContextChars int              `json:"raw_context_chars"`
	BudgetMode      prompt.Mode      `json:"budget_mode"`
	MaxFacts        int              `json:"max_facts"`
	MaxRelations    int              `json:"max_relations"`
	MaxContextChars int              `json:"max_context_chars"`
	MethodID        retrieval.Method `json:"method_id"`
}

// CompareTrace summarizes the evidence the prompt was built from.
type CompareTrace struct {
	MethodID             retrieval.Method `json:"method_id"`
	CandidateCount       int              `json:"candidate_count"`
	HasConstraintHits    bool             `json:"has_constraint_hits"`
	HasGraphRelations    bool             `json:"has_graph_relations"`
	HasReasoningPaths    bool             `json:"has_reasoning_paths"`
	HasEnrichmentTargets bool             `json:"has_enrichment_targets"`
	MemoryAttached       bool             `json:"memori_attached"`
	MemoryStatus         string           `json:"memori_status"`
}

// CompareOutput is the output of the compare stage. PriceHint is null
// when the question is not about a price or nothing is priced.
type CompareOutput struct {
	PriceHint          *string      `json:"price_hint"`
	OntologyContext    string       `json:"ontology_context"`
	UserPromptPreview  string       `json:"user_prompt_preview"`
	MethodCompareTrace CompareTrace `json:"method_compare_trace"`
}

// GenerateInput is the input of the generate stage.
type GenerateInput struct {
	Model          string           `json:"model"`
	PromptPreview  string           `json:"prompt_preview"`
	ToolEnabled    bool             `json:"tool_enabled"`
	MethodID       retrieval.Method `json:"method_id"`
	MemoryAttached bool             `json:"memori_attached"`
	MemoryStatus   string           `json:"memori_status"`
}

// GenerateOutput is the output of the generate stage.
type GenerateOutput struct {
	AnswerPreview string `json:"answer_preview"`
	ToolCalls     bool   `json:"tool_calls"`
}

// stageSpec describes how one graph node is reported.
type stageSpec struct {
	running string
	done    string
	input   func(a *OntologyAgent, run *chatRun) any
	output  func(a *OntologyAgent, run *chatRun) (any, map[string]any)
}

var stages = map[string]stageSpec{
	StageReceived: {
		running: "질문 접수",
		done:    "질문 접수 완료",
		input: func(_ *OntologyAgent, run *chatRun) any {
			return ReceivedInput{Question: run.question, MethodID: retrieval.ParseMethod(run.methodID)}
		},
		output: func(_ *OntologyAgent, run *chatRun) (any, map[string]any) {
			return ReceivedOutput{NormalizedQuestion: run.normalized, MethodID: run.method},
				map[string]any{"question_chars": runeCount(run.normalized)}
		},
	},
	StageLookup: {
		running: "온톨로지 검색 시작",
		done:    "온톨로지 검색 완료",
		input: func(a *OntologyAgent, run *chatRun) any {
			return LookupInput{Question: run.normalized, LookupLimit: a.lookupLimit(), MethodID: run.method}
		},
		output: func(_ *OntologyAgent, run *chatRun) (any, map[string]any) {
			return LookupOutput{
					RawContext:        run.lookup.Context,
					LookupDebug:       run.lookup.Debug,
					MethodLookupTrace: run.lookup.Trace,
				},
				map[string]any{"raw_context_chars": runeCount(run.lookup.Context)}
		},
	},
	StageCompare: {
		running: "비교/컨텍스트 구성 시작",
		done:    "비교/컨텍스트 구성 완료",
		input: func(a *OntologyAgent, run *chatRun) any {
			return CompareInput{
				RawContextChars: runeCount(run.lookup.Context),
				BudgetMode:      a.mode,
				MaxFacts:        a.maxFacts,
				MaxRelations:    a.maxRelations,
				MaxContextChars: a.maxContextChars,
				MethodID:        run.method,
			}
		},
		output: func(a *OntologyAgent, run *chatRun) (any, map[string]any) {
			out := CompareOutput{
				OntologyContext:    run.context,
				UserPromptPreview:  preview(run.prompt),
				MethodCompareTrace: a.compareTrace(run),
			}
			if run.priceHint != "" {
				hint := run.priceHint
				out.PriceHint = &hint
			}
			return out, map[string]any{
				"context_chars": runeCount(run.context),
				"prompt_tokens": run.budget.PromptTokens,
			}
		},
	},
	StageGenerate: {
		running: "결과 생성 시작",
		done:    "결과 생성 완료",
		input: func(a *OntologyAgent, run *chatRun) any {
			return GenerateInput{
				Model:          a.modelName,
				PromptPreview:  preview(run.prompt),
				ToolEnabled:    true,
				MethodID:       run.method,
				MemoryAttached: a.memory.Enabled,
				MemoryStatus:   a.memory.Status,
			}
		},
		output: func(_ *OntologyAgent, run *chatRun) (any, map[string]any) {
			return GenerateOutput{AnswerPreview: preview(run.answer), ToolCalls: len(run.toolCalls) > 0}, nil
		},
	},
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewChars {
		return s
	}
	return string(r[:previewChars])
}

func runeCount(s string) int { return len([]rune(s)) }
