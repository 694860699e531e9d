package prompt

import (
	"strings"

	"github.com/smallnest/ontollm/retrieval"
)

// GlobalGuard is appended to every method system prompt.
const GlobalGuard = "Use only the provided ontology facts as the primary evidence. " +
	"If evidence is insufficient, explicitly say that ontology evidence is insufficient."

// DateToolHint is sent as an extra system message so the model knows when
// to call the date tool.
const DateToolHint = "If question mentions 바나나우유 or 빠나 우유, call get_today_date before final answer."

var methodPrompts = map[retrieval.Method]string{
	retrieval.Method1: "You are an ontology-grounded assistant using lexical/entity-link retrieval. Answer from matched ontology facts first.",
	retrieval.Method2: "You are a policy-constrained ontology assistant. Always satisfy explicit Constraint/Rule facts before drafting an answer.",
	retrieval.Method3: "You are a graph-RAG assistant. Use both node facts and relation evidence and cite relation rationale briefly.",
	retrieval.Method4: "You are a KG reasoning agent. Prefer answers supported by explicit multi-hop relation paths.",
	retrieval.Method5: "You are an embedding-augmented ontology assistant. Use dense retrieval ranking and explain with top-ranked evidence.",
	retrieval.Method6: "You are a neuro-symbolic assistant. Generate naturally, but never violate symbolic constraints.",
	retrieval.Method7: "You are a verification-first assistant. Generate candidate answers internally and keep only evidence-validated output.",
	retrieval.Method8: "You are an ontology enrichment assistant. Answer safely from current facts and explicitly mark missing ontology properties.",
}

// MethodPrompt returns the role prompt of m without the guard. Unknown
// methods get the method1 prompt.
func MethodPrompt(m retrieval.Method) string {
	if p, ok := methodPrompts[m]; ok {
		return p
	}
	return methodPrompts[retrieval.DefaultMethod]
}

// SystemPrompt returns the method prompt followed by GlobalGuard.
func SystemPrompt(m retrieval.Method) string {
	return MethodPrompt(m) + "\n\n" + GlobalGuard
}

// UserPromptInput holds the sections of a user prompt.
type UserPromptInput struct {
	Method       retrieval.Method
	PriorityFact string
	Context      string
	Question     string
}

// BuildUserPrompt joins the [Method], optional [Priority fact],
// [Ontology facts] and [User question] sections with blank lines.
func BuildUserPrompt(in UserPromptInput) string {
	parts := []string{"[Method]\n" + string(in.Method)}
	if in.PriorityFact != "" {
		parts = append(parts, "[Priority fact]\n"+in.PriorityFact)
	}
	parts = append(parts,
		"[Ontology facts]\n"+in.Context,
		"[User question]\n"+in.Question,
	)
	return strings.Join(parts, "\n\n")
}
