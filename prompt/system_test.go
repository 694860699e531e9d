package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/ontollm/retrieval"
)

func TestSystemPrompt(t *testing.T) {
	for _, m := range retrieval.Methods {
		p := SystemPrompt(m)
		assert.True(t, strings.HasPrefix(p, "You are "), m)
		assert.True(t, strings.HasSuffix(p, "\n\n"+GlobalGuard), m)
	}
	assert.Equal(t, SystemPrompt(retrieval.Method1), SystemPrompt("method42"))
	assert.Contains(t, MethodPrompt(retrieval.Method4), "multi-hop relation paths")
}

func TestBuildUserPrompt(t *testing.T) {
	in := UserPromptInput{Method: retrieval.Method2, Context: "- A", Question: "q?"}
	assert.Equal(t, "[Method]\nmethod2\n\n[Ontology facts]\n- A\n\n[User question]\nq?", BuildUserPrompt(in))

	in.PriorityFact = "A의 가격은 10원입니다."
	assert.Equal(t, "[Method]\nmethod2\n\n[Priority fact]\nA의 가격은 10원입니다.\n\n[Ontology facts]\n- A\n\n[User question]\nq?", BuildUserPrompt(in))
}
