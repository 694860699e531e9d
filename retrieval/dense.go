package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/ontollm/ontology"
)

// dense is method5: a lexical stand-in for dense retrieval that rescans
// the whole store with label-heavy weights.
type dense struct {
	store ontology.Store
}

// denseScore weighs token hits: id +3, class +1, label +5, properties +2
// per token.
func denseScore(tokens []string, f ontology.Fact) DenseCandidate {
	id := strings.ToLower(f.ID)
	cls := strings.ToLower(f.ClassName)
	label := strings.ToLower(f.Label)
	propsText := f.PropsText()
	props := strings.ToLower(propsText)

	c := DenseCandidate{ID: f.ID, ClassName: f.ClassName, Label: f.Label, Props: propsText}
	matched := map[string]bool{}
	for _, tok := range tokens {
		hit := false
		if strings.Contains(id, tok) {
			c.Score += 3
			hit = true
		}
		if strings.Contains(cls, tok) {
			c.Score++
			hit = true
		}
		if strings.Contains(label, tok) {
			c.Score += 5
			hit = true
		}
		if strings.Contains(props, tok) {
			c.Score += 2
			hit = true
		}
		if hit {
			matched[tok] = true
		}
	}
	c.MatchedTerms = sortedKeys(matched)
	return c
}

func denseTokens(question string) []string {
	var tokens []string
	for _, t := range ExtractTerms(question) {
		if t != "" && utf8.RuneCountInString(t) >= 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Context returns the dense-proxy context, the tokens used and the
// ranked candidates.
func (d dense) Context(ctx context.Context, question string, limit int) (string, []string, []DenseCandidate, error) {
	tokens := denseTokens(question)
	facts, err := d.store.AllFacts(ctx)
	if err != nil {
		return "", nil, nil, err
	}

	var scored []DenseCandidate
	for _, f := range facts {
		if c := denseScore(tokens, f); c.Score > 0 {
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > limit {
		scored = scored[:max(limit, 0)]
	}
	if len(scored) == 0 {
		return NoFacts, tokens, []DenseCandidate{}, nil
	}

	lines := make([]string, len(scored))
	for i, c := range scored {
		lines[i] = fmt.Sprintf("- %s (%s) label='%s' score=%d props=[%s]", c.ID, c.ClassName, c.Label, c.Score, c.Props)
	}
	return strings.Join(lines, "\n"), tokens, scored, nil
}

func (d dense) Retrieve(ctx context.Context, req Request) (*Result, error) {
	text, tokens, scored, err := d.Context(ctx, req.Question, req.Limit)
	if err != nil {
		return nil, err
	}
	debug := baseDebug(req)
	debug.Tokens = tokens
	debug.ScoredCandidates = scored
	return &Result{
		Context: text,
		Debug:   debug,
		Trace:   Trace{RetrievalType: "dense-proxy"},
	}, nil
}

// neuroSymbolic is method6: dense retrieval under the constraint block.
type neuroSymbolic struct {
	store ontology.Store
}

func (n neuroSymbolic) Retrieve(ctx context.Context, req Request) (*Result, error) {
	denseContext, tokens, scored, err := dense{store: n.store}.Context(ctx, req.Question, req.Limit)
	if err != nil {
		return nil, err
	}
	lines, err := constraintLines(ctx, n.store, req.Limit)
	if err != nil {
		return nil, err
	}
	text := denseContext
	if len(lines) > 0 {
		text = "[Symbolic Rules]\n" + strings.Join(lines, "\n") + "\n\n[Neural Retrieval]\n" + denseContext
	}
	debug := baseDebug(req)
	debug.Tokens = tokens
	debug.ScoredCandidates = scored
	debug.ConstraintHits = lines
	return &Result{
		Context: text,
		Debug:   debug,
		Trace:   Trace{RetrievalType: "neuro-symbolic", ConstraintCount: count(len(lines))},
	}, nil
}
