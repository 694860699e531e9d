package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smallnest/ontollm/ontology"
)

func baseDebug(req Request) Debug {
	return Debug{LookupDebug: req.Base.Debug}
}

// lexical is method1: the base lookup as is.
type lexical struct{}

func (lexical) Retrieve(ctx context.Context, req Request) (*Result, error) {
	return &Result{
		Context: req.Base.Context,
		Debug:   baseDebug(req),
		Trace:   Trace{RetrievalType: "lexical-grounding"},
	}, nil
}

func constraintLines(ctx context.Context, store ontology.Store, limit int) ([]string, error) {
	facts, err := store.ConstraintFacts(ctx, max(3, limit/2))
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = ConstraintLine(f)
	}
	return lines, nil
}

// policy is method2: constraint facts ahead of the entity facts.
type policy struct {
	store ontology.Store
}

func (p policy) Retrieve(ctx context.Context, req Request) (*Result, error) {
	lines, err := constraintLines(ctx, p.store, req.Limit)
	if err != nil {
		return nil, err
	}
	text := req.Base.Context
	if len(lines) > 0 {
		text = "[Constraint Facts]\n" + strings.Join(lines, "\n") + "\n\n[Entity Facts]\n" + req.Base.Context
	}
	debug := baseDebug(req)
	debug.ConstraintHits = lines
	return &Result{
		Context: text,
		Debug:   debug,
		Trace:   Trace{ConstraintCount: count(len(lines))},
	}, nil
}

// relationEvidence is method3 (graph RAG) and method7 (verification):
// relations touching the top candidates, appended under a marker.
type relationEvidence struct {
	store    ontology.Store
	method   Method
	minCap   int
	perLimit int
}

func (r relationEvidence) Retrieve(ctx context.Context, req Request) (*Result, error) {
	rels, err := r.store.RelationsTouching(ctx, req.Base.SeedIDs(seedCount), max(r.minCap, req.Limit*r.perLimit))
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(rels))
	for i, rel := range rels {
		lines[i] = RelationLine(rel)
	}

	marker := "relations:"
	if r.method == Method7 {
		marker = "validation_evidence:"
	}
	text := req.Base.Context
	if len(lines) > 0 {
		text = req.Base.Context + "\n" + marker + "\n" + strings.Join(lines, "\n")
	}

	debug := baseDebug(req)
	var trace Trace
	if r.method == Method7 {
		debug.VerificationEvidence = lines
		trace.VerificationEvidenceCount = count(len(lines))
	} else {
		debug.GraphRelations = lines
		trace.RelationEvidenceCount = count(len(lines))
	}
	return &Result{Context: text, Debug: debug, Trace: trace}, nil
}

// multiHop is method4: one- and two-hop paths from the top candidates.
type multiHop struct {
	store ontology.Store
}

// Paths expands seeds by one hop, then by a second hop from the distinct
// first-hop targets. Each first-hop edge yields one chained line per
// continuing edge, or itself when nothing continues. At most 2*perHop
// lines are returned.
func (m multiHop) Paths(ctx context.Context, seeds []string, perHop int) ([]string, error) {
	if len(seeds) == 0 {
		return nil, nil
	}
	first, err := m.store.RelationsFrom(ctx, seeds, perHop)
	if err != nil || len(first) == 0 {
		return nil, err
	}

	seen := map[string]bool{}
	var targets []string
	for _, r := range first {
		if !seen[r.Target] {
			seen[r.Target] = true
			targets = append(targets, r.Target)
		}
	}
	sort.Strings(targets)

	second, err := m.store.RelationsFrom(ctx, targets, perHop)
	if err != nil {
		return nil, err
	}
	bySource := map[string][]ontology.Relation{}
	for _, r := range second {
		bySource[r.Source] = append(bySource[r.Source], r)
	}

	var paths []string
	for _, r1 := range first {
		chained := bySource[r1.Target]
		if len(chained) == 0 {
			paths = append(paths, RelationLine(r1))
			continue
		}
		for _, r2 := range chained {
			paths = append(paths, fmt.Sprintf("- %s -[%s]-> %s -[%s]-> %s", r1.Source, r1.Type, r1.Target, r2.Type, r2.Target))
		}
	}
	if len(paths) > perHop*2 {
		paths = paths[:perHop*2]
	}
	return paths, nil
}

func (m multiHop) Retrieve(ctx context.Context, req Request) (*Result, error) {
	paths, err := m.Paths(ctx, req.Base.SeedIDs(seedCount), max(6, req.Limit))
	if err != nil {
		return nil, err
	}
	text := req.Base.Context
	if len(paths) > 0 {
		text = req.Base.Context + "\nreasoning_paths:\n" + strings.Join(paths, "\n")
	}
	debug := baseDebug(req)
	debug.ReasoningPaths = paths
	return &Result{
		Context: text,
		Debug:   debug,
		Trace:   Trace{MultiHopPathCount: count(len(paths))},
	}, nil
}

// enrichment is method8: current facts plus missing-property signals.
type enrichment struct {
	store ontology.Store
}

func (e enrichment) Retrieve(ctx context.Context, req Request) (*Result, error) {
	targets, err := e.store.MissingValues(ctx, max(3, req.Limit))
	if err != nil {
		return nil, err
	}
	text := req.Base.Context
	if len(targets) > 0 {
		lines := make([]string, len(targets))
		for i, t := range targets {
			lines[i] = fmt.Sprintf("- %s label='%s' missing_key=%s value='%s'", t.InstanceID, t.Label, t.Key, t.Value)
		}
		text = "[Current Facts]\n" + req.Base.Context + "\n\n[Missing Property Signals]\n" + strings.Join(lines, "\n")
	}
	debug := baseDebug(req)
	debug.EnrichmentTargets = targets
	return &Result{
		Context: text,
		Debug:   debug,
		Trace:   Trace{EnrichmentTargetCount: count(len(targets))},
	}, nil
}
