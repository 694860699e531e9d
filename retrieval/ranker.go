package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/ontollm/ontology"
)

// NoFacts is the context returned when nothing matched.
const NoFacts = "No matching ontology facts found."

// Candidate is a scored base-lookup hit.
type Candidate struct {
	ID            string   `json:"id"`
	ClassName     string   `json:"class_name"`
	Label         string   `json:"label"`
	MatchedTerms  []string `json:"matched_terms"`
	MatchedFields []string `json:"matched_fields"`
	Score         int      `json:"score"`
}

// LookupDebug explains how the base lookup ranked its candidates.
type LookupDebug struct {
	QueryTerms       []string    `json:"query_terms"`
	PrioritizedTerms []string    `json:"prioritized_terms"`
	Candidates       []Candidate `json:"candidates"`
}

// Rank scores facts against terms. Per term hit: id +3, class +1,
// label +4, rendered properties +2; then +1 for an alias and +1 for a
// price property. Candidates are sorted by score desc, id asc.
func Rank(terms []string, facts []ontology.Fact) LookupDebug {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t] = 0
	}

	candidates := make([]Candidate, 0, len(facts))
	for _, f := range facts {
		id := strings.ToLower(f.ID)
		cls := strings.ToLower(f.ClassName)
		label := strings.ToLower(f.Label)
		props := strings.ToLower(f.PropsText())

		c := Candidate{ID: f.ID, ClassName: f.ClassName, Label: f.Label, MatchedTerms: []string{}}
		fields := map[string]bool{}
		for _, t := range terms {
			if t == "" {
				continue
			}
			inID := strings.Contains(id, t)
			inClass := strings.Contains(cls, t)
			inLabel := strings.Contains(label, t)
			inProps := strings.Contains(props, t)
			if !inID && !inClass && !inLabel && !inProps {
				continue
			}
			c.MatchedTerms = append(c.MatchedTerms, t)
			counts[t]++
			if inID {
				fields["id"] = true
				c.Score += 3
			}
			if inClass {
				fields["class"] = true
				c.Score++
			}
			if inLabel {
				fields["label"] = true
				c.Score += 4
			}
			if inProps {
				fields["properties"] = true
				c.Score += 2
			}
		}
		if strings.Contains(props, "alias=") {
			c.Score++
		}
		if strings.Contains(props, "price_krw=") {
			c.Score++
		}
		c.MatchedFields = sortedKeys(fields)
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	return LookupDebug{
		QueryTerms:       nonEmpty(terms),
		PrioritizedTerms: prioritize(terms, counts),
		Candidates:       candidates,
	}
}

// prioritize orders terms by candidates matched desc, rune length desc,
// then alphabetically.
func prioritize(terms []string, counts map[string]int) []string {
	out := nonEmpty(terms)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		if la != lb {
			return la > lb
		}
		return a < b
	})
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FactLine renders "- id (class) label='label' props=[k=v; k=v]".
func FactLine(f ontology.Fact) string {
	return fmt.Sprintf("- %s (%s) label='%s' props=[%s]", f.ID, f.ClassName, f.Label, f.PropsText())
}

// ConstraintLine renders "- id label='label' props=[k=v]".
func ConstraintLine(f ontology.Fact) string {
	return fmt.Sprintf("- %s label='%s' props=[%s]", f.ID, f.Label, f.PropsText())
}

// RelationLine renders "- s -[t]-> d".
func RelationLine(r ontology.Relation) string {
	return "- " + r.String()
}

// RenderBaseContext renders the fact lines followed by a "relations:"
// block. It returns NoFacts when facts is empty.
func RenderBaseContext(facts []ontology.Fact, relations []ontology.Relation) string {
	if len(facts) == 0 {
		return NoFacts
	}
	lines := make([]string, 0, len(facts)+len(relations)+1)
	for _, f := range facts {
		lines = append(lines, FactLine(f))
	}
	if len(relations) > 0 {
		lines = append(lines, "relations:")
		for _, r := range relations {
			lines = append(lines, RelationLine(r))
		}
	}
	return strings.Join(lines, "\n")
}

// Lookup is the shared base lookup every strategy builds on.
type Lookup struct {
	Terms   []string
	Facts   []ontology.Fact
	Context string
	Debug   LookupDebug
}

// SeedIDs returns the ids of the top n ranked candidates.
func (l *Lookup) SeedIDs(n int) []string {
	ids := make([]string, 0, n)
	for _, c := range l.Debug.Candidates {
		if len(ids) >= n {
			break
		}
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// BaseLookup searches the store for question, ranks the hits and renders
// the base context with the relations leaving the matched facts.
func BaseLookup(ctx context.Context, store ontology.Store, question string, limit int) (*Lookup, error) {
	terms := ExtractTerms(question)
	facts, err := store.SearchFacts(ctx, ontology.LookupPredicate(terms), limit)
	if err != nil {
		return nil, err
	}

	var relations []ontology.Relation
	if len(facts) > 0 {
		ids := make([]string, len(facts))
		for i, f := range facts {
			ids[i] = f.ID
		}
		relations, err = store.RelationsFrom(ctx, ids, 0)
		if err != nil {
			return nil, err
		}
	}

	return &Lookup{
		Terms:   terms,
		Facts:   facts,
		Context: RenderBaseContext(facts, relations),
		Debug:   Rank(terms, facts),
	}, nil
}
