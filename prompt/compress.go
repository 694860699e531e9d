package prompt

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smallnest/ontollm/retrieval"
)

// Mode selects how aggressively Compress trims.
type Mode string

const (
	// ModeStrict caps the output at three facts and one relation.
	ModeStrict Mode = "strict"
	// ModeBalanced only applies the configured caps.
	ModeBalanced Mode = "balanced"
)

// ParseMode returns ModeStrict for "strict" and ModeBalanced otherwise.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeStrict {
		return ModeStrict
	}
	return ModeBalanced
}

const relationsMarker = "relations:"

// CompressInput is the input of Compress.
type CompressInput struct {
	Question     string
	Context      string
	MaxFacts     int
	MaxRelations int
	// MaxChars is the budget in runes.
	MaxChars int
	Mode     Mode
}

type scoredLine struct {
	score int
	line  string
}

// Compress selects and orders the fact and relation lines of in.Context
// that matter most for in.Question and fits them into in.MaxChars runes.
// Relations are dropped before facts, and at least one fact is kept; a
// lone fact that still does not fit is cut and suffixed with "...".
func Compress(in CompressInput) string {
	if in.Context == "" || in.Context == retrieval.NoFacts {
		return in.Context
	}

	var facts, relations []string
	inRelations := false
	for _, raw := range strings.Split(in.Context, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.ToLower(line) == relationsMarker {
			inRelations = true
			continue
		}
		if inRelations {
			relations = append(relations, line)
		} else {
			facts = append(facts, dedupeProps(line))
		}
	}
	if len(facts) == 0 {
		return truncateRunes(in.Context, in.MaxChars)
	}

	terms := retrieval.ExtractTerms(in.Question)
	priceQuestion := retrieval.IsPriceQuestion(in.Question)

	scoredFacts := make([]scoredLine, len(facts))
	for i, line := range facts {
		low := strings.ToLower(line)
		score := termHits(terms, low)
		if priceQuestion && strings.Contains(low, "price_krw=") {
			score += 100
		}
		if strings.Contains(low, "alias=") {
			score += 2
		}
		if strings.Contains(low, "label='") {
			score++
		}
		scoredFacts[i] = scoredLine{score: score, line: line}
	}
	selectedFacts := top(scoredFacts, max(1, in.MaxFacts))

	ids := make(map[string]bool, len(selectedFacts))
	for _, line := range selectedFacts {
		if id := factID(line); id != "" {
			ids[id] = true
		}
	}
	scoredRelations := make([]scoredLine, len(relations))
	for i, line := range relations {
		score := termHits(terms, strings.ToLower(line))
		if src := relationSource(line); src != "" && ids[src] {
			score += 10
		}
		scoredRelations[i] = scoredLine{score: score, line: line}
	}
	selectedRelations := top(scoredRelations, max(0, in.MaxRelations))

	if in.Mode == ModeStrict {
		selectedFacts = selectedFacts[:min(len(selectedFacts), 3)]
		selectedRelations = selectedRelations[:min(len(selectedRelations), 1)]
	}

	text := render(selectedFacts, selectedRelations)
	for len(selectedRelations) > 0 && runeLen(text) > in.MaxChars {
		selectedRelations = selectedRelations[:len(selectedRelations)-1]
		text = render(selectedFacts, selectedRelations)
	}
	for len(selectedFacts) > 1 && runeLen(text) > in.MaxChars {
		selectedFacts = selectedFacts[:len(selectedFacts)-1]
		text = render(selectedFacts, selectedRelations)
	}

	if runeLen(text) <= in.MaxChars {
		return text
	}
	if in.MaxChars <= 3 {
		return truncateRunes(text, in.MaxChars)
	}
	return strings.TrimRightFunc(truncateRunes(text, in.MaxChars-3), unicode.IsSpace) + "..."
}

// top stably sorts by score desc and keeps the first n lines.
func top(lines []scoredLine, n int) []string {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].score > lines[j].score })
	out := make([]string, 0, min(n, len(lines)))
	for _, l := range lines[:min(n, len(lines))] {
		out = append(out, l.line)
	}
	return out
}

func termHits(terms []string, low string) int {
	n := 0
	for _, t := range terms {
		if t != "" && strings.Contains(low, t) {
			n++
		}
	}
	return n
}

func render(facts, relations []string) string {
	lines := make([]string, 0, len(facts)+len(relations)+1)
	lines = append(lines, facts...)
	if len(relations) > 0 {
		lines = append(lines, relationsMarker)
		lines = append(lines, relations...)
	}
	return strings.Join(lines, "\n")
}

// dedupeProps removes repeated k=v fragments inside props=[...].
func dedupeProps(line string) string {
	const marker = "props=["
	start := strings.Index(line, marker)
	if start < 0 {
		return line
	}
	end := strings.LastIndex(line, "]")
	if end <= start+len(marker) {
		return line
	}

	seen := map[string]bool{}
	var props []string
	for _, p := range strings.Split(line[start+len(marker):end], ";") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		props = append(props, p)
	}
	return line[:start] + marker + strings.Join(props, "; ") + "]" + line[end+1:]
}

// factID returns the first token after "- ".
func factID(line string) string {
	payload, ok := strings.CutPrefix(line, "- ")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(payload, " ")
	return strings.TrimSpace(id)
}

// relationSource returns the source of a "- s -[t]-> d" line.
func relationSource(line string) string {
	payload, ok := strings.CutPrefix(line, "- ")
	if !ok {
		return ""
	}
	src, _, found := strings.Cut(payload, " -[")
	if !found {
		return ""
	}
	return strings.TrimSpace(src)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
