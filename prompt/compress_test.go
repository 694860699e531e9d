package prompt

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/ontollm/retrieval"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeStrict, ParseMode(" STRICT "))
	assert.Equal(t, ModeBalanced, ParseMode("balanced"))
	assert.Equal(t, ModeBalanced, ParseMode("aggressive"))
	assert.Equal(t, ModeBalanced, ParseMode(""))
}

func TestCompressPassthrough(t *testing.T) {
	for _, c := range []string{"", retrieval.NoFacts} {
		assert.Equal(t, c, Compress(CompressInput{Context: c, MaxFacts: 1, MaxChars: 4}))
	}
}

func TestCompressWithoutFactLines(t *testing.T) {
	in := CompressInput{Context: "relations:\n- A -[r]-> B", MaxFacts: 5, MaxRelations: 3, MaxChars: 12}
	assert.Equal(t, "relations:\n-", Compress(in))

	in.MaxChars = 100
	assert.Equal(t, in.Context, Compress(in))
}

func TestCompressPrefersPriceFacts(t *testing.T) {
	context := strings.Join([]string{
		"- CAT_DAIRY (Category) label='유제품' props=[]",
		"- MILK_002 (Product) label='딸기우유' props=[price_krw=2800]",
		"- POLICY_001 (Policy) label='가격 안내 규칙' props=[rule=가격은 원 단위로 답변]",
	}, "\n")

	out := Compress(CompressInput{
		Question: "딸기우유 가격",
		Context:  context,
		MaxFacts: 2,
		MaxChars: 1000,
		Mode:     ModeBalanced,
	})
	assert.Equal(t, "- MILK_002 (Product) label='딸기우유' props=[price_krw=2800]\n"+
		"- POLICY_001 (Policy) label='가격 안내 규칙' props=[rule=가격은 원 단위로 답변]", out)
}

func TestCompressDedupesProperties(t *testing.T) {
	out := Compress(CompressInput{
		Context:  "- A (C) label='a' props=[k=v; k=v;  j=w ; k=v]",
		MaxFacts: 1,
		MaxChars: 1000,
	})
	assert.Equal(t, "- A (C) label='a' props=[k=v; j=w]", out)
}

func TestCompressRelations(t *testing.T) {
	context := strings.Join([]string{
		"- A (C) label='apple' props=[]",
		"- B (C) label='banana' props=[]",
		"RELATIONS:",
		"- X -[likes]-> Y",
		"- B -[near]-> X",
		"- A -[near]-> B",
	}, "\n")
	in := CompressInput{Question: "apple", Context: context, MaxFacts: 1, MaxRelations: 2, MaxChars: 1000}

	assert.Equal(t, "- A (C) label='apple' props=[]\nrelations:\n- A -[near]-> B\n- X -[likes]-> Y", Compress(in))

	in.MaxRelations = 0
	assert.Equal(t, "- A (C) label='apple' props=[]", Compress(in))

	in.MaxRelations = -3
	in.MaxFacts = 0
	assert.Equal(t, "- A (C) label='apple' props=[]", Compress(in))
}

func TestCompressStrictMode(t *testing.T) {
	var lines []string
	for i := range 5 {
		lines = append(lines, fmt.Sprintf("- F%d (C) label='f%d' props=[]", i, i))
	}
	lines = append(lines, "relations:", "- F0 -[r]-> F1", "- F1 -[r]-> F2")
	in := CompressInput{Context: strings.Join(lines, "\n"), MaxFacts: 5, MaxRelations: 5, MaxChars: 1000, Mode: ModeStrict}

	assert.Equal(t, "- F0 (C) label='f0' props=[]\n- F1 (C) label='f1' props=[]\n- F2 (C) label='f2' props=[]\nrelations:\n- F0 -[r]-> F1", Compress(in))
}

func TestCompressDropsRelationsThenFacts(t *testing.T) {
	context := "- A (C) label='a' props=[]\n- B (C) label='b' props=[]\nrelations:\n- A -[r]-> B"
	in := CompressInput{Context: context, MaxFacts: 5, MaxRelations: 5}

	in.MaxChars = utf8.RuneCountInString(context)
	assert.Equal(t, context, Compress(in))

	in.MaxChars = 60
	assert.Equal(t, "- A (C) label='a' props=[]\n- B (C) label='b' props=[]", Compress(in))

	in.MaxChars = 30
	assert.Equal(t, "- A (C) label='a' props=[]", Compress(in))

	in.MaxChars = 10
	assert.Equal(t, "- A (C)...", Compress(in))

	in.MaxChars = 3
	assert.Equal(t, "- A", Compress(in))
}

func TestCompressTruncationCountsRunes(t *testing.T) {
	out := Compress(CompressInput{Context: "- 바나나 (상품) label='바나나우유' props=[]", MaxFacts: 1, MaxChars: 9})
	assert.Equal(t, "- 바나나...", out)
}

// randomContext builds a context of nFacts fact lines and nRels relation
// lines with randomly repeated properties.
func randomContext(r *rand.Rand, nFacts, nRels int) string {
	lines := make([]string, 0, nFacts+nRels+1)
	for i := range nFacts {
		var props []string
		if r.IntN(2) == 0 {
			props = append(props, fmt.Sprintf("price_krw=%d", 1000+r.IntN(5000)))
		}
		if r.IntN(3) == 0 {
			props = append(props, "alias=빠나 우유")
		}
		for range r.IntN(4) {
			props = append(props, fmt.Sprintf("note=n%d", r.IntN(3)))
		}
		lines = append(lines, fmt.Sprintf("- ITEM_%02d (Product) label='우유%d' props=[%s]", i, r.IntN(10), strings.Join(props, "; ")))
	}
	if nRels > 0 {
		lines = append(lines, "relations:")
		for range nRels {
			lines = append(lines, fmt.Sprintf("- ITEM_%02d -[rel]-> ITEM_%02d", r.IntN(nFacts), r.IntN(nFacts)))
		}
	}
	return strings.Join(lines, "\n")
}

func retainedFacts(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if line == relationsMarker {
			break
		}
		if line != "" {
			n++
		}
	}
	return n
}

func TestCompressProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	questions := []string{"우유 가격", "item_01", "빠나 우유 알려줘", "note"}

	for i := range 300 {
		context := randomContext(r, 1+r.IntN(8), r.IntN(7))
		in := CompressInput{
			Question:     questions[i%len(questions)],
			Context:      context,
			MaxFacts:     r.IntN(7),
			MaxRelations: r.IntN(5),
			Mode:         []Mode{ModeStrict, ModeBalanced}[r.IntN(2)],
		}

		prevFacts := 0
		for budget := 4; budget <= 600; budget += 1 + r.IntN(15) {
			in.MaxChars = budget
			out := Compress(in)

			if !assert.LessOrEqual(t, utf8.RuneCountInString(out), budget, "budget %d context:\n%s", budget, context) {
				return
			}

			facts := retainedFacts(out)
			if !assert.GreaterOrEqual(t, facts, prevFacts, "budget %d context:\n%s", budget, context) {
				return
			}
			prevFacts = facts

			if !strings.HasSuffix(out, "...") {
				again := in
				again.Context = out
				if !assert.Equal(t, out, Compress(again), "budget %d context:\n%s", budget, context) {
					return
				}
			}
		}
	}
}
