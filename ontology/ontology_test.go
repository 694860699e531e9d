package ontology

import (
	"database/sql"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milk() Fact {
	return Fact{
		Instance: Instance{ID: "MILK_001", ClassName: "Product", Label: "바나나우유"},
		Properties: []Property{
			{InstanceID: "MILK_001", Key: "alias", Value: Value("빠나 우유")},
			{InstanceID: "MILK_001", Key: "note", Value: sql.NullString{}},
			{InstanceID: "MILK_001", Key: "price_krw", Value: Value("3000")},
		},
	}
}

func TestFactPropsText(t *testing.T) {
	assert.Equal(t, "alias=빠나 우유; price_krw=3000", milk().PropsText())
	assert.Equal(t, "", Fact{}.PropsText())
}

func TestFactProperty(t *testing.T) {
	p, ok := milk().Property("price_krw")
	require.True(t, ok)
	assert.Equal(t, "3000", p.Value.String)

	_, ok = milk().Property("origin")
	assert.False(t, ok)
}

func TestRelationString(t *testing.T) {
	assert.Equal(t, "A -[r]-> B", Relation{Source: "A", Type: "r", Target: "B"}.String())
}

func TestGroupFacts(t *testing.T) {
	facts := GroupFacts(
		[]Instance{{ID: "A"}, {ID: "B"}},
		[]Property{
			{InstanceID: "B", Key: "k", Value: Value("1")},
			{InstanceID: "A", Key: "k", Value: Value("2")},
			{InstanceID: "Z", Key: "k", Value: Value("3")},
		},
	)
	require.Len(t, facts, 2)
	assert.Equal(t, "A", facts[0].ID)
	assert.Equal(t, "k=2", facts[0].PropsText())
	assert.Equal(t, "k=1", facts[1].PropsText())
}

func TestTermPredicateMatches(t *testing.T) {
	f := milk()

	tests := []struct {
		name string
		pred TermPredicate
		want bool
	}{
		{"id", LookupPredicate([]string{"milk_0"}), true},
		{"class", LookupPredicate([]string{"product"}), true},
		{"label", LookupPredicate([]string{"바나나"}), true},
		{"property key", LookupPredicate([]string{"price"}), true},
		{"property value", LookupPredicate([]string{"3000"}), true},
		{"no match", LookupPredicate([]string{"coffee"}), false},
		{"empty term matches everything", LookupPredicate([]string{""}), true},
		{"no terms", LookupPredicate(nil), false},
		{"price predicate ignores class", PricePredicate([]string{"product"}), false},
		{"price predicate label", PricePredicate([]string{"바나나우유"}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Matches(f))
		})
	}
}

func TestTermPredicateFoldsASCIIOnly(t *testing.T) {
	f := Fact{Instance: Instance{ID: "ÉCLAIR_01", ClassName: "Pastry", Label: "Ünit"}}

	assert.True(t, LookupPredicate([]string{"clair_01"}).Matches(f))
	assert.True(t, LookupPredicate([]string{"pastry"}).Matches(f))
	assert.True(t, LookupPredicate([]string{"Ünit"}).Matches(f))
	assert.False(t, LookupPredicate([]string{"éclair"}).Matches(f))
	assert.False(t, LookupPredicate([]string{"ünit"}).Matches(f))
}

func TestQueriesDialects(t *testing.T) {
	pred := TermPredicate{Terms: []string{"a_b"}, Fields: []Field{FieldID, FieldLabel}}

	t.Run("question", func(t *testing.T) {
		q := Queries{Dialect: DialectQuestion}.SearchInstances(pred, 5)
		assert.Contains(t, q.SQL, "lower(i.id) LIKE ? ESCAPE")
		assert.Contains(t, q.SQL, "ORDER BY i.id LIMIT ?")
		assert.NotContains(t, q.SQL, "EXISTS")
		assert.Equal(t, []any{`%a\_b%`, `%a\_b%`, 5}, q.Args)
	})

	t.Run("dollar", func(t *testing.T) {
		q := Queries{Dialect: DialectDollar}.SearchInstances(pred, 5)
		assert.Contains(t, q.SQL, "lower(i.id) LIKE $1")
		assert.Contains(t, q.SQL, "lower(COALESCE(i.label, '')) LIKE $2")
		assert.Contains(t, q.SQL, "LIMIT $3")
	})

	t.Run("empty predicate", func(t *testing.T) {
		q := Queries{}.SearchInstances(TermPredicate{}, 5)
		assert.Contains(t, q.SQL, "WHERE 1 = 0")
	})

	t.Run("relations without limit", func(t *testing.T) {
		q := Queries{Dialect: DialectDollar}.RelationsFrom([]string{"A", "B"}, 0)
		assert.Contains(t, q.SQL, "source_id IN ($1, $2)")
		assert.NotContains(t, q.SQL, "LIMIT")
		assert.Equal(t, []any{"A", "B"}, q.Args)
	})

	t.Run("relations touching", func(t *testing.T) {
		q := Queries{Dialect: DialectDollar}.RelationsTouching([]string{"A"}, 6)
		assert.Contains(t, q.SQL, "source_id IN ($1) OR target_id IN ($2)")
		assert.Equal(t, []any{"A", "A", 6}, q.Args)
	})

	t.Run("price fact", func(t *testing.T) {
		q := Queries{Dialect: DialectDollar}.PriceFact(PricePredicate([]string{"milk"}))
		assert.Contains(t, q.SQL, "p.key = $1")
		assert.Equal(t, PriceKey, q.Args[0])
		assert.Len(t, q.Args, 5)
	})
}

func TestUpsertNulls(t *testing.T) {
	q := Queries{}.UpsertInstance(Instance{ID: "A", ClassName: "C"})
	assert.Nil(t, q.Args[2])

	q = Queries{}.UpsertProperty(Property{InstanceID: "A", Key: "k"})
	assert.Nil(t, q.Args[2])

	q = Queries{}.UpsertProperty(Property{InstanceID: "A", Key: "k", Value: Value("")})
	assert.Equal(t, "", q.Args[2])
}

func TestIsMissingValue(t *testing.T) {
	for _, v := range []string{"", "unknown", "TODO", "N/A", "?"} {
		assert.True(t, IsMissingValue(v), v)
	}
	for _, v := range []string{"0", "none", "3000"} {
		assert.False(t, IsMissingValue(v), v)
	}
}

func TestIsConstraintFact(t *testing.T) {
	assert.True(t, IsConstraintFact(Fact{Instance: Instance{ClassName: "Policy"}}))
	assert.True(t, IsConstraintFact(Fact{Properties: []Property{{Key: "template"}}}))
	assert.False(t, IsConstraintFact(milk()))
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError(nil, "search"))

	err := StoreError(io.ErrUnexpectedEOF, "search facts")
	assert.True(t, errors.Is(err, ErrStore))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "search facts")
}
