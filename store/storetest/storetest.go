// Package storetest holds the conformance suite shared by every
// ontology.Store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/ontology"
)

// Fixture is a small grocery ontology used across the suite.
func Fixture() *ontology.Document {
	return &ontology.Document{
		Classes: []ontology.Class{
			{Name: "Product", Description: "sellable item"},
			{Name: "Category"},
			{Name: "Policy", Description: "answering rule"},
		},
		Instances: []ontology.Instance{
			{ID: "MILK_001", ClassName: "Product", Label: "바나나우유"},
			{ID: "MILK_002", ClassName: "Product", Label: "딸기우유"},
			{ID: "CAT_DAIRY", ClassName: "Category", Label: "유제품"},
			{ID: "POLICY_001", ClassName: "Policy", Label: "가격 안내 규칙"},
		},
		Properties: []ontology.Property{
			{InstanceID: "MILK_001", Key: "price_krw", Value: ontology.Value("3000")},
			{InstanceID: "MILK_001", Key: "alias", Value: ontology.Value("빠나 우유")},
			{InstanceID: "MILK_001", Key: "origin", Value: ontology.Value("unknown")},
			{InstanceID: "MILK_002", Key: "price_krw", Value: ontology.Value("2800")},
			{InstanceID: "MILK_002", Key: "note"},
			{InstanceID: "POLICY_001", Key: "rule", Value: ontology.Value("가격은 원 단위로 답변")},
		},
		Relations: []ontology.Relation{
			{Source: "MILK_001", Type: "belongs_to", Target: "CAT_DAIRY"},
			{Source: "MILK_002", Type: "belongs_to", Target: "CAT_DAIRY"},
			{Source: "CAT_DAIRY", Type: "governed_by", Target: "POLICY_001"},
		},
	}
}

// Factory returns an empty store with its schema initialised.
type Factory func(t *testing.T) ontology.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	seeded := func(t *testing.T) ontology.Store {
		s := newStore(t)
		require.NoError(t, s.Ingest(ctx, Fixture()))
		return s
	}

	t.Run("IngestIsIdempotent", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Ingest(ctx, Fixture()))

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, ontology.Stats{Classes: 3, Instances: 4, Properties: 6, Relations: 3}, st)
	})

	t.Run("UpsertReplacesValues", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Ingest(ctx, &ontology.Document{
			Instances:  []ontology.Instance{{ID: "MILK_001", ClassName: "Product", Label: "바나나 우유"}},
			Properties: []ontology.Property{{InstanceID: "MILK_001", Key: "price_krw", Value: ontology.Value("3200")}},
		}))

		facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{"milk_001"}), 5)
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, "바나나 우유", facts[0].Label)
		p, ok := facts[0].Property("price_krw")
		require.True(t, ok)
		assert.Equal(t, "3200", p.Value.String)
	})

	t.Run("SearchFactsOrdersByIDAndCaps", func(t *testing.T) {
		s := seeded(t)

		facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{""}), 10)
		require.NoError(t, err)
		ids := make([]string, len(facts))
		for i, f := range facts {
			ids[i] = f.ID
		}
		assert.Equal(t, []string{"CAT_DAIRY", "MILK_001", "MILK_002", "POLICY_001"}, ids)

		facts, err = s.SearchFacts(ctx, ontology.LookupPredicate([]string{""}), 2)
		require.NoError(t, err)
		assert.Len(t, facts, 2)
	})

	t.Run("SearchFactsMatchesEveryField", func(t *testing.T) {
		s := seeded(t)
		cases := []struct{ term, id string }{
			{"milk_002", "MILK_002"},
			{"category", "CAT_DAIRY"},
			{"바나나", "MILK_001"},
			{"rule", "POLICY_001"},
			{"빠나", "MILK_001"},
		}
		for _, c := range cases {
			facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{c.term}), 10)
			require.NoError(t, err)
			require.Len(t, facts, 1, c.term)
			assert.Equal(t, c.id, facts[0].ID, c.term)
		}
	})

	t.Run("SearchFactsFoldsASCIIOnly", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Ingest(ctx, &ontology.Document{
			Classes:   []ontology.Class{{Name: "Pastry"}},
			Instances: []ontology.Instance{{ID: "ÉCLAIR_01", ClassName: "Pastry", Label: "Ünit"}},
		}))
		for term, want := range map[string]int{"clair_01": 1, "pastry": 1, "Ünit": 1, "éclair": 0, "ünit": 0} {
			facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{term}), 10)
			require.NoError(t, err)
			assert.Len(t, facts, want, term)
		}
	})

	t.Run("PropertiesOrderedByKeyWithNulls", func(t *testing.T) {
		s := seeded(t)
		facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{"milk"}), 10)
		require.NoError(t, err)
		require.Len(t, facts, 2)

		assert.Equal(t, "alias=빠나 우유; origin=unknown; price_krw=3000", facts[0].PropsText())
		require.Len(t, facts[1].Properties, 2)
		assert.Equal(t, "note", facts[1].Properties[0].Key)
		assert.False(t, facts[1].Properties[0].Value.Valid)
		assert.Equal(t, "price_krw=2800", facts[1].PropsText())
	})

	t.Run("LikeWildcardsAreLiteral", func(t *testing.T) {
		s := seeded(t)
		facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{"milk%"}), 10)
		require.NoError(t, err)
		assert.Empty(t, facts)
	})

	t.Run("AllFacts", func(t *testing.T) {
		s := seeded(t)
		facts, err := s.AllFacts(ctx)
		require.NoError(t, err)
		require.Len(t, facts, 4)
		assert.Equal(t, "CAT_DAIRY", facts[0].ID)
		assert.Equal(t, "rule=가격은 원 단위로 답변", facts[3].PropsText())
	})

	t.Run("Relations", func(t *testing.T) {
		s := seeded(t)

		from, err := s.RelationsFrom(ctx, []string{"MILK_002", "MILK_001"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []ontology.Relation{
			{Source: "MILK_001", Type: "belongs_to", Target: "CAT_DAIRY"},
			{Source: "MILK_002", Type: "belongs_to", Target: "CAT_DAIRY"},
		}, from)

		from, err = s.RelationsFrom(ctx, []string{"MILK_002", "MILK_001"}, 1)
		require.NoError(t, err)
		assert.Len(t, from, 1)

		touching, err := s.RelationsTouching(ctx, []string{"CAT_DAIRY"}, 10)
		require.NoError(t, err)
		assert.Len(t, touching, 3)
		assert.Equal(t, "CAT_DAIRY", touching[0].Source)

		none, err := s.RelationsFrom(ctx, nil, 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("PriceFact", func(t *testing.T) {
		s := seeded(t)

		pf, err := s.PriceFact(ctx, ontology.PricePredicate([]string{"바나나우유 가격", "바나나우유", "가격"}))
		require.NoError(t, err)
		require.NotNil(t, pf)
		assert.Equal(t, "MILK_001", pf.InstanceID)
		assert.Equal(t, "바나나우유", pf.Label)
		assert.Equal(t, "3000", pf.Price.String)

		pf, err = s.PriceFact(ctx, ontology.PricePredicate([]string{"coffee"}))
		require.NoError(t, err)
		assert.Nil(t, pf)

		// class is not searched
		pf, err = s.PriceFact(ctx, ontology.PricePredicate([]string{"product"}))
		require.NoError(t, err)
		assert.Nil(t, pf)
	})

	t.Run("ConstraintFacts", func(t *testing.T) {
		s := seeded(t)
		facts, err := s.ConstraintFacts(ctx, 3)
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, "POLICY_001", facts[0].ID)
	})

	t.Run("MissingValues", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Ingest(ctx, &ontology.Document{
			Properties: []ontology.Property{
				{InstanceID: "CAT_DAIRY", Key: "count", Value: ontology.Value("0")},
				{InstanceID: "CAT_DAIRY", Key: "owner", Value: ontology.Value("TODO")},
			},
		}))

		missing, err := s.MissingValues(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []ontology.MissingValue{
			{InstanceID: "CAT_DAIRY", Label: "유제품", Key: "owner", Value: "TODO"},
			{InstanceID: "MILK_001", Label: "바나나우유", Key: "origin", Value: "unknown"},
			{InstanceID: "MILK_002", Label: "딸기우유", Key: "note", Value: ""},
		}, missing)
	})

	t.Run("Reset", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Reset(ctx))

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, ontology.Stats{}, st)

		facts, err := s.AllFacts(ctx)
		require.NoError(t, err)
		assert.Empty(t, facts)
	})

	t.Run("InstancesWithoutClasses", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Ingest(ctx, &ontology.Document{
			Instances: []ontology.Instance{{ID: "ORPHAN", ClassName: "Missing"}},
		}))
		facts, err := s.SearchFacts(ctx, ontology.LookupPredicate([]string{"orphan"}), 5)
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, "", facts[0].Label)
	})
}
