package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/ontology"
)

func TestPostgresStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS onto_classes")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, store.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchFacts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT i.id, i.class_name, COALESCE(i.label, '') FROM onto_instances i WHERE")).
		WithArgs("%milk%", "%milk%", "%milk%", "%milk%", "%milk%", 15).
		WillReturnRows(pgxmock.NewRows([]string{"id", "class_name", "label"}).
			AddRow("MILK_001", "Product", "바나나우유").
			AddRow("MILK_002", "Product", "딸기우유"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT instance_id, key, value FROM onto_properties WHERE instance_id IN ($1, $2)")).
		WithArgs("MILK_001", "MILK_002").
		WillReturnRows(pgxmock.NewRows([]string{"instance_id", "key", "value"}).
			AddRow("MILK_001", "alias", "빠나 우유").
			AddRow("MILK_001", "price_krw", "3000").
			AddRow("MILK_002", "price_krw", "2800"))

	facts, err := store.SearchFacts(context.Background(), ontology.LookupPredicate([]string{"milk"}), 15)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "바나나우유", facts[0].Label)
	assert.Equal(t, "alias=빠나 우유; price_krw=3000", facts[0].PropsText())
	assert.Equal(t, "price_krw=2800", facts[1].PropsText())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchFactsEmptySkipsProperties(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT i.id, i.class_name")).
		WithArgs("%coffee%", "%coffee%", "%coffee%", "%coffee%", "%coffee%", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "class_name", "label"}))

	facts, err := store.SearchFacts(context.Background(), ontology.LookupPredicate([]string{"coffee"}), 5)
	require.NoError(t, err)
	assert.Empty(t, facts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PriceFact(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)
	pred := ontology.PricePredicate([]string{"바나나우유"})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT i.id, COALESCE(i.label, ''), p.value FROM onto_instances i")).
		WithArgs(ontology.PriceKey, "%바나나우유%", "%바나나우유%", "%바나나우유%", "%바나나우유%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "label", "value"}).AddRow("MILK_001", "바나나우유", "3000"))

	pf, err := store.PriceFact(context.Background(), pred)
	require.NoError(t, err)
	require.NotNil(t, pf)
	assert.Equal(t, "MILK_001", pf.InstanceID)
	assert.Equal(t, "3000", pf.Price.String)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT i.id, COALESCE(i.label, ''), p.value")).
		WithArgs(ontology.PriceKey, "%바나나우유%", "%바나나우유%", "%바나나우유%", "%바나나우유%").
		WillReturnError(pgx.ErrNoRows)

	pf, err = store.PriceFact(context.Background(), pred)
	require.NoError(t, err)
	assert.Nil(t, pf)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ingest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO onto_classes")).
		WithArgs("Product", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO onto_instances")).
		WithArgs("MILK_001", "Product", "바나나우유").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO onto_properties")).
		WithArgs("MILK_001", "price_krw", "3000").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO onto_relations")).
		WithArgs("MILK_001", "belongs_to", "CAT_DAIRY").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = store.Ingest(context.Background(), &ontology.Document{
		Classes:    []ontology.Class{{Name: "Product"}},
		Instances:  []ontology.Instance{{ID: "MILK_001", ClassName: "Product", Label: "바나나우유"}},
		Properties: []ontology.Property{{InstanceID: "MILK_001", Key: "price_krw", Value: ontology.Value("3000")}},
		Relations:  []ontology.Relation{{Source: "MILK_001", Type: "belongs_to", Target: "CAT_DAIRY"}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_IngestFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO onto_classes")).
		WithArgs("Product", "").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = store.Ingest(context.Background(), &ontology.Document{Classes: []ontology.Class{{Name: "Product"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ontology.ErrStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT (SELECT COUNT(*) FROM onto_classes)")).
		WillReturnRows(pgxmock.NewRows([]string{"c", "i", "p", "r"}).AddRow(3, 4, 6, 3))

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ontology.Stats{Classes: 3, Instances: 4, Properties: 6, Relations: 3}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RelationsTouching(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT source_id, type, target_id FROM onto_relations WHERE source_id IN ($1) OR target_id IN ($2)")).
		WithArgs("CAT_DAIRY", "CAT_DAIRY", 6).
		WillReturnRows(pgxmock.NewRows([]string{"source_id", "type", "target_id"}).
			AddRow("CAT_DAIRY", "governed_by", "POLICY_001").
			AddRow("MILK_001", "belongs_to", "CAT_DAIRY"))

	rels, err := store.RelationsTouching(context.Background(), []string{"CAT_DAIRY"}, 6)
	require.NoError(t, err)
	assert.Equal(t, []ontology.Relation{
		{Source: "CAT_DAIRY", Type: "governed_by", Target: "POLICY_001"},
		{Source: "MILK_001", Type: "belongs_to", Target: "CAT_DAIRY"},
	}, rels)

	none, err := store.RelationsTouching(context.Background(), nil, 6)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}
