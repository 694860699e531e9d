package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/ontollm/ontology"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS onto_classes (
	name TEXT PRIMARY KEY,
	description TEXT
);
CREATE TABLE IF NOT EXISTS onto_instances (
	id TEXT PRIMARY KEY,
	class_name TEXT NOT NULL,
	label TEXT
);
CREATE TABLE IF NOT EXISTS onto_properties (
	instance_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT,
	PRIMARY KEY (instance_id, key)
);
CREATE TABLE IF NOT EXISTS onto_relations (
	source_id TEXT NOT NULL,
	type TEXT NOT NULL,
	target_id TEXT NOT NULL,
	PRIMARY KEY (source_id, type, target_id)
);
CREATE INDEX IF NOT EXISTS idx_onto_relations_target ON onto_relations (target_id);
`

// Store implements ontology.Store using PostgreSQL
type Store struct {
	pool    DBPool
	queries ontology.Queries
}

var _ ontology.Store = (*Store)(nil)

// Options configuration for Postgres connection
type Options struct {
	ConnString string
}

// New connects to Postgres and creates the schema.
func New(ctx context.Context, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, ontology.StoreError(err, "create connection pool")
	}
	store := NewWithPool(pool)
	if err := store.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewWithPool creates a store on an existing pool.
// Useful for testing with mocks
func NewWithPool(pool DBPool) *Store {
	return &Store{pool: pool, queries: ontology.Queries{Dialect: ontology.DialectDollar}}
}

// InitSchema creates the necessary tables if they don't exist
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return ontology.StoreError(err, "create schema")
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Reset deletes every row.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ontology.StoreError(err, "begin reset")
	}
	defer tx.Rollback(ctx)

	for _, stmt := range ontology.ResetStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return ontology.StoreError(err, stmt)
		}
	}
	return ontology.StoreError(tx.Commit(ctx), "commit reset")
}

// Ingest upserts doc in a single transaction.
func (s *Store) Ingest(ctx context.Context, doc *ontology.Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ontology.StoreError(err, "begin ingest")
	}
	defer tx.Rollback(ctx)

	var queries []ontology.Query
	for _, c := range doc.Classes {
		queries = append(queries, s.queries.UpsertClass(c))
	}
	for _, inst := range doc.Instances {
		queries = append(queries, s.queries.UpsertInstance(inst))
	}
	for _, p := range doc.Properties {
		queries = append(queries, s.queries.UpsertProperty(p))
	}
	for _, r := range doc.Relations {
		queries = append(queries, s.queries.InsertRelation(r))
	}
	for _, q := range queries {
		if _, err := tx.Exec(ctx, q.SQL, q.Args...); err != nil {
			return ontology.StoreError(err, "ingest")
		}
	}
	return ontology.StoreError(tx.Commit(ctx), "commit ingest")
}

// SearchFacts returns the facts matching pred ordered by id.
func (s *Store) SearchFacts(ctx context.Context, pred ontology.TermPredicate, limit int) ([]ontology.Fact, error) {
	instances, err := s.instances(ctx, s.queries.SearchInstances(pred, limit))
	if err != nil {
		return nil, ontology.StoreError(err, "search facts")
	}
	return s.withProperties(ctx, instances)
}

// AllFacts returns every fact ordered by id.
func (s *Store) AllFacts(ctx context.Context) ([]ontology.Fact, error) {
	instances, err := s.instances(ctx, s.queries.AllInstances())
	if err != nil {
		return nil, ontology.StoreError(err, "list facts")
	}
	if len(instances) == 0 {
		return nil, nil
	}
	props, err := s.properties(ctx, s.queries.AllProperties())
	if err != nil {
		return nil, ontology.StoreError(err, "list properties")
	}
	return ontology.GroupFacts(instances, props), nil
}

// ConstraintFacts returns constraint instances ordered by id.
func (s *Store) ConstraintFacts(ctx context.Context, limit int) ([]ontology.Fact, error) {
	instances, err := s.instances(ctx, s.queries.ConstraintInstances(limit))
	if err != nil {
		return nil, ontology.StoreError(err, "constraint facts")
	}
	return s.withProperties(ctx, instances)
}

// RelationsFrom returns relations leaving ids.
func (s *Store) RelationsFrom(ctx context.Context, ids []string, limit int) ([]ontology.Relation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rels, err := s.relations(ctx, s.queries.RelationsFrom(ids, limit))
	return rels, ontology.StoreError(err, "relations from")
}

// RelationsTouching returns relations entering or leaving ids.
func (s *Store) RelationsTouching(ctx context.Context, ids []string, limit int) ([]ontology.Relation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rels, err := s.relations(ctx, s.queries.RelationsTouching(ids, limit))
	return rels, ontology.StoreError(err, "relations touching")
}

// PriceFact returns the first priced instance matching pred.
func (s *Store) PriceFact(ctx context.Context, pred ontology.TermPredicate) (*ontology.PriceFact, error) {
	q := s.queries.PriceFact(pred)
	var pf ontology.PriceFact
	err := s.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(&pf.InstanceID, &pf.Label, &pf.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ontology.StoreError(err, "price fact")
	}
	return &pf, nil
}

// MissingValues returns placeholder-valued properties ordered by id and key.
func (s *Store) MissingValues(ctx context.Context, limit int) ([]ontology.MissingValue, error) {
	q := s.queries.MissingValues(limit)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, ontology.StoreError(err, "missing values")
	}
	defer rows.Close()

	var out []ontology.MissingValue
	for rows.Next() {
		var mv ontology.MissingValue
		if err := rows.Scan(&mv.InstanceID, &mv.Label, &mv.Key, &mv.Value); err != nil {
			return nil, ontology.StoreError(err, "scan missing value")
		}
		out = append(out, mv)
	}
	return out, ontology.StoreError(rows.Err(), "missing values")
}

// Stats counts rows per table.
func (s *Store) Stats(ctx context.Context) (ontology.Stats, error) {
	var st ontology.Stats
	err := s.pool.QueryRow(ctx, ontology.StatsQuery).Scan(&st.Classes, &st.Instances, &st.Properties, &st.Relations)
	return st, ontology.StoreError(err, "stats")
}

func (s *Store) withProperties(ctx context.Context, instances []ontology.Instance) ([]ontology.Fact, error) {
	if len(instances) == 0 {
		return nil, nil
	}
	ids := make([]string, len(instances))
	for i, inst := range instances {
		ids[i] = inst.ID
	}
	props, err := s.properties(ctx, s.queries.PropertiesOf(ids))
	if err != nil {
		return nil, ontology.StoreError(err, "load properties")
	}
	return ontology.GroupFacts(instances, props), nil
}

func (s *Store) instances(ctx context.Context, q ontology.Query) ([]ontology.Instance, error) {
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ontology.Instance
	for rows.Next() {
		var inst ontology.Instance
		if err := rows.Scan(&inst.ID, &inst.ClassName, &inst.Label); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *Store) properties(ctx context.Context, q ontology.Query) ([]ontology.Property, error) {
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ontology.Property
	for rows.Next() {
		var p ontology.Property
		if err := rows.Scan(&p.InstanceID, &p.Key, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) relations(ctx context.Context, q ontology.Query) ([]ontology.Relation, error) {
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ontology.Relation
	for rows.Next() {
		var r ontology.Relation
		if err := rows.Scan(&r.Source, &r.Type, &r.Target); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
