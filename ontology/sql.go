package ontology

import (
	"fmt"
	"strings"
)

// Dialect selects the placeholder style of generated SQL.
type Dialect int

const (
	// DialectQuestion renders "?" placeholders (SQLite).
	DialectQuestion Dialect = iota
	// DialectDollar renders "$1, $2, ..." placeholders (Postgres).
	DialectDollar
)

// Query is a SQL statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

type builder struct {
	dialect Dialect
	args    []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == DialectDollar {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}

func (b *builder) list(values []string) string {
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = b.arg(v)
	}
	return strings.Join(ph, ", ")
}

func (b *builder) query(sql string) Query {
	return Query{SQL: sql, Args: b.args}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// where renders the predicate against instance alias i.
func (b *builder) where(p TermPredicate) string {
	if len(p.Terms) == 0 {
		return "1 = 0"
	}
	clauses := make([]string, 0, len(p.Terms))
	for _, term := range p.Terms {
		pattern := likePattern(term)
		var ors []string
		if p.has(FieldID) {
			ors = append(ors, "lower(i.id) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		}
		if p.has(FieldClass) {
			ors = append(ors, "lower(i.class_name) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		}
		if p.has(FieldLabel) {
			ors = append(ors, "lower(COALESCE(i.label, '')) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		}
		var props []string
		if p.has(FieldPropertyKey) {
			props = append(props, "lower(p2.key) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		}
		if p.has(FieldPropertyValue) {
			props = append(props, "lower(COALESCE(p2.value, '')) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		}
		if len(props) > 0 {
			ors = append(ors, "EXISTS (SELECT 1 FROM onto_properties p2 WHERE p2.instance_id = i.id AND ("+
				strings.Join(props, " OR ")+"))")
		}
		if len(ors) == 0 {
			continue
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	if len(clauses) == 0 {
		return "1 = 0"
	}
	return strings.Join(clauses, " OR ")
}

const instanceColumns = "SELECT i.id, i.class_name, COALESCE(i.label, '') FROM onto_instances i"

// Queries renders the statements shared by the SQL backends.
type Queries struct {
	Dialect Dialect
}

func (q Queries) b() *builder { return &builder{dialect: q.Dialect} }

// SearchInstances selects instances matching pred ordered by id.
func (q Queries) SearchInstances(pred TermPredicate, limit int) Query {
	b := q.b()
	where := b.where(pred)
	return b.query(instanceColumns + " WHERE " + where + " ORDER BY i.id LIMIT " + b.arg(limit))
}

// AllInstances selects every instance ordered by id.
func (q Queries) AllInstances() Query {
	return Query{SQL: instanceColumns + " ORDER BY i.id"}
}

// PropertiesOf selects the properties of the given instances.
func (q Queries) PropertiesOf(ids []string) Query {
	b := q.b()
	return b.query("SELECT instance_id, key, value FROM onto_properties WHERE instance_id IN (" +
		b.list(ids) + ") ORDER BY instance_id, key")
}

// AllProperties selects every property.
func (q Queries) AllProperties() Query {
	return Query{SQL: "SELECT instance_id, key, value FROM onto_properties ORDER BY instance_id, key"}
}

const relationColumns = "SELECT source_id, type, target_id FROM onto_relations"

func limitClause(b *builder, limit int) string {
	if limit <= 0 {
		return ""
	}
	return " LIMIT " + b.arg(limit)
}

// RelationsFrom selects relations whose source is one of ids.
func (q Queries) RelationsFrom(ids []string, limit int) Query {
	b := q.b()
	sql := relationColumns + " WHERE source_id IN (" + b.list(ids) + ") ORDER BY source_id, type, target_id"
	return b.query(sql + limitClause(b, limit))
}

// RelationsTouching selects relations whose source or target is one of ids.
func (q Queries) RelationsTouching(ids []string, limit int) Query {
	b := q.b()
	sources := b.list(ids)
	targets := b.list(ids)
	sql := relationColumns + " WHERE source_id IN (" + sources + ") OR target_id IN (" + targets +
		") ORDER BY source_id, type, target_id"
	return b.query(sql + limitClause(b, limit))
}

// PriceFact selects the first instance matching pred with a price property.
func (q Queries) PriceFact(pred TermPredicate) Query {
	b := q.b()
	key := b.arg(PriceKey)
	where := b.where(pred)
	return b.query("SELECT i.id, COALESCE(i.label, ''), p.value FROM onto_instances i" +
		" JOIN onto_properties p ON p.instance_id = i.id" +
		" WHERE p.key = " + key + " AND (" + where + ") ORDER BY i.id LIMIT 1")
}

// ConstraintInstances selects constraint instances ordered by id.
func (q Queries) ConstraintInstances(limit int) Query {
	b := q.b()
	classes := b.list(ConstraintClasses)
	keys := b.list(ConstraintKeys)
	return b.query(instanceColumns +
		" WHERE lower(i.class_name) IN (" + classes + ")" +
		" OR EXISTS (SELECT 1 FROM onto_properties p2 WHERE p2.instance_id = i.id AND lower(p2.key) IN (" + keys + "))" +
		" ORDER BY i.id LIMIT " + b.arg(limit))
}

// MissingValues selects properties whose value is a placeholder.
func (q Queries) MissingValues(limit int) Query {
	b := q.b()
	values := b.list(PlaceholderValues)
	return b.query("SELECT i.id, COALESCE(i.label, ''), p.key, COALESCE(p.value, '') FROM onto_instances i" +
		" JOIN onto_properties p ON p.instance_id = i.id" +
		" WHERE lower(COALESCE(p.value, '')) IN (" + values + ")" +
		" ORDER BY i.id, p.key LIMIT " + b.arg(limit))
}

// UpsertClass inserts or updates a class.
func (q Queries) UpsertClass(c Class) Query {
	b := q.b()
	return b.query("INSERT INTO onto_classes (name, description) VALUES (" + b.arg(c.Name) + ", " +
		b.arg(c.Description) + ") ON CONFLICT (name) DO UPDATE SET description = excluded.description")
}

// UpsertInstance inserts or updates an instance. An empty label is stored as null.
func (q Queries) UpsertInstance(inst Instance) Query {
	b := q.b()
	var label any
	if inst.Label != "" {
		label = inst.Label
	}
	return b.query("INSERT INTO onto_instances (id, class_name, label) VALUES (" + b.arg(inst.ID) + ", " +
		b.arg(inst.ClassName) + ", " + b.arg(label) +
		") ON CONFLICT (id) DO UPDATE SET class_name = excluded.class_name, label = excluded.label")
}

// UpsertProperty inserts or updates a property.
func (q Queries) UpsertProperty(p Property) Query {
	b := q.b()
	var value any
	if p.Value.Valid {
		value = p.Value.String
	}
	return b.query("INSERT INTO onto_properties (instance_id, key, value) VALUES (" + b.arg(p.InstanceID) + ", " +
		b.arg(p.Key) + ", " + b.arg(value) +
		") ON CONFLICT (instance_id, key) DO UPDATE SET value = excluded.value")
}

// InsertRelation inserts a relation, ignoring duplicates.
func (q Queries) InsertRelation(r Relation) Query {
	b := q.b()
	return b.query("INSERT INTO onto_relations (source_id, type, target_id) VALUES (" + b.arg(r.Source) + ", " +
		b.arg(r.Type) + ", " + b.arg(r.Target) + ") ON CONFLICT (source_id, type, target_id) DO NOTHING")
}

// ResetStatements delete every row, relations first.
var ResetStatements = []string{
	"DELETE FROM onto_relations",
	"DELETE FROM onto_properties",
	"DELETE FROM onto_instances",
	"DELETE FROM onto_classes",
}

// StatsQuery counts the rows of every table.
const StatsQuery = "SELECT (SELECT COUNT(*) FROM onto_classes), (SELECT COUNT(*) FROM onto_instances)," +
	" (SELECT COUNT(*) FROM onto_properties), (SELECT COUNT(*) FROM onto_relations)"
