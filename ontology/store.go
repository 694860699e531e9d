package ontology

import "context"

// Constraint-ish classes and property keys recognised by ConstraintFacts.
var (
	ConstraintClasses = []string{"constraint", "rule", "policy", "guardrail"}
	ConstraintKeys    = []string{"constraint", "rule", "template", "policy", "guardrail"}
)

// PlaceholderValues are the lowercased property values MissingValues
// treats as absent. A null value counts as "".
var PlaceholderValues = []string{"", "unknown", "todo", "n/a", "?"}

// PriceKey is the property key holding a price in KRW.
const PriceKey = "price_krw"

// Store is the fact store contract. Instances come back ordered by id,
// properties by key and relations by (source, type, target).
type Store interface {
	// InitSchema creates the tables if they do not exist.
	InitSchema(ctx context.Context) error
	// Reset deletes relations, properties, instances and classes.
	Reset(ctx context.Context) error
	// Ingest upserts a document. Re-ingesting the same document is a no-op.
	Ingest(ctx context.Context, doc *Document) error

	// SearchFacts returns the facts matching pred, capped at limit.
	SearchFacts(ctx context.Context, pred TermPredicate, limit int) ([]Fact, error)
	// AllFacts returns every fact in the store.
	AllFacts(ctx context.Context) ([]Fact, error)
	// RelationsFrom returns relations whose source is one of ids.
	// A limit <= 0 means no cap.
	RelationsFrom(ctx context.Context, ids []string, limit int) ([]Relation, error)
	// RelationsTouching returns relations whose source or target is one of ids.
	RelationsTouching(ctx context.Context, ids []string, limit int) ([]Relation, error)
	// PriceFact returns the first instance matching pred that owns a
	// price_krw property, or nil.
	PriceFact(ctx context.Context, pred TermPredicate) (*PriceFact, error)
	// ConstraintFacts returns instances of a constraint class or owning a
	// constraint property key.
	ConstraintFacts(ctx context.Context, limit int) ([]Fact, error)
	// MissingValues returns properties whose value is a placeholder.
	MissingValues(ctx context.Context, limit int) ([]MissingValue, error)

	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// IsMissingValue reports whether a property value counts as missing.
func IsMissingValue(v string) bool {
	low := toLower(v)
	for _, p := range PlaceholderValues {
		if low == p {
			return true
		}
	}
	return false
}

// IsConstraintFact reports whether f belongs to a constraint class or owns
// a constraint property key.
func IsConstraintFact(f Fact) bool {
	cls := toLower(f.ClassName)
	for _, c := range ConstraintClasses {
		if cls == c {
			return true
		}
	}
	for _, p := range f.Properties {
		key := toLower(p.Key)
		for _, k := range ConstraintKeys {
			if key == k {
				return true
			}
		}
	}
	return false
}
