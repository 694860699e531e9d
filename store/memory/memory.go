// Package memory provides an in-process ontology fact store, used for
// tests, demos and the "memory://" store URL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/smallnest/ontollm/ontology"
)

// Store implements ontology.Store with maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	classes    map[string]ontology.Class
	instances  map[string]ontology.Instance
	properties map[string]map[string]ontology.Property
	relations  map[ontology.Relation]struct{}
}

var _ ontology.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.clear()
	return s
}

func (s *Store) clear() {
	s.classes = make(map[string]ontology.Class)
	s.instances = make(map[string]ontology.Instance)
	s.properties = make(map[string]map[string]ontology.Property)
	s.relations = make(map[ontology.Relation]struct{})
}

// InitSchema is a no-op.
func (s *Store) InitSchema(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Reset deletes everything.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	return nil
}

// Ingest upserts doc.
func (s *Store) Ingest(ctx context.Context, doc *ontology.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range doc.Classes {
		s.classes[c.Name] = c
	}
	for _, inst := range doc.Instances {
		s.instances[inst.ID] = inst
	}
	for _, p := range doc.Properties {
		byKey, ok := s.properties[p.InstanceID]
		if !ok {
			byKey = make(map[string]ontology.Property)
			s.properties[p.InstanceID] = byKey
		}
		byKey[p.Key] = p
	}
	for _, r := range doc.Relations {
		s.relations[r] = struct{}{}
	}
	return nil
}

// facts returns every fact ordered by id. Callers hold the read lock.
func (s *Store) facts() []ontology.Fact {
	ids := make([]string, 0, len(s.instances))
	for id := range s.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ontology.Fact, 0, len(ids))
	for _, id := range ids {
		out = append(out, ontology.Fact{Instance: s.instances[id], Properties: s.propertiesOf(id)})
	}
	return out
}

func (s *Store) propertiesOf(id string) []ontology.Property {
	byKey := s.properties[id]
	if len(byKey) == 0 {
		return nil
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]ontology.Property, len(keys))
	for i, k := range keys {
		props[i] = byKey[k]
	}
	return props
}

func (s *Store) filter(limit int, keep func(ontology.Fact) bool) []ontology.Fact {
	var out []ontology.Fact
	for _, f := range s.facts() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// SearchFacts returns the facts matching pred ordered by id.
func (s *Store) SearchFacts(ctx context.Context, pred ontology.TermPredicate, limit int) ([]ontology.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	return s.filter(limit, pred.Matches), nil
}

// AllFacts returns every fact ordered by id.
func (s *Store) AllFacts(ctx context.Context) ([]ontology.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts := s.facts()
	if len(facts) == 0 {
		return nil, nil
	}
	return facts, nil
}

// ConstraintFacts returns constraint instances ordered by id.
func (s *Store) ConstraintFacts(ctx context.Context, limit int) ([]ontology.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	return s.filter(limit, ontology.IsConstraintFact), nil
}

func (s *Store) sortedRelations(limit int, keep func(ontology.Relation) bool) []ontology.Relation {
	var out []ontology.Relation
	for r := range s.relations {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Target < b.Target
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// RelationsFrom returns relations leaving ids.
func (s *Store) RelationsFrom(ctx context.Context, ids []string, limit int) ([]ontology.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := idSet(ids)
	return s.sortedRelations(limit, func(r ontology.Relation) bool { return set[r.Source] }), nil
}

// RelationsTouching returns relations entering or leaving ids.
func (s *Store) RelationsTouching(ctx context.Context, ids []string, limit int) ([]ontology.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := idSet(ids)
	return s.sortedRelations(limit, func(r ontology.Relation) bool { return set[r.Source] || set[r.Target] }), nil
}

// PriceFact returns the first priced instance matching pred.
func (s *Store) PriceFact(ctx context.Context, pred ontology.TermPredicate) (*ontology.PriceFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.facts() {
		price, ok := f.Property(ontology.PriceKey)
		if !ok || !pred.Matches(f) {
			continue
		}
		return &ontology.PriceFact{InstanceID: f.ID, Label: f.Label, Price: price.Value}, nil
	}
	return nil, nil
}

// MissingValues returns placeholder-valued properties ordered by id and key.
func (s *Store) MissingValues(ctx context.Context, limit int) ([]ontology.MissingValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	var out []ontology.MissingValue
	for _, f := range s.facts() {
		for _, p := range f.Properties {
			if len(out) >= limit {
				return out, nil
			}
			if ontology.IsMissingValue(p.Value.String) {
				out = append(out, ontology.MissingValue{
					InstanceID: f.ID,
					Label:      f.Label,
					Key:        p.Key,
					Value:      p.Value.String,
				})
			}
		}
	}
	return out, nil
}

// Stats counts the stored rows.
func (s *Store) Stats(ctx context.Context) (ontology.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var props int
	for _, byKey := range s.properties {
		props += len(byKey)
	}
	return ontology.Stats{
		Classes:    len(s.classes),
		Instances:  len(s.instances),
		Properties: props,
		Relations:  len(s.relations),
	}, nil
}
