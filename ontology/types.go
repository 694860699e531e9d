package ontology

import (
	"database/sql"
	"fmt"
	"strings"
)

// Class is a category of instances.
type Class struct {
	Name        string
	Description string
}

// Instance is a named entity. Label is empty when absent.
type Instance struct {
	ID        string
	ClassName string
	Label     string
}

// Property is a key/value attribute of an instance. A null Value is kept
// distinct from the empty string.
type Property struct {
	InstanceID string
	Key        string
	Value      sql.NullString
}

// Relation is a directed, typed edge between two instance ids.
type Relation struct {
	Source string
	Type   string
	Target string
}

// String renders the relation as "s -[t]-> d".
func (r Relation) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", r.Source, r.Type, r.Target)
}

// Fact is an instance together with its properties ordered by key.
type Fact struct {
	Instance
	Properties []Property
}

// PropsText renders the properties as "k=v; k=v". Properties with a null
// value are omitted.
func (f Fact) PropsText() string {
	parts := make([]string, 0, len(f.Properties))
	for _, p := range f.Properties {
		if !p.Value.Valid {
			continue
		}
		parts = append(parts, p.Key+"="+p.Value.String)
	}
	return strings.Join(parts, "; ")
}

// Property returns the property with the given key.
func (f Fact) Property(key string) (Property, bool) {
	for _, p := range f.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// PriceFact is the first instance matching a price lookup.
type PriceFact struct {
	InstanceID string
	Label      string
	Price      sql.NullString
}

// MissingValue is a property row whose value is empty or a placeholder.
type MissingValue struct {
	InstanceID string `json:"id"`
	Label      string `json:"label"`
	Key        string `json:"missing_key"`
	Value      string `json:"value"`
}

// Stats counts the rows held by a store.
type Stats struct {
	Classes    int `json:"classes"`
	Instances  int `json:"instances"`
	Properties int `json:"properties"`
	Relations  int `json:"relations"`
}

// Document is one ingestion batch. Stores write classes, then instances,
// then properties, then relations.
type Document struct {
	Classes    []Class
	Instances  []Instance
	Properties []Property
	Relations  []Relation
}

// NullValue builds a property value; nil means null.
func NullValue(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// Value builds a non-null property value.
func Value(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

// GroupFacts attaches properties to their instances, keeping the order of
// instances. Properties for unknown instances are dropped.
func GroupFacts(instances []Instance, props []Property) []Fact {
	facts := make([]Fact, len(instances))
	index := make(map[string]int, len(instances))
	for i, inst := range instances {
		facts[i] = Fact{Instance: inst}
		index[inst.ID] = i
	}
	for _, p := range props {
		if i, ok := index[p.InstanceID]; ok {
			facts[i].Properties = append(facts[i].Properties, p)
		}
	}
	return facts
}
