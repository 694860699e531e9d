package ontology

import (
	"strings"
)

// Field is an instance attribute a term can be matched against.
type Field int

const (
	FieldID Field = iota
	FieldClass
	FieldLabel
	FieldPropertyKey
	FieldPropertyValue
)

// LookupFields are the five fields searched by lexical lookups.
var LookupFields = []Field{FieldID, FieldClass, FieldLabel, FieldPropertyKey, FieldPropertyValue}

// PriceFields drop the class, matching the price lookup.
var PriceFields = []Field{FieldID, FieldLabel, FieldPropertyKey, FieldPropertyValue}

// TermPredicate matches a fact when any term is a case-insensitive
// substring of any of the fields. Terms are expected lowercased; the empty
// term matches everything. A predicate without terms matches nothing.
//
// Case folding covers ASCII only, like SQLite's lower(). Hangul has no
// case, so only other scripts are affected: "ÉCLAIR" does not match
// "éclair". Postgres lower() folds per the database locale and may match
// where SQLite and Matches do not.
type TermPredicate struct {
	Terms  []string
	Fields []Field
}

// LookupPredicate searches terms across all five lookup fields.
func LookupPredicate(terms []string) TermPredicate {
	return TermPredicate{Terms: terms, Fields: LookupFields}
}

// PricePredicate searches terms across id, label and properties.
func PricePredicate(terms []string) TermPredicate {
	return TermPredicate{Terms: terms, Fields: PriceFields}
}

func (p TermPredicate) has(f Field) bool {
	for _, x := range p.Fields {
		if x == f {
			return true
		}
	}
	return false
}

// Matches evaluates the predicate in Go.
func (p TermPredicate) Matches(f Fact) bool {
	for _, term := range p.Terms {
		if p.matchesTerm(f, term) {
			return true
		}
	}
	return false
}

func (p TermPredicate) matchesTerm(f Fact, term string) bool {
	if p.has(FieldID) && strings.Contains(toLower(f.ID), term) {
		return true
	}
	if p.has(FieldClass) && strings.Contains(toLower(f.ClassName), term) {
		return true
	}
	if p.has(FieldLabel) && strings.Contains(toLower(f.Label), term) {
		return true
	}
	for _, prop := range f.Properties {
		if p.has(FieldPropertyKey) && strings.Contains(toLower(prop.Key), term) {
			return true
		}
		if p.has(FieldPropertyValue) && strings.Contains(toLower(prop.Value.String), term) {
			return true
		}
	}
	return false
}

// toLower folds A-Z only.
func toLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
