// Package ontology defines the fact model (classes, instances, properties
// and relations), the Store contract every backend implements and the
// typed term predicate used to express substring lookups without
// concatenating SQL.
package ontology
