// Package sqlite provides the SQLite-backed ontology fact store.
//
// The store keeps four tables (onto_classes, onto_instances,
// onto_properties, onto_relations) and implements ontology.Store with
// upserts so that ingesting the same document twice is a no-op.
//
//	store, err := sqlite.New(sqlite.Options{Path: "./ontology.db"})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
// Foreign keys are declared but not enforced; lookups never assume that
// an instance's class row exists.
package sqlite
