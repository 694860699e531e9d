package ingest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/retrieval"
)

// DefaultDir is the directory holding the per-method ontology documents.
const DefaultDir = "data/ontologies"

var (
	// ErrUnknownMethod is returned for a method without an ontology document.
	ErrUnknownMethod = errors.New("no ontology mapping for method")

	// ErrOntologyNotFound is returned when a method's document does not exist.
	ErrOntologyNotFound = errors.New("ontology file not found")
)

// Load initialises the schema of store and upserts doc.
func Load(ctx context.Context, store ontology.Store, doc *ontology.Document) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	return store.Ingest(ctx, doc)
}

// LoadFile parses path and upserts it into store.
func LoadFile(ctx context.Context, store ontology.Store, path string) (*ontology.Document, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := Load(ctx, store, doc); err != nil {
		return nil, errors.Wrapf(err, "ingest %s", path)
	}
	return doc, nil
}

// Reset removes every relation, property, instance and class from store.
func Reset(ctx context.Context, store ontology.Store) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	return store.Reset(ctx)
}

// OntologyFor returns the path of the document of method m under dir.
func OntologyFor(m retrieval.Method, dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	for _, info := range retrieval.Catalog {
		if info.ID == m {
			return filepath.Join(dir, info.OntologyFile), nil
		}
	}
	return "", errors.Wrapf(ErrUnknownMethod, "%q", m)
}

// AutoIngest replaces the contents of store with the document of method m.
func AutoIngest(ctx context.Context, store ontology.Store, m retrieval.Method, dir string) (string, error) {
	path, err := OntologyFor(m, dir)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrOntologyNotFound, "%s", path)
		}
		return "", errors.Wrapf(err, "stat %s", path)
	}

	doc, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	if err := Reset(ctx, store); err != nil {
		return "", err
	}
	if err := store.Ingest(ctx, doc); err != nil {
		return "", errors.Wrapf(err, "ingest %s", path)
	}
	return path, nil
}
