package ontology

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrStore marks every failure raised by a fact store backend.
	ErrStore = errors.New("ontology store failure")

	// ErrInvalidDocument is returned when an ingestion document is malformed.
	ErrInvalidDocument = errors.New("invalid ontology document")
)

// StoreError wraps err with the failing operation and marks it with
// ErrStore. It returns nil when err is nil.
func StoreError(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "ontology store: %s", op), ErrStore)
}
