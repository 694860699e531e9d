package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/store/storetest"
)

func TestSqliteStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ontology.Store {
		s, err := New(Options{Path: ":memory:"})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSqliteStore_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ontology.db")

	s, err := New(Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Ingest(ctx, storetest.Fixture()))
	require.NoError(t, s.Close())

	reopened, err := New(Options{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	st, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Instances)
}

func TestSqliteStore_ClosedDatabaseIsStoreError(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.AllFacts(context.Background())
	assert.True(t, errors.Is(err, ontology.ErrStore))
}
