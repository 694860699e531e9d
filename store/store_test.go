package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/store/memory"
	"github.com/smallnest/ontollm/store/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, "memory://")
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("sqlite scheme", func(t *testing.T) {
		s, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "a.db"))
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)
	})

	t.Run("bare path", func(t *testing.T) {
		s, err := Open(ctx, filepath.Join(t.TempDir(), "b.db"))
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Open(ctx, "falkordb://localhost")
		assert.True(t, errors.Is(err, ErrUnsupportedURL))

		_, err = Open(ctx, " ")
		assert.True(t, errors.Is(err, ErrUnsupportedURL))
	})
}
