package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/experiment"
	"github.com/smallnest/ontollm/store/sqlite"
)

// setup runs the test in an empty directory with a local model and
// logging off. It returns the SQLite path used as store.
func setup(t *testing.T) string {
	t.Helper()
	ontologyDir, err := filepath.Abs("../../data/ontologies")
	require.NoError(t, err)
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv("LOG_LEVEL", "NONE")
	t.Setenv("LLM_PROVIDER", "local")
	t.Setenv("MEMORI_ENABLED", "0")
	t.Setenv("ONTOLOGY_STORE_URL", "")
	t.Setenv("ONTOLOGY_DIR", ontologyDir)
	path := filepath.Join(dir, "db", "onto.db")
	t.Setenv("SQLITE_PATH", path)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitDB(t *testing.T) {
	path := setup(t)

	out, err := run(t, "init-db")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized schema at "+path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestIngest(t *testing.T) {
	path := setup(t)

	out, err := run(t, "ingest", "--method", "method3")
	require.NoError(t, err)
	assert.Contains(t, out, "method3_og_rag.yaml -> "+path)

	grocery, err := filepath.Abs(filepath.Join(os.Getenv("ONTOLOGY_DIR"), "..", "..", "ingest", "testdata", "grocery.yaml"))
	require.NoError(t, err)
	out, err = run(t, "ingest", "--yaml", grocery, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "classes=2 instances=2 properties=7 relations=1")

	s, err := sqlite.New(sqlite.Options{Path: path})
	require.NoError(t, err)
	defer s.Close()
	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Instances)
}

func TestIngestFlags(t *testing.T) {
	setup(t)

	_, err := run(t, "ingest")
	assert.ErrorContains(t, err, "one of --yaml or --method is required")

	_, err = run(t, "ingest", "--method", "method9")
	assert.ErrorContains(t, err, "no ontology mapping for method")

	_, err = run(t, "ingest", "--yaml", "a.yaml", "--method", "method1")
	assert.Error(t, err)
}

func TestChatDryRun(t *testing.T) {
	setup(t)
	_, err := run(t, "ingest", "--method", "method1")
	require.NoError(t, err)

	out, err := run(t, "chat", "--dry-run", "빠나", "우유", "가격")
	require.NoError(t, err)
	assert.Contains(t, out, "method: method1")
	assert.Contains(t, out, "3000원")
	assert.Contains(t, out, "빠나 우유 가격")
	assert.Contains(t, out, "tokens question=")
}

func TestExpRejectsBadInput(t *testing.T) {
	setup(t)

	_, err := run(t, "exp", "q", "--format", "yaml")
	assert.ErrorContains(t, err, `unknown format "yaml"`)

	_, err = run(t, "exp", "q", "--method", "method9")
	assert.True(t, errors.Is(err, experiment.ErrUnknownMethod))
}

func TestSqlitePath(t *testing.T) {
	tests := []struct {
		url  string
		path string
		ok   bool
	}{
		{"./data/onto.db", "./data/onto.db", true},
		{"sqlite://x/y.db", "x/y.db", true},
		{"memory://", "", false},
		{"postgres://u@h/db", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		path, ok := sqlitePath(tt.url)
		assert.Equal(t, tt.path, path, tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
	}
}
