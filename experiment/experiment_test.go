package experiment

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ontollm/ingest"
	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/retrieval"
	"github.com/smallnest/ontollm/store/memory"
)

const sampleDir = "../data/ontologies"

type fakeRunner struct {
	mu     sync.Mutex
	calls  []string
	failOn string
	delay  time.Duration
	active atomic.Int32
	peak   atomic.Int32
	onRun  func(methodID string)
}

func (f *fakeRunner) Run(ctx context.Context, question, methodID string, _ prebuilt.EventSink) (*prebuilt.ChatResult, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.onRun != nil {
		f.onRun(methodID)
	}
	f.mu.Lock()
	f.calls = append(f.calls, methodID)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if methodID == f.failOn {
		return nil, errors.New("model down")
	}
	return &prebuilt.ChatResult{
		Method: retrieval.Method(methodID),
		Prompt: "prompt " + methodID,
		Answer: "answer " + methodID,
	}, nil
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []retrieval.Method
	}{
		{"empty", nil, retrieval.Methods},
		{"all", []string{"ALL"}, retrieval.Methods},
		{"ordered without duplicates", []string{"method3", " Method1 ", "method3"}, []retrieval.Method{retrieval.Method1, retrieval.Method3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Resolve([]string{"method9"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
	assert.Contains(t, err.Error(), "method1, method2, method3, method4, method5, method6, method7, method8, all")
}

func TestRunAllMethodsInParallel(t *testing.T) {
	runner := &fakeRunner{delay: 20 * time.Millisecond}
	results, err := Run(context.Background(), runner, memory.New(), Options{Question: "빠나 우유 가격"})
	require.NoError(t, err)

	require.Len(t, results, len(retrieval.Methods))
	for i, r := range results {
		m := retrieval.Methods[i]
		assert.Equal(t, Result{
			MethodID:   m,
			MethodName: retrieval.Info(m).Name,
			Question:   "빠나 우유 가격",
			Prompt:     "prompt " + string(m),
			Answer:     "answer " + string(m),
		}, r)
	}
	assert.Greater(t, runner.peak.Load(), int32(1))
}

func TestRunParallelLimit(t *testing.T) {
	runner := &fakeRunner{delay: 5 * time.Millisecond}
	_, err := Run(context.Background(), runner, memory.New(), Options{Question: "q", Parallel: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
	assert.Len(t, runner.calls, 8)
}

func TestRunFailure(t *testing.T) {
	runner := &fakeRunner{failOn: "method2"}
	_, err := Run(context.Background(), runner, memory.New(), Options{Question: "q", Methods: []string{"method1", "method2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run method2")

	_, err = Run(context.Background(), runner, memory.New(), Options{Question: "q", Methods: []string{"bogus"}})
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestRunAutoIngestSequential(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	var loaded []int
	runner := &fakeRunner{}
	runner.onRun = func(methodID string) {
		st, err := store.Stats(ctx)
		if assert.NoError(t, err) {
			loaded = append(loaded, st.Instances)
		}
	}

	results, err := Run(ctx, runner, store, Options{
		Question:    "q",
		Methods:     []string{"method7", "method4"},
		AutoIngest:  true,
		OntologyDir: sampleDir,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"method4", "method7"}, runner.calls)
	assert.Equal(t, int32(1), runner.peak.Load())

	var want []int
	for _, m := range []retrieval.Method{retrieval.Method4, retrieval.Method7} {
		path, err := ingest.OntologyFor(m, sampleDir)
		require.NoError(t, err)
		doc, err := ingest.ParseFile(path)
		require.NoError(t, err)
		want = append(want, len(doc.Instances))
	}
	assert.Equal(t, want, loaded)
}

func TestRunAutoIngestMissingOntology(t *testing.T) {
	_, err := Run(context.Background(), &fakeRunner{}, memory.New(), Options{
		Question:    "q",
		Methods:     []string{"method1"},
		AutoIngest:  true,
		OntologyDir: filepath.Join(t.TempDir(), "none"),
	})
	assert.True(t, errors.Is(err, ingest.ErrOntologyNotFound))
}

func TestFormatText(t *testing.T) {
	out := FormatText([]Result{{MethodID: retrieval.Method1, MethodName: "Keyword Grounding", Answer: "3000원"}})
	assert.Equal(t, "[method1] Keyword Grounding\n3000원\n"+strings.Repeat("-", 80)+"\n", out)
}
