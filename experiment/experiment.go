package experiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/ontollm/ingest"
	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/retrieval"
)

// All selects every method.
const All = "all"

// ErrUnknownMethod is returned for method ids outside method1..method8.
var ErrUnknownMethod = errors.New("unknown method")

// Runner answers one question. *prebuilt.OntologyAgent implements it.
type Runner interface {
	Run(ctx context.Context, question, methodID string, sink prebuilt.EventSink) (*prebuilt.ChatResult, error)
}

var _ Runner = (*prebuilt.OntologyAgent)(nil)

// Options selects what Run executes.
type Options struct {
	Question string
	// Methods are method ids or "all". Empty means all.
	Methods []string
	// AutoIngest loads each method's ontology into the store before running
	// it. Methods then run one at a time.
	AutoIngest  bool
	OntologyDir string
	// Parallel caps concurrent runs without AutoIngest. Zero runs every
	// method at once.
	Parallel int
}

// Result is the outcome of one method.
type Result struct {
	MethodID   retrieval.Method `json:"method_id"`
	MethodName string           `json:"method_name"`
	Question   string           `json:"question"`
	Prompt     string           `json:"prompt"`
	Answer     string           `json:"answer"`
}

// Resolve maps ids to methods in method order without duplicates.
func Resolve(ids []string) ([]retrieval.Method, error) {
	want := make(map[retrieval.Method]bool)
	for _, id := range ids {
		if strings.EqualFold(strings.TrimSpace(id), All) {
			return retrieval.Methods, nil
		}
		m, ok := retrieval.LookupMethod(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownMethod, "%q, use one of: %s, %s", id, joinMethods(), All)
		}
		want[m] = true
	}
	if len(want) == 0 {
		return retrieval.Methods, nil
	}
	var out []retrieval.Method
	for _, m := range retrieval.Methods {
		if want[m] {
			out = append(out, m)
		}
	}
	return out, nil
}

func joinMethods() string {
	names := make([]string, len(retrieval.Methods))
	for i, m := range retrieval.Methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Run answers opts.Question with every selected method. Results follow
// method order. The first failure cancels the remaining runs.
func Run(ctx context.Context, runner Runner, store ontology.Store, opts Options) ([]Result, error) {
	methods, err := Resolve(opts.Methods)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(methods))

	runOne := func(ctx context.Context, i int) error {
		m := methods[i]
		res, err := runner.Run(ctx, opts.Question, string(m), nil)
		if err != nil {
			return errors.Wrapf(err, "run %s", m)
		}
		results[i] = Result{
			MethodID:   m,
			MethodName: retrieval.Info(m).Name,
			Question:   opts.Question,
			Prompt:     res.Prompt,
			Answer:     res.Answer,
		}
		return nil
	}

	if opts.AutoIngest {
		for i, m := range methods {
			if _, err := ingest.AutoIngest(ctx, store, m, opts.OntologyDir); err != nil {
				return nil, errors.Wrapf(err, "auto ingest %s", m)
			}
			if err := runOne(ctx, i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i := range methods {
		g.Go(func() error { return runOne(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FormatText renders results the way the exp command prints them.
func FormatText(results []Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "[%s] %s\n%s\n%s\n", r.MethodID, r.MethodName, r.Answer, strings.Repeat("-", 80))
	}
	return b.String()
}
