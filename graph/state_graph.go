package graph

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Node is a named state transformation.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// StateGraph is a graph of nodes over a state of type S.
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	edges            []Edge
	conditionalEdges map[string]func(ctx context.Context, state S) string
	entryPoint       string
	listeners        []NodeListener[S]
	maxSteps         int
}

// NewStateGraph returns an empty graph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
		maxSteps:         DefaultMaxSteps,
	}
}

// AddNode adds or replaces a node.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{Name: name, Description: description, Function: fn}
}

// AddEdge adds an edge from one node to another node or END.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes from to the node returned by condition. It
// takes precedence over plain edges leaving from.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the first node.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetMaxSteps sets the node execution bound; values below 1 are ignored.
func (g *StateGraph[S]) SetMaxSteps(n int) {
	if n >= 1 {
		g.maxSteps = n
	}
}

// AddListener registers a listener for every node.
func (g *StateGraph[S]) AddListener(l NodeListener[S]) {
	g.listeners = append(g.listeners, l)
}

// StateRunnable is a compiled StateGraph.
type StateRunnable[S any] struct {
	nodes            map[string]Node[S]
	next             map[string]string
	conditionalEdges map[string]func(ctx context.Context, state S) string
	entryPoint       string
	listeners        []NodeListener[S]
	maxSteps         int
}

// Compile checks that the entry point and every edge endpoint exist and
// freezes the graph. Later changes to g do not affect the runnable.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "entry point %q", g.entryPoint)
	}

	r := &StateRunnable[S]{
		nodes:            make(map[string]Node[S], len(g.nodes)),
		next:             make(map[string]string, len(g.edges)),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string, len(g.conditionalEdges)),
		entryPoint:       g.entryPoint,
		listeners:        append([]NodeListener[S](nil), g.listeners...),
		maxSteps:         g.maxSteps,
	}
	for name, n := range g.nodes {
		r.nodes[name] = n
	}
	for from, cond := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, errors.Wrapf(ErrNodeNotFound, "conditional edge from %q", from)
		}
		r.conditionalEdges[from] = cond
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, errors.Wrapf(ErrNodeNotFound, "edge from %q", e.From)
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			return nil, errors.Wrapf(ErrNodeNotFound, "edge to %q", e.To)
		}
		if _, dup := r.next[e.From]; !dup {
			r.next[e.From] = e.To
		}
	}
	return r, nil
}

// Invoke runs the graph from the entry point and returns the final state.
// On failure it returns the state as it was before the failing node and
// the node error as a *NodeError.
func (r *StateRunnable[S]) Invoke(ctx context.Context, state S) (S, error) {
	current := r.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= r.maxSteps {
			return state, errors.Wrapf(ErrMaxStepsExceeded, "after %d steps", steps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := r.nodes[current]
		if !ok {
			return state, errors.Wrapf(ErrNodeNotFound, "%q", current)
		}

		notify(ctx, r.listeners, NodeEventStart, node.Name, state, nil)
		out, err := node.Function(ctx, state)
		if err != nil {
			notify(ctx, r.listeners, NodeEventError, node.Name, state, err)
			return state, &NodeError{Node: node.Name, Err: err}
		}
		state = out
		notify(ctx, r.listeners, NodeEventComplete, node.Name, state, nil)

		current, err = r.route(ctx, node.Name, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func (r *StateRunnable[S]) route(ctx context.Context, from string, state S) (string, error) {
	if cond, ok := r.conditionalEdges[from]; ok {
		to := cond(ctx, state)
		if _, known := r.nodes[to]; !known && to != END {
			return "", errors.Wrapf(ErrNodeNotFound, "conditional edge from %q to %q", from, to)
		}
		return to, nil
	}
	if to, ok := r.next[from]; ok {
		return to, nil
	}
	return "", errors.Wrapf(ErrNoOutgoingEdge, "%q", from)
}
