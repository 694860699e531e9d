package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	event NodeEvent
	node  string
	count int
	err   string
}

func TestListenersSeeEventsInOrder(t *testing.T) {
	var events []recorded
	g := NewStateGraph[TestState]()
	g.AddNode("a", "", visit("a"))
	g.AddNode("b", "", visit("b"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.AddListener(NodeListenerFunc[TestState](func(ctx context.Context, event NodeEvent, node string, s TestState, err error) {
		events = append(events, recorded{event: event, node: node, count: s.Count})
	}))

	runnable, err := g.Compile()
	require.NoError(t, err)
	_, err = runnable.Invoke(context.Background(), TestState{})
	require.NoError(t, err)

	assert.Equal(t, []recorded{
		{event: NodeEventStart, node: "a", count: 0},
		{event: NodeEventComplete, node: "a", count: 1},
		{event: NodeEventStart, node: "b", count: 1},
		{event: NodeEventComplete, node: "b", count: 2},
	}, events)
}

func TestListenersSeeNodeErrors(t *testing.T) {
	boom := errors.New("boom")
	var events []recorded
	g := NewStateGraph[TestState]()
	g.AddNode("a", "", visit("a"))
	g.AddNode("fail", "", func(ctx context.Context, s TestState) (TestState, error) {
		return s, boom
	})
	g.SetEntryPoint("a")
	g.AddEdge("a", "fail")
	g.AddEdge("fail", END)
	g.AddListener(NodeListenerFunc[TestState](func(ctx context.Context, event NodeEvent, node string, s TestState, err error) {
		r := recorded{event: event, node: node, count: s.Count}
		if err != nil {
			r.err = err.Error()
		}
		events = append(events, r)
	}))

	runnable, err := g.Compile()
	require.NoError(t, err)
	final, err := runnable.Invoke(context.Background(), TestState{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, strings.HasPrefix(err.Error(), "node fail: "))
	var nodeErr *NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "fail", nodeErr.Node)
	assert.Equal(t, boom, nodeErr.Err)
	assert.Equal(t, 1, final.Count)

	require.Len(t, events, 4)
	assert.Equal(t, recorded{event: NodeEventError, node: "fail", count: 1, err: "boom"}, events[3])
}

func TestPanickingListenerDoesNotStopRun(t *testing.T) {
	calls := 0
	g := NewStateGraph[TestState]()
	g.AddNode("a", "", visit("a"))
	g.SetEntryPoint("a")
	g.AddEdge("a", END)
	g.AddListener(NodeListenerFunc[TestState](func(context.Context, NodeEvent, string, TestState, error) {
		panic("listener")
	}))
	g.AddListener(NodeListenerFunc[TestState](func(context.Context, NodeEvent, string, TestState, error) {
		calls++
	}))

	runnable, err := g.Compile()
	require.NoError(t, err)
	final, err := runnable.Invoke(context.Background(), TestState{})
	require.NoError(t, err)
	assert.Equal(t, 1, final.Count)
	assert.Equal(t, 2, calls)
}
