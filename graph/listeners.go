package graph

import (
	"context"
)

// NodeEvent is the kind of a node lifecycle event.
type NodeEvent string

const (
	// NodeEventStart is sent before a node runs, with its input state.
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete is sent after a node succeeds, with its output state.
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError is sent when a node fails, with its input state.
	NodeEventError NodeEvent = "error"
)

// NodeListener observes node events.
type NodeListener[S any] interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc adapts a function to NodeListener.
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent calls f.
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}

// notify calls every listener in order. A panicking listener does not
// stop the run or the remaining listeners.
func notify[S any](ctx context.Context, listeners []NodeListener[S], event NodeEvent, node string, state S, err error) {
	for _, l := range listeners {
		func() {
			defer func() { _ = recover() }()
			l.OnNodeEvent(ctx, event, node, state, err)
		}()
	}
}
