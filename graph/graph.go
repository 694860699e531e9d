package graph

import "github.com/cockroachdb/errors"

// END is the name of the virtual terminal node.
const END = "END"

// DefaultMaxSteps bounds the number of node executions per Invoke.
const DefaultMaxSteps = 25

var (
	// ErrEntryPointNotSet is returned by Compile when no entry point is set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when an edge or the entry point names an
	// unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when a node has no way forward.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when a run executes more nodes than
	// allowed, usually because of a conditional-edge cycle.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// NodeError is returned by Invoke when a node function fails. Err is the
// node's own error.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string { return "node " + e.Node + ": " + e.Err.Error() }

func (e *NodeError) Unwrap() error { return e.Err }

// Edge connects two nodes.
type Edge struct {
	From string
	To   string
}
