// Package adapter holds front ends that expose the ontology agent to
// other protocols. See adapter/mcp for the Model Context Protocol server.
package adapter
