// Package mcp serves the ontology agent as Model Context Protocol tools.
//
// Tools:
//
//	ask_ontology    answer a question with one retrieval method
//	lookup_context  the grounded prompt a method would send, without calling the model
//	list_methods    the method catalog
//
// Serve over stdio:
//
//	srv := mcp.NewServer(agent, mcp.WithVersion("0.1.0"))
//	err := srv.Run(ctx, &sdk.StdioTransport{})
package mcp
