// Package graph is a small typed state graph engine.
//
// A StateGraph holds named nodes that transform a state value of type S,
// plain edges between them and conditional edges that pick the next node
// at runtime. Compile validates the graph and returns a StateRunnable
// whose Invoke walks it from the entry point until END.
//
// Listeners observe every node: they receive a start event with the
// input state, then a complete event with the output state or an error
// event with the failure. Listeners are called synchronously in
// registration order, so consumers see stages in execution order.
//
//	g := graph.NewStateGraph[*Run]()
//	g.AddNode("lookup", "Search the store", lookup)
//	g.AddNode("generate", "Call the model", generate)
//	g.AddEdge("lookup", "generate")
//	g.AddEdge("generate", graph.END)
//	g.SetEntryPoint("lookup")
//
//	runnable, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	final, err := runnable.Invoke(ctx, &Run{Question: q})
package graph
