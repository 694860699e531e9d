// Package ontollm answers questions from an ontology fact store with a
// language model.
//
// A question runs through four stages:
//
//	received  normalize the question and pick the retrieval method
//	lookup    retrieve grounded context with one of eight methods
//	compare   compress the context to a budget and build the prompt
//	generate  call the model, answering tool calls on the way
//
// # Packages
//
//   - ontology: the fact model and the Store contract
//   - store: SQLite, Postgres and in-memory stores, opened by URL
//   - ingest: YAML ontology documents, per-method sample files, file watching
//   - retrieval: term extraction, candidate ranking and the eight methods
//   - prompt: context compression, prompt building and token budgets
//   - tool: function tools offered to the model
//   - memory: recalled conversation turns in process or in Redis
//   - graph: the typed state graph running the stages
//   - prebuilt: the OntologyAgent orchestrating a question
//   - experiment: one question through several methods side by side
//   - server, adapter/mcp, cmd/ontollm: HTTP, MCP and CLI front ends
//
// # Quick Start
//
//	s, _ := store.Open(ctx, "./data/ontology.db")
//	_, _ = ingest.AutoIngest(ctx, s, retrieval.Method1, ingest.DefaultDir)
//
//	llm, _ := openai.New()
//	agent, _ := prebuilt.NewOntologyAgent(llm, s)
//	answer, _ := agent.Ask(ctx, "빠나 우유 가격 알려줘", "method1")
//
// The same agent streams stage events:
//
//	for ev := range agent.Stream(ctx, "빠나 우유 가격 알려줘", "method4") {
//		fmt.Println(ev.Event, ev.Stage, ev.Status, ev.Message)
//	}
package ontollm
