// Command ontollm answers questions grounded on an ontology fact store.
//
// Usage:
//
//	ontollm init-db
//	ontollm ingest --yaml data/ontology.yaml
//	ontollm ingest --method method3 --watch
//	ontollm chat "빠나 우유 가격 알려줘" --method method1 --trace
//	ontollm exp "빠나 우유 가격 알려줘" --method all --auto-ingest --format json
//	ontollm serve
//	ontollm mcp --transport stdio
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
