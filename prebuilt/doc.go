// Package prebuilt provides the ontology question-answering agent.
//
// OntologyAgent runs a question through four graph stages built on the
// graph package:
//
//	received -> lookup -> compare -> generate
//
// received normalizes the question and resolves the retrieval method,
// lookup runs the method's retrieval strategy over the fact store,
// compare compresses the context and estimates the prompt budget, and
// generate asks the model for an answer, answering a get_today_date
// tool call with one follow-up completion.
//
// Every stage reports a running and a done Event to an EventSink:
//
//	agent, err := prebuilt.NewOntologyAgent(model, store,
//		prebuilt.WithModelName("gpt-4o-mini"),
//		prebuilt.WithLimits(5, 3, 1200),
//	)
//	if err != nil {
//		return err
//	}
//	res, err := agent.Run(ctx, "바나나우유 가격 알려줘", "method3", func(ev prebuilt.Event) {
//		fmt.Println(ev.Stage, ev.Status, ev.Message)
//	})
//
// Stream runs the same pipeline on its own goroutine and delivers the
// events, followed by a terminal answer and done event (or a single
// error event), on a channel that is closed afterwards.
package prebuilt
