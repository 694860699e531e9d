// Package tool holds the tools the ontology agent can offer to a model
// and the executor that answers the model's tool calls.
//
// Tools implement the langchaingo tools.Tool interface. A tool that also
// implements Definer declares its own parameter schema; other tools get a
// single string "input" parameter.
//
//	exec := tool.NewExecutor(tool.NewTodayDate())
//	resp, err := model.GenerateContent(ctx, messages, llms.WithTools(exec.Definitions()))
//	for _, tc := range resp.Choices[0].ToolCalls {
//		result := exec.Execute(ctx, tc)
//		// append result as a tool message
//	}
package tool
