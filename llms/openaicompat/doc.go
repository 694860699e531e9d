// Package openaicompat is a langchaingo llms.Model for OpenAI-compatible
// chat completion servers such as Ollama, vLLM or LM Studio, built on
// github.com/sashabaranov/go-openai.
//
//	llm, err := openaicompat.New(
//		openaicompat.WithBaseURL("http://localhost:11434/v1"),
//		openaicompat.WithModel("qwen2.5:3b"),
//	)
//	resp, err := llm.GenerateContent(ctx, messages, llms.WithTemperature(0.2))
package openaicompat
