// Package memory keeps a short conversation history per entity and
// process so that later questions can recall earlier answers.
//
// Attach evaluates the configuration once at startup and returns an
// Attachment whose Status is "disabled", "enabled" or "error:<reason>".
// The orchestrator reports that status in its compare trace and, when the
// attachment is enabled, adds recalled turns as a system message and
// records every final answer.
//
//	att := memory.Attach(ctx, memory.Config{Enabled: true, RedisAddr: "localhost:6379"})
//	turns, _ := att.Recall(ctx, 3)
package memory
