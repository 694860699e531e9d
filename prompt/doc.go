// Package prompt turns a retrieval context into the prompt sent to the
// model.
//
// Compress keeps the highest scoring fact and relation lines within a
// character budget. Estimator measures question, context and prompt
// sizes in characters and tokens, using a local tiktoken encoding when
// one is available and a regex heuristic otherwise. SystemPrompt and
// BuildUserPrompt assemble the messages for each retrieval method.
package prompt
