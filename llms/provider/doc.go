// Package provider builds the language model selected by configuration:
// the hosted OpenAI API through langchaingo, or a local
// OpenAI-compatible server through openaicompat.
package provider
