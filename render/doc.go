// Package render turns model answers, which are markdown, into sanitized
// HTML for web clients, plain text for tool payloads and styled output
// for terminals.
package render
