// Package experiment runs one question through several retrieval methods
// and collects the prompts and answers side by side.
package experiment
