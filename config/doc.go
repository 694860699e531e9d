// Package config loads ontollm settings from defaults, an optional
// ontollm.toml or ontollm.yaml file and environment variables, in
// increasing order of precedence.
//
// File keys are the lower-case environment names:
//
//	max_ontology_facts = 8
//	prompt_budget_mode = "strict"
package config
