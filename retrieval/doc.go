// Package retrieval turns a question into grounded ontology context.
//
// ExtractTerms derives the lookup terms, Lookup runs the lexical base
// lookup and ranks its candidates, and a Dispatcher applies one of eight
// method strategies on top of the base lookup:
//
//	method1  lexical grounding (base context)
//	method2  constraint facts injected ahead of the entity facts
//	method3  relation evidence touching the top candidates
//	method4  one- and two-hop reasoning paths from the top candidates
//	method5  dense-proxy rescoring over the whole store
//	method6  method5 combined with the method2 constraint block
//	method7  verification evidence, a narrower method3
//	method8  current facts plus missing-property signals
//
// Every strategy returns the assembled context, a debug payload and a
// typed Trace describing what it found.
package retrieval
