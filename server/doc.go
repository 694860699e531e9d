// Package server exposes the ontology agent over HTTP.
//
// Routes:
//
//	GET  /health            liveness
//	GET  /api/methods       method catalog
//	GET  /api/dashboard     per-method ontology snapshot and settings
//	POST /api/chat          {"question","method_id"} -> {"answer","answer_html"}
//	POST /api/chat/stream   NDJSON stage events
//	GET  /api/chat/ws       the same events over a WebSocket
//	POST /api/init-db       create the fact store schema
//
// Every route allows any origin.
package server
