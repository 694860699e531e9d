package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/smallnest/ontollm/ingest"
	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/memory"
	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/prebuilt"
)

// Agent answers questions. *prebuilt.OntologyAgent implements it.
type Agent interface {
	Ask(ctx context.Context, question, methodID string) (string, error)
	Stream(ctx context.Context, question, methodID string) <-chan prebuilt.Event
	ModelName() string
	Memory() memory.Attachment
}

var _ Agent = (*prebuilt.OntologyAgent)(nil)

// TokenSettings are the context limits reported by the dashboard.
type TokenSettings struct {
	MaxFacts           int    `json:"max_ontology_facts"`
	MaxRelations       int    `json:"max_relations"`
	MaxContextChars    int    `json:"max_context_chars"`
	BudgetMode         string `json:"prompt_budget_mode"`
	TokenWarnThreshold int    `json:"prompt_token_warn_threshold"`
}

// ChatRequest is the body of the chat routes and of WebSocket messages.
type ChatRequest struct {
	Question string `json:"question"`
	MethodID string `json:"method_id,omitempty"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html"`
}

// Server routes HTTP requests to an Agent.
type Server struct {
	agent       Agent
	store       ontology.Store
	storeName   string
	ontologyDir string
	settings    TokenSettings
	logger      log.Logger
	upgrader    websocket.Upgrader
	mux         *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithOntologyDir sets the directory summarized by the dashboard.
func WithOntologyDir(dir string) Option {
	return func(s *Server) { s.ontologyDir = dir }
}

// WithTokenSettings sets the limits reported by the dashboard.
func WithTokenSettings(ts TokenSettings) Option {
	return func(s *Server) { s.settings = ts }
}

// WithStoreName sets the store location reported by /api/init-db.
func WithStoreName(name string) Option {
	return func(s *Server) { s.storeName = name }
}

// New returns a server for agent backed by store.
func New(agent Agent, store ontology.Store, opts ...Option) *Server {
	s := &Server{
		agent:       agent,
		store:       store,
		ontologyDir: ingest.DefaultDir,
		logger:      log.GetDefaultLogger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/methods", s.handleMethods)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)
	s.mux.HandleFunc("GET /api/chat/ws", s.handleChatWebSocket)
	s.mux.HandleFunc("POST /api/init-db", s.handleInitDB)
	return s
}

// Handler returns the routes wrapped with permissive CORS.
func (s *Server) Handler() http.Handler {
	return cors(s.mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("ontollm API listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeChat(r *http.Request) (ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.Wrap(err, "decode chat request")
	}
	req.Question = strings.TrimSpace(req.Question)
	return req, nil
}
