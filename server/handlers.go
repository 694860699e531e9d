package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/gorilla/websocket"

	"github.com/smallnest/ontollm/ingest"
	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/render"
	"github.com/smallnest/ontollm/retrieval"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMethods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default_method": retrieval.DefaultMethod,
		"methods":        retrieval.Catalog,
	})
}

// MethodStatus is one dashboard row.
type MethodStatus struct {
	retrieval.MethodInfo
	OntologyPath string          `json:"ontology_path"`
	Snapshot     ingest.Snapshot `json:"snapshot"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
}

// Dashboard is the body of GET /api/dashboard.
type Dashboard struct {
	Model        string         `json:"model"`
	MemoryStatus string         `json:"memori_status"`
	Tokens       TokenSettings  `json:"token_settings"`
	Methods      []MethodStatus `json:"methods"`
}

func (s *Server) dashboard() Dashboard {
	d := Dashboard{
		Model:        s.agent.ModelName(),
		MemoryStatus: s.agent.Memory().Status,
		Tokens:       s.settings,
	}
	for _, info := range retrieval.Catalog {
		row := MethodStatus{
			MethodInfo:   info,
			OntologyPath: filepath.Join(s.ontologyDir, info.OntologyFile),
			Status:       "missing",
		}
		snap, err := ingest.SnapshotFile(row.OntologyPath)
		switch {
		case err != nil:
			row.Status = "error"
			row.Error = err.Error()
		case snap.Ready():
			row.Status = "ready"
		}
		row.Snapshot = snap
		d.Methods = append(d.Methods, row)
	}
	return d
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusOK, ChatResponse{
			Answer:     prebuilt.EmptyQuestionMessage,
			AnswerHTML: render.HTML(prebuilt.EmptyQuestionMessage),
		})
		return
	}

	answer, err := s.agent.Ask(r.Context(), req.Question, req.MethodID)
	if err != nil {
		s.logger.Error("chat failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": prebuilt.ErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Answer: answer, AnswerHTML: render.HTML(answer)})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for ev := range s.agent.Stream(r.Context(), req.Question, req.MethodID) {
		if err := enc.Encode(ev); err != nil {
			s.logger.Warn("chat stream write failed: %v", err)
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read: %v", err)
			}
			return
		}
		for ev := range s.agent.Stream(ctx, req.Question, req.MethodID) {
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Warn("websocket write failed: %v", err)
			}
		}
	}
}

func (s *Server) handleInitDB(w http.ResponseWriter, r *http.Request) {
	if err := s.store.InitSchema(r.Context()); err != nil {
		s.logger.Error("init schema failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": s.storeName})
}
