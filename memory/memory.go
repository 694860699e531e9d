package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one answered question.
type Turn struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	ProcessID string    `json:"process_id"`
	Method    string    `json:"method_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn stamps a turn with a fresh id and the current time.
func NewTurn(entityID, processID, method, question, answer string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		EntityID:  entityID,
		ProcessID: processID,
		Method:    method,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists turns per (entity, process).
type Store interface {
	Record(ctx context.Context, turn Turn) error
	// Recall returns up to n turns, most recent first.
	Recall(ctx context.Context, entityID, processID string, n int) ([]Turn, error)
	Close() error
}

// InMemoryStore keeps at most MaxTurns turns per conversation in process.
type InMemoryStore struct {
	mu       sync.Mutex
	turns    map[string][]Turn
	maxTurns int
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a store keeping maxTurns turns per
// conversation; maxTurns <= 0 defaults to 20.
func NewInMemoryStore(maxTurns int) *InMemoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &InMemoryStore{turns: make(map[string][]Turn), maxTurns: maxTurns}
}

func conversationKey(entityID, processID string) string {
	return entityID + ":" + processID
}

// Record appends a turn.
func (s *InMemoryStore) Record(ctx context.Context, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := conversationKey(turn.EntityID, turn.ProcessID)
	turns := append(s.turns[key], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[key] = turns
	return nil
}

// Recall returns up to n turns, most recent first.
func (s *InMemoryStore) Recall(ctx context.Context, entityID, processID string, n int) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.turns[conversationKey(entityID, processID)]
	var out []Turn
	for i := len(turns) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, turns[i])
	}
	return out, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }

// FormatRecall renders turns as a system message body, oldest first.
// It returns "" when there is nothing to recall.
func FormatRecall(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("[Recalled conversation]")
	for i := len(turns) - 1; i >= 0; i-- {
		b.WriteString("\nQ: ")
		b.WriteString(turns[i].Question)
		b.WriteString("\nA: ")
		b.WriteString(turns[i].Answer)
	}
	return b.String()
}
