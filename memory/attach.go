package memory

import (
	"context"
	"time"
)

// Attachment statuses.
const (
	StatusDisabled = "disabled"
	StatusEnabled  = "enabled"
)

// Config selects the memory backend.
type Config struct {
	Enabled   bool
	RedisAddr string // empty keeps turns in process
	EntityID  string
	ProcessID string
}

// Attachment is the memory handle captured once at startup. Store is nil
// unless Enabled.
type Attachment struct {
	Enabled   bool
	Status    string
	Store     Store
	EntityID  string
	ProcessID string
}

// Attach evaluates cfg. It never fails: connection problems are reported
// through Status as "error:<reason>".
func Attach(ctx context.Context, cfg Config) Attachment {
	att := Attachment{Status: StatusDisabled, EntityID: cfg.EntityID, ProcessID: cfg.ProcessID}
	if !cfg.Enabled {
		return att
	}

	if cfg.RedisAddr == "" {
		att.Enabled = true
		att.Status = StatusEnabled
		att.Store = NewInMemoryStore(0)
		return att
	}

	rs := NewRedisStore(RedisOptions{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		rs.Close()
		att.Status = "error:" + err.Error()
		return att
	}
	att.Enabled = true
	att.Status = StatusEnabled
	att.Store = rs
	return att
}

// Disabled returns an attachment that records nothing.
func Disabled() Attachment {
	return Attachment{Status: StatusDisabled}
}

// Recall returns up to n turns for the attached conversation.
func (a Attachment) Recall(ctx context.Context, n int) ([]Turn, error) {
	if !a.Enabled || a.Store == nil {
		return nil, nil
	}
	return a.Store.Recall(ctx, a.EntityID, a.ProcessID, n)
}

// Record stores one answered question for the attached conversation.
func (a Attachment) Record(ctx context.Context, method, question, answer string) error {
	if !a.Enabled || a.Store == nil {
		return nil
	}
	return a.Store.Record(ctx, NewTurn(a.EntityID, a.ProcessID, method, question, answer))
}
