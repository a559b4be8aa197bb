package notify

import (
	"context"
	"errors"
	"time"
)

// ErrConflict marks an insert that collided with an existing notification id.
var ErrConflict = errors.New("notify: notification already exists")

// Record is one persisted in-app notification row. ReadAt is set if and only
// if IsRead is true; the first mark-read transition writes it and repeated
// marks leave it untouched.
type Record struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Priority  Priority          `json:"priority"`
	ActionURL string            `json:"action_url,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
}

// ListOptions narrows RecordStore.List.
type ListOptions struct {
	UnreadOnly bool
	Limit      int
}

// RecordStore persists in-app notifications. All mutations are idempotent:
// re-marking a read row or deleting an absent id is a no-op.
type RecordStore interface {
	InsertBatch(ctx context.Context, records []Record) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Record, error)
	MarkRead(ctx context.Context, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, ids []string) error
}
