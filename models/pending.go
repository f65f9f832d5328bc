package models

import "time"

// Pending operation kinds
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpIncrement = "increment"
)

// PendingOp is a remote write that failed (typically offline) and is
// queued for replay. Payload is the document or patch that was being
// written; for creates, DocID holds the local_ temporary id so the
// cache entry can be reconciled once the remote assigns a real id.
type PendingOp struct {
	ID         string         `json:"id"`
	Entity     string         `json:"entity"`
	Collection string         `json:"collection"`
	CacheKey   string         `json:"cacheKey,omitempty"`
	Kind       string         `json:"kind"`
	DocID      string         `json:"docId,omitempty"`
	Field      string         `json:"field,omitempty"`
	Delta      float64        `json:"delta,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Attempts   int            `json:"attempts"`
	CreatedAt  time.Time      `json:"createdAt"`
}
