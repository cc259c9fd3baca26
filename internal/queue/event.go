// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckUpdatedEvent is published after every accepted check mutation.
// Terminals watching the same check subscribe to these to learn that a
// new revision exists; they then re-fetch the check over HTTP. The
// payload deliberately carries summary fields only, never the full line
// set, so the persisted record stays the single source of truth.
type CheckUpdatedEvent struct {
    CheckID    uint64 `json:"check_id"`
    TableKey   string `json:"table_key"`
    Status     string `json:"status"`
    Revision   uint64 `json:"revision"`
    LineCount  int    `json:"line_count"`
    OwedCents  int64  `json:"owed_cents"`
    OccurredAt string `json:"occurred_at"`
}
