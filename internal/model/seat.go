package model

import "fmt"

// SeatSlot is an addressable seat position derived from a table selection.
// Slots are never persisted; they are recomputed on demand from the
// selected TableUnit set.  The ID combines the table id and the
// 1-based seat index within that table.
type SeatSlot struct {
    ID      string `json:"id"`       // "<tableID>-<seatIndex>"
    TableID uint64 `json:"table_id"` // owning table unit
    Index   uint32 `json:"index"`    // 1-based position within the table
    Label   string `json:"label"`    // e.g. "T12 seat 3"
}

// NewSeatSlot builds the slot for the given table and 1-based seat index.
func NewSeatSlot(t TableUnit, index uint32) SeatSlot {
    return SeatSlot{
        ID:      fmt.Sprintf("%d-%d", t.ID, index),
        TableID: t.ID,
        Index:   index,
        Label:   fmt.Sprintf("%s seat %d", t.Label, index),
    }
}
