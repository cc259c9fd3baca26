package model

import "time"

// Zone identifies the area of the floor a table belongs to.  Zones are
// purely descriptive; they do not affect merge rules or check lifecycle.
type Zone string

const (
    ZoneDining      Zone = "DINING"       // main dining room tables
    ZoneBar         Zone = "BAR"          // individual bar seats
    ZoneChefCounter Zone = "CHEF_COUNTER" // chef's counter seats
)

// TableStatus tracks where a table is in the service cycle.  Transitions
// are driven by check activity and the kitchen, never set freely.
type TableStatus string

const (
    TableOpen     TableStatus = "OPEN"     // available, no active check
    TableOrdering TableStatus = "ORDERING" // an open check has at least one line
    TableServed   TableStatus = "SERVED"   // kitchen has fired the order
    TablePaying   TableStatus = "PAYING"   // the check has been closed
)

// TableUnit describes a registered seatable unit on the floor plan: a
// dining table, a single bar seat or a chef-counter seat.  Identity is
// immutable once registered; only Status changes over a unit's lifetime.
//
// Fields:
//  ID         – primary key identifier.
//  Label      – human-readable name shown on terminals (e.g. "T12", "Bar 3").
//  SeatCount  – number of seat slots this unit provides.
//  Zone       – floor zone (DINING, BAR, CHEF_COUNTER).
//  Combinable – whether this unit may be merged with others into one check.
//  Status     – current service-cycle state.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type TableUnit struct {
    ID         uint64      `json:"id"`
    Label      string      `json:"label"`
    SeatCount  uint32      `json:"seat_count"`
    Zone       Zone        `json:"zone"`
    Combinable bool        `json:"combinable"`
    Status     TableStatus `json:"status"`
    CreatedAt  time.Time   `json:"created_at"`
    UpdatedAt  time.Time   `json:"updated_at"`
}

// tableStatusRank orders the service cycle.  A transition may only move
// forward through the cycle; the single exception is the reset from
// PAYING back to OPEN once the check has been settled and cleared.
var tableStatusRank = map[TableStatus]int{
    TableOpen:     0,
    TableOrdering: 1,
    TableServed:   2,
    TablePaying:   3,
}

// ValidTableTransition reports whether a table may move from one status to
// another.  Forward moves through the cycle are allowed (a check can close
// before the kitchen marks it served, so skipping SERVED is legal);
// backward moves are rejected except PAYING -> OPEN.
func ValidTableTransition(from, to TableStatus) bool {
    fr, ok := tableStatusRank[from]
    if !ok {
        return false
    }
    tr, ok := tableStatusRank[to]
    if !ok {
        return false
    }
    if from == TablePaying && to == TableOpen {
        return true
    }
    return tr > fr
}
