package model

import (
    "sort"
    "strconv"
    "strings"
    "time"
)

// CheckStatus is the lifecycle state of a check.
type CheckStatus string

const (
    CheckOpen   CheckStatus = "OPEN"   // accepting line mutations
    CheckClosed CheckStatus = "CLOSED" // payment recorded or cleared; read-only
)

// SplitMode is a line-level flag telling the settlement layer how the
// line's cost should be divided among guests.  The check engine records
// the flag but never performs the division itself.
type SplitMode string

const (
    SplitNone   SplitMode = "NONE"
    SplitEven   SplitMode = "EVEN"
    SplitCustom SplitMode = "CUSTOM"
)

// ValidSplitMode reports whether m is one of the defined split modes.
func ValidSplitMode(m SplitMode) bool {
    return m == SplitNone || m == SplitEven || m == SplitCustom
}

// CheckLine is one ordered item on a check.  Lines keep insertion order
// because receipts render them in the order they were rung in.  A line
// whose quantity reaches zero is removed from the check entirely;
// zero-quantity lines never persist.
//
// Fields:
//  ID              – line identifier, unique within the check (never reused).
//  CheckID         – owning check.
//  SeatID          – seat slot the item was ordered for ("<table>-<index>").
//  MenuItemID      – catalog item reference.
//  Name            – item name captured at order time (menu edits do not
//                    rewrite history on open checks).
//  UnitPriceCents  – price per unit in cents, captured at order time.
//  Qty             – quantity, always >= 1 for a persisted line.
//  ModifierIDs     – set of applied modifier ids, kept sorted.
//  Comp            – complimentary flag; comped lines stay on the receipt
//                    but are excluded from the amount owed.
//  SplitMode       – how the line splits at settlement (informational).
//  CustomSplitNote – free text, only meaningful when SplitMode is CUSTOM.
//  TransferTo      – destination table/guest when the line is marked for
//                    transfer; nil when not transferred.
type CheckLine struct {
    ID              uint64    `json:"id"`
    CheckID         uint64    `json:"check_id"`
    SeatID          string    `json:"seat_id"`
    MenuItemID      uint64    `json:"menu_item_id"`
    Name            string    `json:"name"`
    UnitPriceCents  uint32    `json:"unit_price_cents"`
    Qty             uint32    `json:"qty"`
    ModifierIDs     []string  `json:"modifier_ids"`
    Comp            bool      `json:"comp"`
    SplitMode       SplitMode `json:"split_mode"`
    CustomSplitNote *string   `json:"custom_split_note,omitempty"`
    TransferTo      *string   `json:"transfer_to,omitempty"`
}

// Check is the billable ticket covering one table-set for one visit.
// The normalized table-id set is the natural key: at most one open check
// exists per distinct set.  Revision is the optimistic-concurrency
// counter; every accepted mutation increments it by exactly one.
//
// Fields:
//  ID          – primary key identifier.
//  TableIDs    – table units the check covers, deduplicated and ascending.
//  TableKey    – normalized key derived from TableIDs (see TableKey).
//  Status      – OPEN or CLOSED.
//  Revision    – monotonic revision counter, 0 on creation.
//  ReceiptNote – free text printed on the receipt; nil when unset.
//  NextLineID  – next line id to assign; persisted so removed line ids
//                are never reused within the check.
//  Lines       – ordered line items (insertion order).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last accepted mutation timestamp.
type Check struct {
    ID          uint64      `json:"id"`
    TableIDs    []uint64    `json:"table_ids"`
    TableKey    string      `json:"table_key"`
    Status      CheckStatus `json:"status"`
    Revision    uint64      `json:"revision"`
    ReceiptNote *string     `json:"receipt_note,omitempty"`
    NextLineID  uint64      `json:"next_line_id"`
    Lines       []CheckLine `json:"lines"`
    CreatedAt   time.Time   `json:"created_at"`
    UpdatedAt   time.Time   `json:"updated_at"`
}

// NormalizeTableIDs deduplicates and sorts a table-id selection in
// ascending order.  Zero ids are dropped.
func NormalizeTableIDs(ids []uint64) []uint64 {
    seen := make(map[uint64]struct{}, len(ids))
    out := make([]uint64, 0, len(ids))
    for _, id := range ids {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out
}

// TableKey returns the natural key for a table-id set: the normalized ids
// joined with "-".  Two selections of the same tables in any order yield
// the same key.
func TableKey(ids []uint64) string {
    norm := NormalizeTableIDs(ids)
    parts := make([]string, len(norm))
    for i, id := range norm {
        parts[i] = strconv.FormatUint(id, 10)
    }
    return strings.Join(parts, "-")
}

// Clone returns a deep copy of the check.  Mutations operate on a copy so
// a failed compare-and-swap leaves the loaded state untouched.
func (c *Check) Clone() *Check {
    cp := *c
    cp.TableIDs = append([]uint64(nil), c.TableIDs...)
    cp.Lines = make([]CheckLine, len(c.Lines))
    for i, ln := range c.Lines {
        cp.Lines[i] = ln.Clone()
    }
    if c.ReceiptNote != nil {
        note := *c.ReceiptNote
        cp.ReceiptNote = &note
    }
    return &cp
}

// Clone returns a deep copy of the line.
func (l CheckLine) Clone() CheckLine {
    cp := l
    cp.ModifierIDs = append([]string(nil), l.ModifierIDs...)
    if l.CustomSplitNote != nil {
        n := *l.CustomSplitNote
        cp.CustomSplitNote = &n
    }
    if l.TransferTo != nil {
        t := *l.TransferTo
        cp.TransferTo = &t
    }
    return cp
}
