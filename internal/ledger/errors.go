// Package ledger implements the check engine: table topology validation,
// seat resolution, the check lifecycle, line mutations gated by optimistic
// concurrency, and totals computation. Persistence and the menu catalog
// are supplied through the Store and Catalog interfaces so the engine
// itself stays transport- and storage-agnostic.
package ledger

import "errors"

// ErrRevisionConflict is returned when a mutation carries a stale
// expected revision. The caller must re-fetch the check and resubmit;
// the engine never merges or retries on its own. Handlers translate
// this into an HTTP 409.
var ErrRevisionConflict = errors.New("revision conflict")

// ErrCheckClosed is returned when a mutation targets a closed check.
// Closed checks are read-only; this is not retryable.
var ErrCheckClosed = errors.New("check closed")

// ErrMergeRejected is returned when a multi-table selection includes a
// unit that is not combinable. The user must reselect.
var ErrMergeRejected = errors.New("merge rejected")

// ErrUnknownMenuItem is returned when a line references a menu item the
// catalog does not know (or one that is inactive).
var ErrUnknownMenuItem = errors.New("unknown menu item")

// ErrUnknownModifier is returned when a toggled modifier id is not known
// to the catalog.
var ErrUnknownModifier = errors.New("unknown modifier")

// ErrInvalidQuantity is returned for quantity payloads that cannot be
// interpreted at all. Plain negative quantities are not an error: they
// clamp to zero, which removes the line.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrTableNotFound is returned when a selection references a table id
// that is not registered in the topology.
var ErrTableNotFound = errors.New("table not found")

// ErrEmptySelection is returned when an operation is given no table ids.
var ErrEmptySelection = errors.New("empty table selection")

// ErrCheckNotFound is returned when no check exists for the given id or
// table-set key.
var ErrCheckNotFound = errors.New("check not found")

// ErrLineNotFound is returned when a mutation targets a line id that is
// not on the check (possibly removed by an earlier qty-zero mutation).
var ErrLineNotFound = errors.New("line not found")

// ErrInvalidTransition is returned when a table status change violates
// the service cycle (e.g. PAYING back to ORDERING without a reset).
var ErrInvalidTransition = errors.New("invalid table status transition")

// ErrInvalidSplitMode is returned when a split mode value is not one of
// NONE, EVEN or CUSTOM.
var ErrInvalidSplitMode = errors.New("invalid split mode")
