package ledger

import (
    "context"

    "github.com/tablewire/restaurant-pos/internal/model"
)

// Store is the persistence contract for checks. The engine coordinates
// terminals exclusively through this record and its revision counter, so
// the one hard requirement is that CompareAndSwap is atomic per check:
// read revision, compare, write new state and revision in one step.
type Store interface {
    // LoadCheck returns the check with the given id, including its lines
    // in insertion order. Returns ErrCheckNotFound when absent.
    LoadCheck(ctx context.Context, id uint64) (*model.Check, error)

    // FindOpenCheckByTableKey returns the open check keyed by the
    // normalized table-id set, or ErrCheckNotFound when none exists.
    FindOpenCheckByTableKey(ctx context.Context, key string) (*model.Check, error)

    // CreateCheck persists a new check at revision 0. Creation is atomic
    // on the table key: when two terminals race to open the same
    // table-set, exactly one insert wins and both callers receive the
    // winning check.
    CreateCheck(ctx context.Context, check *model.Check) (*model.Check, error)

    // CompareAndSwap replaces the check's state (status, note, lines,
    // revision) only if its persisted revision still equals
    // expectedRevision. Returns ErrRevisionConflict otherwise, leaving
    // the stored state untouched.
    CompareAndSwap(ctx context.Context, check *model.Check, expectedRevision uint64) (*model.Check, error)
}

// Topology is read-mostly reference data about the floor plan. The
// engine reads it to validate selections and drives the per-table status
// machine through SetStatus; nothing else mutates table state.
type Topology interface {
    // TablesByIDs returns the registered units for the given ids, in
    // ascending id order. Returns ErrTableNotFound when any id is not
    // registered.
    TablesByIDs(ctx context.Context, ids []uint64) ([]model.TableUnit, error)

    // SetStatus transitions one table through the service cycle. The
    // from status guards against concurrent transitions; an update that
    // matches no row means the table moved already, which is reported as
    // ErrInvalidTransition.
    SetStatus(ctx context.Context, tableID uint64, from, to model.TableStatus) error
}

// Catalog is the read-only slice of the menu system the engine needs:
// item lookup when ringing in a line, modifier lookup when toggling.
type Catalog interface {
    // MenuItem returns the active catalog item, or ErrUnknownMenuItem.
    MenuItem(ctx context.Context, id uint64) (model.MenuItem, error)

    // Modifier returns the modifier suggestion with the given id, or
    // ErrUnknownModifier.
    Modifier(ctx context.Context, id string) (model.ModifierSuggestion, error)

    // ModifierSuggestions lists the modifiers offered for a menu item.
    ModifierSuggestions(ctx context.Context, menuItemID uint64) ([]model.ModifierSuggestion, error)
}

// Notifier receives a callback after every accepted mutation so other
// terminals watching the same check can refresh. Delivery mechanics are
// external; the engine must work equally well when callers poll instead.
type Notifier interface {
    CheckUpdated(ctx context.Context, check *model.Check)
}
