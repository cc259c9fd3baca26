package ledger

import (
    "context"
    "errors"
    "log"
    "sort"
    "strings"
    "time"

    "github.com/tablewire/restaurant-pos/internal/model"
)

// Ledger owns the check lifecycle and all line mutations. Terminals are
// stateless against it: every operation is a single round trip carrying
// the revision the terminal last observed, and conflicting edits are
// rejected rather than merged. Coordination happens entirely through
// the persisted check record, so any number of terminals can co-edit
// one check without shared in-process state.
type Ledger struct {
    store    Store
    topo     Topology
    catalog  Catalog
    notifier Notifier // optional; nil disables fan-out
}

// New constructs a Ledger. Store, topology and catalog must be non-nil;
// the notifier may be nil when no fan-out transport is configured.
func New(store Store, topo Topology, catalog Catalog, notifier Notifier) *Ledger {
    if store == nil || topo == nil || catalog == nil {
        panic("nil dependency passed to ledger.New")
    }
    return &Ledger{store: store, topo: topo, catalog: catalog, notifier: notifier}
}

// OpenOrGet returns the open check for the given table-set, creating one
// at revision 0 when none exists. The normalized table-id set is the
// natural key, so repeated and concurrent calls for the same selection
// converge on a single check. The selection must pass the merge rule.
func (l *Ledger) OpenOrGet(ctx context.Context, tableIDs []uint64) (*model.Check, error) {
    units, err := validateSelection(ctx, l.topo, tableIDs)
    if err != nil {
        return nil, err
    }
    norm := make([]uint64, len(units))
    for i, u := range units {
        norm[i] = u.ID
    }
    key := model.TableKey(norm)

    existing, err := l.store.FindOpenCheckByTableKey(ctx, key)
    if err == nil {
        return existing, nil
    }
    if !errors.Is(err, ErrCheckNotFound) {
        return nil, err
    }

    now := time.Now().UTC()
    check := &model.Check{
        TableIDs:   norm,
        TableKey:   key,
        Status:     model.CheckOpen,
        Revision:   0,
        NextLineID: 1,
        Lines:      []model.CheckLine{},
        CreatedAt:  now,
        UpdatedAt:  now,
    }
    // CreateCheck resolves the create/create race: the losing insert
    // returns the winner's row instead of a duplicate.
    return l.store.CreateCheck(ctx, check)
}

// Load returns the current state of a check. Terminals call this to
// recover after a revision conflict and when polling for updates.
func (l *Ledger) Load(ctx context.Context, checkID uint64) (*model.Check, error) {
    return l.store.LoadCheck(ctx, checkID)
}

// Close transitions the check to CLOSED under the same revision gate as
// line mutations. Once closed no further mutations are accepted, and
// the covered tables move to PAYING.
func (l *Ledger) Close(ctx context.Context, checkID, expectedRevision uint64) (*model.Check, error) {
    updated, err := l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        c.Status = model.CheckClosed
        return nil
    })
    if err != nil {
        return nil, err
    }
    l.advanceTables(ctx, updated.TableIDs, model.TablePaying)
    return updated, nil
}

// AddLine rings a new item onto the check. Every call appends a fresh
// line (repeated taps make distinct lines, not quantity bumps). A zero
// qty means the default of one. The item name and unit price are
// captured from the catalog at order time.
func (l *Ledger) AddLine(ctx context.Context, checkID, expectedRevision uint64, seatID string, menuItemID uint64, qty uint32) (*model.Check, error) {
    item, err := l.catalog.MenuItem(ctx, menuItemID)
    if err != nil {
        return nil, err
    }
    if qty == 0 {
        qty = 1
    }
    firstLine := false
    updated, err := l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        firstLine = len(c.Lines) == 0
        c.Lines = append(c.Lines, model.CheckLine{
            ID:             c.NextLineID,
            CheckID:        c.ID,
            SeatID:         seatID,
            MenuItemID:     item.ID,
            Name:           item.Name,
            UnitPriceCents: item.PriceCents,
            Qty:            qty,
            ModifierIDs:    []string{},
            SplitMode:      model.SplitNone,
        })
        c.NextLineID++
        return nil
    })
    if err != nil {
        return nil, err
    }
    if firstLine {
        l.advanceTables(ctx, updated.TableIDs, model.TableOrdering)
    }
    return updated, nil
}

// SetQty replaces a line's quantity. Negative requests clamp to zero,
// and a resulting zero removes the line from the check entirely.
func (l *Ledger) SetQty(ctx context.Context, checkID, expectedRevision, lineID uint64, qty int64) (*model.Check, error) {
    if qty < 0 {
        qty = 0
    }
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        if qty == 0 {
            c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
            return nil
        }
        c.Lines[i].Qty = uint32(qty)
        return nil
    })
}

// ToggleComp flips a line's complimentary flag. Price and quantity are
// untouched; comped lines stay on the receipt.
func (l *Ledger) ToggleComp(ctx context.Context, checkID, expectedRevision, lineID uint64) (*model.Check, error) {
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        c.Lines[i].Comp = !c.Lines[i].Comp
        return nil
    })
}

// SetSplitMode sets a line's split flag with toggle semantics: asking
// for the mode the line already has resets it to NONE.
func (l *Ledger) SetSplitMode(ctx context.Context, checkID, expectedRevision, lineID uint64, mode model.SplitMode) (*model.Check, error) {
    if !model.ValidSplitMode(mode) {
        return nil, ErrInvalidSplitMode
    }
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        if c.Lines[i].SplitMode == mode {
            c.Lines[i].SplitMode = model.SplitNone
        } else {
            c.Lines[i].SplitMode = mode
        }
        return nil
    })
}

// SetCustomSplitNote replaces a line's custom split note. Blank input
// unsets the note.
func (l *Ledger) SetCustomSplitNote(ctx context.Context, checkID, expectedRevision, lineID uint64, note string) (*model.Check, error) {
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        c.Lines[i].CustomSplitNote = normalizeText(note)
        return nil
    })
}

// SetTransferTarget marks a line for transfer to another table or guest
// at settlement. Blank input clears the marker.
func (l *Ledger) SetTransferTarget(ctx context.Context, checkID, expectedRevision, lineID uint64, target string) (*model.Check, error) {
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        c.Lines[i].TransferTo = normalizeText(target)
        return nil
    })
}

// ToggleModifier adds the modifier to the line's set when absent and
// removes it when present. The id must be known to the catalog.
func (l *Ledger) ToggleModifier(ctx context.Context, checkID, expectedRevision, lineID uint64, modifierID string) (*model.Check, error) {
    if _, err := l.catalog.Modifier(ctx, modifierID); err != nil {
        return nil, err
    }
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        i, err := findLine(c, lineID)
        if err != nil {
            return err
        }
        mods := c.Lines[i].ModifierIDs
        for j, m := range mods {
            if m == modifierID {
                c.Lines[i].ModifierIDs = append(mods[:j], mods[j+1:]...)
                return nil
            }
        }
        mods = append(mods, modifierID)
        sort.Strings(mods)
        c.Lines[i].ModifierIDs = mods
        return nil
    })
}

// ClearAllLines empties the line sequence. The check stays open.
func (l *Ledger) ClearAllLines(ctx context.Context, checkID, expectedRevision uint64) (*model.Check, error) {
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        c.Lines = []model.CheckLine{}
        return nil
    })
}

// SetReceiptNote replaces the free-text note printed on the receipt.
// Blank input unsets it.
func (l *Ledger) SetReceiptNote(ctx context.Context, checkID, expectedRevision uint64, note string) (*model.Check, error) {
    return l.mutate(ctx, checkID, expectedRevision, func(c *model.Check) error {
        c.ReceiptNote = normalizeText(note)
        return nil
    })
}

// MarkServed records the kitchen's "order fired" signal for one table.
func (l *Ledger) MarkServed(ctx context.Context, tableID uint64) error {
    return l.transitionTable(ctx, tableID, model.TableServed)
}

// ResetTable returns a settled table to OPEN. Only valid from PAYING.
func (l *Ledger) ResetTable(ctx context.Context, tableID uint64) error {
    return l.transitionTable(ctx, tableID, model.TableOpen)
}

// mutate runs the shared mutation protocol: load, closed-check gate,
// revision compare, pure transform on a copy, revision+1, atomic
// compare-and-swap. The early revision compare gives a cheap rejection
// for obviously stale callers; the CAS is what actually guarantees
// single-writer-per-revision under a race.
func (l *Ledger) mutate(ctx context.Context, checkID, expectedRevision uint64, transform func(*model.Check) error) (*model.Check, error) {
    cur, err := l.store.LoadCheck(ctx, checkID)
    if err != nil {
        return nil, err
    }
    if cur.Status == model.CheckClosed {
        return nil, ErrCheckClosed
    }
    if cur.Revision != expectedRevision {
        return nil, ErrRevisionConflict
    }
    next := cur.Clone()
    if err := transform(next); err != nil {
        return nil, err
    }
    next.Revision = cur.Revision + 1
    next.UpdatedAt = time.Now().UTC()
    saved, err := l.store.CompareAndSwap(ctx, next, cur.Revision)
    if err != nil {
        return nil, err
    }
    if l.notifier != nil {
        l.notifier.CheckUpdated(ctx, saved)
    }
    return saved, nil
}

// transitionTable moves a single table to the target status, validating
// against the service cycle first.
func (l *Ledger) transitionTable(ctx context.Context, tableID uint64, to model.TableStatus) error {
    units, err := l.topo.TablesByIDs(ctx, []uint64{tableID})
    if err != nil {
        return err
    }
    u := units[0]
    if !model.ValidTableTransition(u.Status, to) {
        return ErrInvalidTransition
    }
    return l.topo.SetStatus(ctx, tableID, u.Status, to)
}

// advanceTables best-effort moves every covered table toward the target
// status after a successful check mutation. A table that is already at
// or past the target is left alone; a lost race against another
// transition is logged, not surfaced, since the check mutation itself
// has already committed.
func (l *Ledger) advanceTables(ctx context.Context, tableIDs []uint64, to model.TableStatus) {
    units, err := l.topo.TablesByIDs(ctx, tableIDs)
    if err != nil {
        log.Printf("ledger: load tables for status advance failed: %v", err)
        return
    }
    for _, u := range units {
        if !model.ValidTableTransition(u.Status, to) {
            continue
        }
        if err := l.topo.SetStatus(ctx, u.ID, u.Status, to); err != nil {
            log.Printf("ledger: table %d status %s -> %s failed: %v", u.ID, u.Status, to, err)
        }
    }
}

// findLine returns the index of the line with the given id.
func findLine(c *model.Check, lineID uint64) (int, error) {
    for i := range c.Lines {
        if c.Lines[i].ID == lineID {
            return i, nil
        }
    }
    return 0, ErrLineNotFound
}

// normalizeText trims free-text input and maps blank to unset.
func normalizeText(s string) *string {
    t := strings.TrimSpace(s)
    if t == "" {
        return nil
    }
    return &t
}
