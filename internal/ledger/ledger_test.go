package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/tablewire/restaurant-pos/internal/model"
)

func TestOpenOrGetCreatesAtRevisionZero(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{2, 1})
	if err != nil {
		t.Fatalf("OpenOrGet: %v", err)
	}
	if c.Revision != 0 {
		t.Errorf("new check revision = %d, want 0", c.Revision)
	}
	if c.Status != model.CheckOpen {
		t.Errorf("new check status = %s, want OPEN", c.Status)
	}
	if c.TableKey != "1-2" {
		t.Errorf("table key = %q, want %q", c.TableKey, "1-2")
	}
	if len(c.Lines) != 0 {
		t.Errorf("new check has %d lines, want 0", len(c.Lines))
	}
}

func TestOpenOrGetIdempotentAcrossOrderings(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	first, err := eng.OpenOrGet(ctx, []uint64{1, 2})
	if err != nil {
		t.Fatalf("first OpenOrGet: %v", err)
	}
	// Same tables, different order, with a duplicate thrown in.
	second, err := eng.OpenOrGet(ctx, []uint64{2, 1, 1})
	if err != nil {
		t.Fatalf("second OpenOrGet: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same table-set produced two checks: %d and %d", first.ID, second.ID)
	}
}

func TestOpenOrGetDistinctSetsGetDistinctChecks(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	a, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open table 1: %v", err)
	}
	b, err := eng.OpenOrGet(ctx, []uint64{1, 2})
	if err != nil {
		t.Fatalf("open tables 1+2: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("distinct table-sets shared check %d", a.ID)
	}
}

func TestOpenOrGetSelectionErrors(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		ids  []uint64
		want error
	}{
		{"empty", nil, ErrEmptySelection},
		{"only zeros", []uint64{0, 0}, ErrEmptySelection},
		{"unknown table", []uint64{1, 99}, ErrTableNotFound},
		{"non-combinable in merge", []uint64{1, 3}, ErrMergeRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := eng.OpenOrGet(ctx, tc.ids); !errors.Is(err, tc.want) {
				t.Errorf("OpenOrGet(%v) = %v, want %v", tc.ids, err, tc.want)
			}
		})
	}
}

func TestOpenOrGetSingleNonCombinableAllowed(t *testing.T) {
	eng, _, _, _ := testFixture()

	// Bar seat 3 is not combinable but is fine on its own.
	c, err := eng.OpenOrGet(context.Background(), []uint64{3})
	if err != nil {
		t.Fatalf("OpenOrGet single bar seat: %v", err)
	}
	if c.TableKey != "3" {
		t.Errorf("table key = %q, want %q", c.TableKey, "3")
	}
}

func TestOpenAfterCloseStartsFreshCheck(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	first, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := eng.Close(ctx, first.ID, first.Revision); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("reopen returned the closed check %d", first.ID)
	}
	if second.Revision != 0 {
		t.Errorf("fresh check revision = %d, want 0", second.Revision)
	}
}

func TestAddLineAppendsDistinctLines(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 0)
	if err != nil {
		t.Fatalf("first AddLine: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 0)
	if err != nil {
		t.Fatalf("second AddLine: %v", err)
	}

	// Two taps on the same item make two lines, not a quantity bump.
	if len(c.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(c.Lines))
	}
	if c.Lines[0].ID == c.Lines[1].ID {
		t.Errorf("both lines share id %d", c.Lines[0].ID)
	}
	for i, ln := range c.Lines {
		if ln.Qty != 1 {
			t.Errorf("line %d qty = %d, want 1 (zero request defaults)", i, ln.Qty)
		}
		if ln.Name != "Burger" || ln.UnitPriceCents != 1800 {
			t.Errorf("line %d captured %q/%d, want Burger/1800", i, ln.Name, ln.UnitPriceCents)
		}
	}
	if c.Revision != 2 {
		t.Errorf("revision after two mutations = %d, want 2", c.Revision)
	}
}

func TestAddLineRejectsUnknownAndInactiveItems(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := eng.AddLine(ctx, c.ID, c.Revision, "1-1", 999, 1); !errors.Is(err, ErrUnknownMenuItem) {
		t.Errorf("unknown item: err = %v, want ErrUnknownMenuItem", err)
	}
	if _, err := eng.AddLine(ctx, c.ID, c.Revision, "1-1", 12, 1); !errors.Is(err, ErrUnknownMenuItem) {
		t.Errorf("inactive item: err = %v, want ErrUnknownMenuItem", err)
	}
	// Neither rejected call consumed a revision.
	cur, err := eng.Load(ctx, c.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cur.Revision != c.Revision {
		t.Errorf("revision moved to %d on rejected adds", cur.Revision)
	}
}

func TestFirstLineMovesTablesToOrdering(t *testing.T) {
	eng, _, topo, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1, 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := topo.status(1); got != model.TableOpen {
		t.Fatalf("table 1 status before first line = %s, want OPEN", got)
	}
	if _, err := eng.AddLine(ctx, c.ID, c.Revision, "1-1", 11, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	for _, id := range []uint64{1, 2} {
		if got := topo.status(id); got != model.TableOrdering {
			t.Errorf("table %d status = %s, want ORDERING", id, got)
		}
	}
}

func TestStaleRevisionRejectedAndStateUnchanged(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	// Submit against the previous revision.
	if _, err := eng.SetQty(ctx, c.ID, c.Revision-1, c.Lines[0].ID, 5); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("stale SetQty err = %v, want ErrRevisionConflict", err)
	}

	cur, err := eng.Load(ctx, c.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cur.Revision != c.Revision {
		t.Errorf("revision = %d after rejected mutation, want %d", cur.Revision, c.Revision)
	}
	if cur.Lines[0].Qty != 1 {
		t.Errorf("qty = %d after rejected mutation, want 1", cur.Lines[0].Qty)
	}
}

// Two terminals hold the same revision; one wins, the other must
// re-fetch and resubmit. The engine never merges the losing edit.
func TestConcurrentEditLosesThenRecovers(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	rev := c.Revision
	lineID := c.Lines[0].ID

	// Terminal A comps the line at rev.
	if _, err := eng.ToggleComp(ctx, c.ID, rev, lineID); err != nil {
		t.Fatalf("terminal A ToggleComp: %v", err)
	}
	// Terminal B, still at rev, tries to change quantity and loses.
	if _, err := eng.SetQty(ctx, c.ID, rev, lineID, 3); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("terminal B err = %v, want ErrRevisionConflict", err)
	}
	// Terminal B re-fetches and resubmits against the current revision.
	cur, err := eng.Load(ctx, c.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	updated, err := eng.SetQty(ctx, c.ID, cur.Revision, lineID, 3)
	if err != nil {
		t.Fatalf("terminal B retry: %v", err)
	}
	if updated.Lines[0].Qty != 3 || !updated.Lines[0].Comp {
		t.Errorf("final line qty=%d comp=%v, want qty=3 comp=true", updated.Lines[0].Qty, updated.Lines[0].Comp)
	}
}

func TestSetQtyZeroAndNegativeRemoveLine(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 2)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	removed := c.Lines[0].ID

	c, err = eng.SetQty(ctx, c.ID, c.Revision, removed, -5)
	if err != nil {
		t.Fatalf("SetQty(-5): %v", err)
	}
	if len(c.Lines) != 0 {
		t.Fatalf("line survived qty clamp to zero")
	}

	// Mutating the removed line now misses.
	if _, err := eng.ToggleComp(ctx, c.ID, c.Revision, removed); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("mutation on removed line err = %v, want ErrLineNotFound", err)
	}

	// A later add never reuses the removed id.
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-2", 11, 1)
	if err != nil {
		t.Fatalf("AddLine after removal: %v", err)
	}
	if c.Lines[0].ID == removed {
		t.Errorf("line id %d was reused after removal", removed)
	}
}

func TestClosedCheckIsReadOnly(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	closed, err := eng.Close(ctx, c.ID, c.Revision)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != model.CheckClosed {
		t.Fatalf("status after close = %s", closed.Status)
	}

	if _, err := eng.AddLine(ctx, c.ID, closed.Revision, "1-1", 10, 1); !errors.Is(err, ErrCheckClosed) {
		t.Errorf("AddLine on closed check err = %v, want ErrCheckClosed", err)
	}
	if _, err := eng.SetReceiptNote(ctx, c.ID, closed.Revision, "thanks"); !errors.Is(err, ErrCheckClosed) {
		t.Errorf("SetReceiptNote on closed check err = %v, want ErrCheckClosed", err)
	}
	// The closed gate fires before the revision compare, so even a
	// stale caller learns the check is done rather than retrying.
	if _, err := eng.Close(ctx, c.ID, closed.Revision-1); !errors.Is(err, ErrCheckClosed) {
		t.Errorf("double close err = %v, want ErrCheckClosed", err)
	}
}

func TestCloseMovesTablesToPaying(t *testing.T) {
	eng, _, topo, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1, 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if _, err := eng.Close(ctx, c.ID, c.Revision); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, id := range []uint64{1, 2} {
		if got := topo.status(id); got != model.TablePaying {
			t.Errorf("table %d status = %s, want PAYING", id, got)
		}
	}
}

func TestToggleCompRoundTrips(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	id := c.Lines[0].ID

	c, err = eng.ToggleComp(ctx, c.ID, c.Revision, id)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !c.Lines[0].Comp {
		t.Fatalf("comp = false after first toggle")
	}
	if c.Lines[0].Qty != 1 || c.Lines[0].UnitPriceCents != 1800 {
		t.Errorf("comp toggle touched qty/price: %d/%d", c.Lines[0].Qty, c.Lines[0].UnitPriceCents)
	}
	c, err = eng.ToggleComp(ctx, c.ID, c.Revision, id)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if c.Lines[0].Comp {
		t.Errorf("comp = true after second toggle")
	}
}

func TestSetSplitModeToggleSemantics(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	id := c.Lines[0].ID

	c, err = eng.SetSplitMode(ctx, c.ID, c.Revision, id, model.SplitEven)
	if err != nil {
		t.Fatalf("set EVEN: %v", err)
	}
	if c.Lines[0].SplitMode != model.SplitEven {
		t.Fatalf("split = %s, want EVEN", c.Lines[0].SplitMode)
	}
	// Asking for the mode again resets to NONE.
	c, err = eng.SetSplitMode(ctx, c.ID, c.Revision, id, model.SplitEven)
	if err != nil {
		t.Fatalf("repeat EVEN: %v", err)
	}
	if c.Lines[0].SplitMode != model.SplitNone {
		t.Errorf("split = %s after repeat, want NONE", c.Lines[0].SplitMode)
	}

	if _, err := eng.SetSplitMode(ctx, c.ID, c.Revision, id, "THIRDS"); !errors.Is(err, ErrInvalidSplitMode) {
		t.Errorf("bad mode err = %v, want ErrInvalidSplitMode", err)
	}
}

func TestFreeTextFieldsNormalize(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	id := c.Lines[0].ID

	c, err = eng.SetCustomSplitNote(ctx, c.ID, c.Revision, id, "  Anna pays for this  ")
	if err != nil {
		t.Fatalf("set split note: %v", err)
	}
	if c.Lines[0].CustomSplitNote == nil || *c.Lines[0].CustomSplitNote != "Anna pays for this" {
		t.Errorf("split note = %v, want trimmed text", c.Lines[0].CustomSplitNote)
	}
	c, err = eng.SetCustomSplitNote(ctx, c.ID, c.Revision, id, "   ")
	if err != nil {
		t.Fatalf("clear split note: %v", err)
	}
	if c.Lines[0].CustomSplitNote != nil {
		t.Errorf("blank input left split note set")
	}

	c, err = eng.SetTransferTarget(ctx, c.ID, c.Revision, id, "T4")
	if err != nil {
		t.Fatalf("set transfer: %v", err)
	}
	if c.Lines[0].TransferTo == nil || *c.Lines[0].TransferTo != "T4" {
		t.Errorf("transfer = %v, want T4", c.Lines[0].TransferTo)
	}

	c, err = eng.SetReceiptNote(ctx, c.ID, c.Revision, " happy birthday! ")
	if err != nil {
		t.Fatalf("set receipt note: %v", err)
	}
	if c.ReceiptNote == nil || *c.ReceiptNote != "happy birthday!" {
		t.Errorf("receipt note = %v, want trimmed text", c.ReceiptNote)
	}
}

func TestToggleModifierKeepsSortedSet(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	id := c.Lines[0].ID

	c, err = eng.ToggleModifier(ctx, c.ID, c.Revision, id, "no-onion")
	if err != nil {
		t.Fatalf("add no-onion: %v", err)
	}
	c, err = eng.ToggleModifier(ctx, c.ID, c.Revision, id, "extra-cheese")
	if err != nil {
		t.Fatalf("add extra-cheese: %v", err)
	}
	got := c.Lines[0].ModifierIDs
	if len(got) != 2 || got[0] != "extra-cheese" || got[1] != "no-onion" {
		t.Fatalf("modifiers = %v, want sorted pair", got)
	}

	// Second toggle removes.
	c, err = eng.ToggleModifier(ctx, c.ID, c.Revision, id, "no-onion")
	if err != nil {
		t.Fatalf("remove no-onion: %v", err)
	}
	got = c.Lines[0].ModifierIDs
	if len(got) != 1 || got[0] != "extra-cheese" {
		t.Errorf("modifiers after removal = %v", got)
	}

	if _, err := eng.ToggleModifier(ctx, c.ID, c.Revision, id, "gold-leaf"); !errors.Is(err, ErrUnknownModifier) {
		t.Errorf("unknown modifier err = %v, want ErrUnknownModifier", err)
	}
}

func TestClearAllLinesKeepsCheckOpen(t *testing.T) {
	eng, _, _, _ := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-2", 11, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	c, err = eng.ClearAllLines(ctx, c.ID, c.Revision)
	if err != nil {
		t.Fatalf("ClearAllLines: %v", err)
	}
	if len(c.Lines) != 0 {
		t.Errorf("lines = %d after clear, want 0", len(c.Lines))
	}
	if c.Status != model.CheckOpen {
		t.Errorf("status = %s after clear, want OPEN", c.Status)
	}
	// Ringing in again still works and ids keep advancing.
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine after clear: %v", err)
	}
	if c.Lines[0].ID != 3 {
		t.Errorf("line id after clear = %d, want 3", c.Lines[0].ID)
	}
}

func TestMarkServedAndReset(t *testing.T) {
	eng, _, topo, _ := testFixture()
	ctx := context.Background()

	// Reset is only valid from PAYING.
	if err := eng.ResetTable(ctx, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reset from OPEN err = %v, want ErrInvalidTransition", err)
	}

	if err := eng.MarkServed(ctx, 1); err != nil {
		t.Fatalf("MarkServed: %v", err)
	}
	if got := topo.status(1); got != model.TableServed {
		t.Fatalf("status = %s, want SERVED", got)
	}
	// The kitchen cannot fire twice.
	if err := eng.MarkServed(ctx, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second MarkServed err = %v, want ErrInvalidTransition", err)
	}

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := eng.Close(ctx, c.ID, c.Revision); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := eng.ResetTable(ctx, 1); err != nil {
		t.Fatalf("reset from PAYING: %v", err)
	}
	if got := topo.status(1); got != model.TableOpen {
		t.Errorf("status after reset = %s, want OPEN", got)
	}
}

func TestNotifierFiresOnlyOnAcceptedMutations(t *testing.T) {
	eng, _, _, notif := testFixture()
	ctx := context.Background()

	c, err := eng.OpenOrGet(ctx, []uint64{1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if notif.calls() != 0 {
		t.Fatalf("notifier fired %d times on open", notif.calls())
	}
	c, err = eng.AddLine(ctx, c.ID, c.Revision, "1-1", 10, 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if _, err := eng.SetQty(ctx, c.ID, c.Revision+7, c.Lines[0].ID, 2); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("stale SetQty err = %v", err)
	}
	if _, err := eng.ToggleComp(ctx, c.ID, c.Revision, c.Lines[0].ID); err != nil {
		t.Fatalf("ToggleComp: %v", err)
	}
	if got := notif.calls(); got != 2 {
		t.Errorf("notifier fired %d times, want 2 (rejected mutations are silent)", got)
	}
}
