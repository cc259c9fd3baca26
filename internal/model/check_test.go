package model

import (
	"reflect"
	"testing"
)

func TestNormalizeTableIDs(t *testing.T) {
	cases := []struct {
		name string
		in   []uint64
		want []uint64
	}{
		{"already normal", []uint64{1, 2, 3}, []uint64{1, 2, 3}},
		{"unsorted", []uint64{9, 4, 12}, []uint64{4, 9, 12}},
		{"duplicates", []uint64{7, 7, 2, 7}, []uint64{2, 7}},
		{"zeros dropped", []uint64{0, 5, 0}, []uint64{5}},
		{"empty", nil, []uint64{}},
		{"only zeros", []uint64{0, 0}, []uint64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeTableIDs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeTableIDs(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTableKeyOrderInsensitive(t *testing.T) {
	a := TableKey([]uint64{12, 3, 7})
	b := TableKey([]uint64{7, 12, 3, 3})
	if a != b {
		t.Errorf("keys differ for the same set: %q vs %q", a, b)
	}
	if a != "3-7-12" {
		t.Errorf("key = %q, want %q", a, "3-7-12")
	}
	if got := TableKey([]uint64{42}); got != "42" {
		t.Errorf("single-table key = %q, want %q", got, "42")
	}
}

func TestCheckCloneIsDeep(t *testing.T) {
	note := "window seat"
	splitNote := "Anna pays"
	orig := &Check{
		ID:          1,
		TableIDs:    []uint64{1, 2},
		ReceiptNote: &note,
		Lines: []CheckLine{
			{ID: 1, ModifierIDs: []string{"no-onion"}, CustomSplitNote: &splitNote},
		},
	}
	cp := orig.Clone()

	cp.TableIDs[0] = 99
	cp.Lines[0].ModifierIDs[0] = "changed"
	*cp.Lines[0].CustomSplitNote = "changed"
	*cp.ReceiptNote = "changed"
	cp.Lines = append(cp.Lines, CheckLine{ID: 2})

	if orig.TableIDs[0] != 1 {
		t.Errorf("clone shares TableIDs")
	}
	if orig.Lines[0].ModifierIDs[0] != "no-onion" {
		t.Errorf("clone shares ModifierIDs")
	}
	if *orig.Lines[0].CustomSplitNote != "Anna pays" {
		t.Errorf("clone shares CustomSplitNote")
	}
	if *orig.ReceiptNote != "window seat" {
		t.Errorf("clone shares ReceiptNote")
	}
	if len(orig.Lines) != 1 {
		t.Errorf("clone shares line slice")
	}
}

func TestValidSplitMode(t *testing.T) {
	for _, m := range []SplitMode{SplitNone, SplitEven, SplitCustom} {
		if !ValidSplitMode(m) {
			t.Errorf("ValidSplitMode(%s) = false", m)
		}
	}
	for _, m := range []SplitMode{"", "THIRDS", "even"} {
		if ValidSplitMode(m) {
			t.Errorf("ValidSplitMode(%q) = true", m)
		}
	}
}
