package extapi

import "testing"

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{NewPosition(0, 0), NewPosition(0, 0), 0},
		{NewPosition(0, 1), NewPosition(0, 2), -1},
		{NewPosition(1, 0), NewPosition(0, 9), 1},
		{NewPosition(2, 5), NewPosition(3, 0), -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(1, 2, 3, 4)

	if !r.Contains(NewPosition(1, 2)) || !r.Contains(NewPosition(3, 4)) {
		t.Error("range ends should be contained")
	}
	if r.Contains(NewPosition(1, 1)) || r.Contains(NewPosition(3, 5)) {
		t.Error("positions outside the range should not be contained")
	}
	if !r.ContainsRange(NewRange(2, 0, 2, 10)) {
		t.Error("expected inner range to be contained")
	}
	if r.StrictlyContains(r) {
		t.Error("a range does not strictly contain itself")
	}
	if !r.StrictlyContains(NewRange(1, 2, 3, 3)) {
		t.Error("expected strict containment")
	}
}

func TestNewRangeSwapsEnds(t *testing.T) {
	r := NewRange(5, 0, 1, 0)
	if r.Start.Line != 1 || r.End.Line != 5 {
		t.Errorf("expected swapped range, got %v", r)
	}
}

func TestRangeIntersection(t *testing.T) {
	a := NewRange(0, 0, 5, 0)

	got, ok := a.Intersection(NewRange(3, 0, 8, 0))
	if !ok || got != NewRange(3, 0, 5, 0) {
		t.Errorf("unexpected intersection %v %v", got, ok)
	}

	got, ok = a.Intersection(NewRange(5, 0, 6, 0))
	if !ok || !got.IsEmpty() {
		t.Errorf("touching ranges should intersect in an empty range, got %v %v", got, ok)
	}

	if _, ok := a.Intersection(NewRange(6, 0, 7, 0)); ok {
		t.Error("disjoint ranges should not intersect")
	}
}

func TestCodeActionKindContains(t *testing.T) {
	tests := []struct {
		k, other CodeActionKind
		want     bool
	}{
		{CodeActionEmpty, CodeActionQuickFix, true},
		{CodeActionRefactor, "refactor.extract", true},
		{CodeActionRefactor, "refactorx", false},
		{CodeActionSource, CodeActionSourceOrganize, true},
		{CodeActionSourceOrganize, CodeActionSource, false},
	}
	for _, tt := range tests {
		if got := tt.k.Contains(tt.other); got != tt.want {
			t.Errorf("%q.Contains(%q) = %v, want %v", tt.k, tt.other, got, tt.want)
		}
	}
	if !CodeActionSourceOrganize.Intersects(CodeActionSource) {
		t.Error("expected kinds to intersect")
	}
}

func TestWorkspaceEditGroupsByURI(t *testing.T) {
	var w WorkspaceEdit
	w.Replace("file:///a", NewRange(0, 0, 0, 1), "x")
	w.Insert("file:///b", NewPosition(1, 0), "y")
	w.Replace("file:///a", NewRange(2, 0, 2, 1), "z")

	if len(w.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(w.Entries))
	}
	if len(w.Entries[0].Edits) != 2 {
		t.Errorf("expected 2 edits for a, got %d", len(w.Entries[0].Edits))
	}
	if w.Size() != 3 {
		t.Errorf("expected size 3, got %d", w.Size())
	}
}

func TestDocumentSymbolsLen(t *testing.T) {
	var nilSymbols *DocumentSymbols
	if nilSymbols.Len() != 0 {
		t.Error("nil symbols should have length 0")
	}
	s := &DocumentSymbols{Flat: []*SymbolInformation{{Name: "a"}, {Name: "b"}}}
	if s.Len() != 2 {
		t.Errorf("expected 2, got %d", s.Len())
	}
}
