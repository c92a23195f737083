package dispose

import "testing"

func TestStoreDisposeReverseOrder(t *testing.T) {
	s := NewStore()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.AddFunc(func() { order = append(order, i) })
	}

	s.Dispose()

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("expected %d cleanups, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("cleanup %d: expected %d, got %d", i, want[i], order[i])
		}
	}
}

func TestStoreDisposeIdempotent(t *testing.T) {
	s := NewStore()
	count := 0
	s.AddFunc(func() { count++ })

	s.Dispose()
	s.Dispose()

	if count != 1 {
		t.Errorf("expected cleanup to run once, ran %d times", count)
	}
	if !s.IsDisposed() {
		t.Error("expected store to report disposed")
	}
}

func TestStoreAddAfterDispose(t *testing.T) {
	s := NewStore()
	s.Dispose()

	ran := false
	s.AddFunc(func() { ran = true })

	if !ran {
		t.Error("expected cleanup added to disposed store to run immediately")
	}
	if s.Len() != 0 {
		t.Errorf("expected no pending cleanups, got %d", s.Len())
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	count := 0
	s.AddFunc(func() { count++ })
	s.Clear()
	s.AddFunc(func() { count++ })

	if count != 1 {
		t.Errorf("expected 1 cleanup after Clear, got %d", count)
	}
	if s.IsDisposed() {
		t.Error("Clear should not dispose the store")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 pending cleanup, got %d", s.Len())
	}
}

func TestOnceAndCombine(t *testing.T) {
	count := 0
	d := Once(func() { count++ })
	d.Dispose()
	d.Dispose()
	if count != 1 {
		t.Errorf("Once ran %d times", count)
	}

	var order []string
	c := Combine(
		Func(func() { order = append(order, "a") }),
		Func(func() { order = append(order, "b") }),
	)
	c.Dispose()
	c.Dispose()
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("unexpected combine order %v", order)
	}

	None.Dispose()
}
