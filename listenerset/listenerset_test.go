package listenerset

import "testing"

func TestInsertIdempotent(t *testing.T) {
	var s Set[int]
	calls := 0
	cb := func(data int, ctx any) { calls++ }

	if !s.Insert(cb, "first") {
		t.Fatalf("expected insert to succeed")
	}
	if !s.Insert(cb, "second") {
		t.Fatalf("expected repeated insert to succeed")
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly one entry after duplicate insert, got %d", s.Len())
	}

	var seenCtx any
	s.Each(func(cb Callback[int], ctx any) { seenCtx = ctx })
	if seenCtx != "first" {
		t.Fatalf("expected ctx to remain %q, got %v", "first", seenCtx)
	}
}

func TestRemoveAbsentIsNotError(t *testing.T) {
	var s Set[int]
	cb := func(data int, ctx any) {}

	if !s.Remove(cb) {
		t.Fatalf("removing an absent listener must still report true")
	}
}

func TestEachDispatchesOncePerListener(t *testing.T) {
	var s Set[int]
	count := 0
	cb := func(data int, ctx any) { count++ }

	s.Insert(cb, nil)
	s.Insert(cb, nil)

	s.Each(func(cb Callback[int], ctx any) { cb(42, ctx) })
	if count != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", count)
	}
}

func TestGrowthAndShrink(t *testing.T) {
	var s Set[int]
	cbs := make([]Callback[int], 0, 100)
	for i := 0; i < 100; i++ {
		i := i
		cb := func(data int, ctx any) { _ = i }
		cbs = append(cbs, cb)
		s.Insert(cb, nil)
	}
	if s.Len() != 100 {
		t.Fatalf("expected 100 entries, got %d", s.Len())
	}

	for _, cb := range cbs {
		s.Remove(cb)
	}
	if s.Len() != 0 {
		t.Fatalf("expected 0 entries after removing all, got %d", s.Len())
	}
	if cap(s.elems) < minCapacity {
		t.Fatalf("capacity should never shrink below minCapacity, got %d", cap(s.elems))
	}
}

func TestOrderIsDeterministicAcrossIterations(t *testing.T) {
	var s Set[int]
	a := func(data int, ctx any) {}
	b := func(data int, ctx any) {}
	c := func(data int, ctx any) {}
	s.Insert(b, nil)
	s.Insert(a, nil)
	s.Insert(c, nil)

	var first []uintptr
	s.Each(func(cb Callback[int], ctx any) { first = append(first, callbackID(cb)) })

	var second []uintptr
	s.Each(func(cb Callback[int], ctx any) { second = append(second, callbackID(cb)) })

	if len(first) != len(second) {
		t.Fatalf("iteration length changed between calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("iteration order changed between calls at index %d", i)
		}
	}
}
