package allocator

import "testing"

func TestSparseAllocatorSetAndGet(t *testing.T) {
	a := NewSparseRandomAccessAllocator[string]()
	a.Set(5, "five")
	got, ok := a.Get(5)
	if !ok || got != "five" {
		t.Errorf("Get(5) = (%q,%v), want (\"five\",true)", got, ok)
	}
}

func TestSparseAllocatorGetAbsentKey(t *testing.T) {
	a := NewSparseRandomAccessAllocator[string]()
	if _, ok := a.Get(3); ok {
		t.Errorf("expected Get on an absent key to report ok=false")
	}
	if _, ok := a.Get(-1); ok {
		t.Errorf("expected Get on a negative key to report ok=false, not panic")
	}
}

func TestSparseAllocatorSetOverwritesExisting(t *testing.T) {
	a := NewSparseRandomAccessAllocator[int]()
	a.Set(1, 10)
	a.Set(1, 20)
	if got, _ := a.Get(1); got != 20 {
		t.Errorf("expected overwrite, got %d", got)
	}
	if a.Len() != 1 {
		t.Errorf("expected overwriting an existing key not to grow Len, got %d", a.Len())
	}
}

func TestSparseAllocatorRemoveSwapPop(t *testing.T) {
	a := NewSparseRandomAccessAllocator[string]()
	a.Set(1, "a")
	a.Set(2, "b")
	a.Set(3, "c")

	if ok := a.Remove(1); !ok {
		t.Fatalf("expected Remove(1) to report true")
	}
	if a.Len() != 2 {
		t.Fatalf("expected Len()==2 after removing one of three entries, got %d", a.Len())
	}
	if _, ok := a.Get(1); ok {
		t.Errorf("expected key 1 to be gone after Remove")
	}
	// 2 and 3 must both still resolve correctly after the swap-pop.
	if got, ok := a.Get(2); !ok || got != "b" {
		t.Errorf("Get(2) after Remove(1) = (%q,%v), want (\"b\",true)", got, ok)
	}
	if got, ok := a.Get(3); !ok || got != "c" {
		t.Errorf("Get(3) after Remove(1) = (%q,%v), want (\"c\",true)", got, ok)
	}
}

func TestSparseAllocatorRemoveAbsentReturnsFalse(t *testing.T) {
	a := NewSparseRandomAccessAllocator[int]()
	if a.Remove(42) {
		t.Errorf("expected Remove on an absent key to report false")
	}
}

func TestSparseAllocatorDenseAndDenseKeysStayInSync(t *testing.T) {
	a := NewSparseRandomAccessAllocator[string]()
	a.Set(10, "ten")
	a.Set(20, "twenty")
	a.Set(30, "thirty")
	a.Remove(20)

	dense := a.Dense()
	keys := a.DenseKeys()
	if len(dense) != len(keys) {
		t.Fatalf("Dense()/DenseKeys() length mismatch: %d vs %d", len(dense), len(keys))
	}
	for i, k := range keys {
		got, ok := a.Get(k)
		if !ok || got != dense[i] {
			t.Errorf("Dense()[%d]=%q does not match Get(%d)=%q", i, dense[i], k, got)
		}
	}
}

func TestSparseAllocatorLenEmpty(t *testing.T) {
	a := NewSparseRandomAccessAllocator[int]()
	if a.Len() != 0 {
		t.Errorf("expected Len()==0 for a fresh allocator, got %d", a.Len())
	}
}
