package allocator

import "testing"

func TestNewRingBufferAllocatorRejectsZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected capacity<=0 to panic")
		}
	}()
	NewRingBufferAllocator[int](0)
}

func TestRingBufferPushPopFIFO(t *testing.T) {
	r := NewRingBufferAllocator[int](3)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	for _, want := range []int{1, 2, 3} {
		got, ok := r.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = (%d,%v), want (%d,true)", got, ok, want)
		}
	}
}

func TestRingBufferPopEmptyReturnsFalse(t *testing.T) {
	r := NewRingBufferAllocator[int](2)
	_, ok := r.Pop()
	if ok {
		t.Fatalf("expected Pop() on an empty ring to report ok=false")
	}
}

func TestRingBufferPushOverwritesOldestWhenFull(t *testing.T) {
	r := NewRingBufferAllocator[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3) // overwrites 1
	if got := r.Len(); got != 2 {
		t.Fatalf("expected Len()==2 (capacity) after overflow, got %d", got)
	}
	got, _ := r.Pop()
	if got != 2 {
		t.Errorf("expected the oldest surviving entry to be 2, got %d", got)
	}
	got, _ = r.Pop()
	if got != 3 {
		t.Errorf("expected the next entry to be 3, got %d", got)
	}
}

func TestRingBufferLenAndCap(t *testing.T) {
	r := NewRingBufferAllocator[int](4)
	if r.Cap() != 4 {
		t.Errorf("Cap() = %d, want 4", r.Cap())
	}
	r.Push(10)
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRingBufferAt(t *testing.T) {
	r := NewRingBufferAllocator[int](3)
	r.Push(10)
	r.Push(20)
	r.Push(30)
	if got := r.At(0); got != 10 {
		t.Errorf("At(0) = %d, want 10 (oldest)", got)
	}
	if got := r.At(2); got != 30 {
		t.Errorf("At(2) = %d, want 30 (newest)", got)
	}
}

func TestRingBufferAtAfterWraparound(t *testing.T) {
	r := NewRingBufferAllocator[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3) // head wraps, 1 is dropped
	if got := r.At(0); got != 2 {
		t.Errorf("At(0) after wraparound = %d, want 2", got)
	}
	if got := r.At(1); got != 3 {
		t.Errorf("At(1) after wraparound = %d, want 3", got)
	}
}
