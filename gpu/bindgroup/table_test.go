package bindgroup

import "testing"

func TestNewBindingTableStartsFullyFree(t *testing.T) {
	bt := NewBindingTable(4)
	if bt.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", bt.Capacity())
	}
	if bt.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0 on a fresh table", bt.InUse())
	}
}

func TestGetNewAllocatesSequentiallyFromLIFO(t *testing.T) {
	bt := NewBindingTable(3)
	first, err := bt.GetNew()
	if err != nil {
		t.Fatalf("GetNew() error: %v", err)
	}
	if first != 0 {
		t.Errorf("expected first allocation to be index 0, got %d", first)
	}
	if bt.InUse() != 1 {
		t.Errorf("InUse() = %d, want 1", bt.InUse())
	}
}

func TestGetNewExhaustionReturnsError(t *testing.T) {
	bt := NewBindingTable(1)
	if _, err := bt.GetNew(); err != nil {
		t.Fatalf("first GetNew() should succeed: %v", err)
	}
	if _, err := bt.GetNew(); err == nil {
		t.Errorf("expected an error once the table is exhausted")
	}
}

func TestFreeRecyclesIndexForReuse(t *testing.T) {
	bt := NewBindingTable(1)
	idx, _ := bt.GetNew()
	if err := bt.Free(idx); err != nil {
		t.Fatalf("Free() error: %v", err)
	}
	if bt.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0 after freeing the only slot", bt.InUse())
	}
	if _, err := bt.GetNew(); err != nil {
		t.Errorf("expected freed slot to be reusable, got error: %v", err)
	}
}

func TestFreeOutOfRangeErrors(t *testing.T) {
	bt := NewBindingTable(2)
	if err := bt.Free(5); err == nil {
		t.Errorf("expected an error freeing an out-of-range index")
	}
}

func TestFreeDoubleFreeErrors(t *testing.T) {
	bt := NewBindingTable(2)
	idx, _ := bt.GetNew()
	if err := bt.Free(idx); err != nil {
		t.Fatalf("first Free() should succeed: %v", err)
	}
	if err := bt.Free(idx); err == nil {
		t.Errorf("expected a double-free to error")
	}
}

func TestFreeOfNeverAllocatedIndexErrors(t *testing.T) {
	bt := NewBindingTable(4)
	if err := bt.Free(2); err == nil {
		t.Errorf("expected freeing a never-allocated index to error")
	}
}

func TestResetFreesEverySlot(t *testing.T) {
	bt := NewBindingTable(3)
	bt.GetNew()
	bt.GetNew()
	bt.Reset()
	if bt.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0 after Reset", bt.InUse())
	}
	for i := 0; i < 3; i++ {
		if _, err := bt.GetNew(); err != nil {
			t.Errorf("expected full capacity available after Reset, GetNew() #%d errored: %v", i, err)
		}
	}
	if _, err := bt.GetNew(); err == nil {
		t.Errorf("expected the table to be exhausted again after reallocating full capacity")
	}
}
