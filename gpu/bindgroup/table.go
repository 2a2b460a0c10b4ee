package bindgroup

import "fmt"

// BindingTable is the bindless sub-slot allocator for a single binding:
// a fixed-capacity array of indices handed out via a LIFO free-list.
// Exhausting the table or freeing an unknown/already-free index is an
// error rather than a silent no-op, since a double-free almost always
// means two callers believe they own the same GPU resource slot.
type BindingTable struct {
	capacity uint32
	occupied []bool
	freeList []uint32
}

// NewBindingTable creates a table with the given fixed capacity.
//
// Parameters:
//   - capacity: the number of bindless sub-slots this table manages
//
// Returns:
//   - *BindingTable: the new table, fully free
func NewBindingTable(capacity uint32) *BindingTable {
	t := &BindingTable{
		capacity: capacity,
		occupied: make([]bool, capacity),
		freeList: make([]uint32, capacity),
	}
	for i := uint32(0); i < capacity; i++ {
		t.freeList[i] = capacity - 1 - i
	}
	return t
}

// GetNew pops the next free index off the table.
//
// Returns:
//   - uint32: the allocated index
//   - error: an error if the table is exhausted
func (t *BindingTable) GetNew() (uint32, error) {
	if len(t.freeList) == 0 {
		return 0, fmt.Errorf("bindgroup: binding table exhausted (capacity %d)", t.capacity)
	}
	idx := t.freeList[len(t.freeList)-1]
	t.freeList = t.freeList[:len(t.freeList)-1]
	t.occupied[idx] = true
	return idx, nil
}

// Free returns index to the table.
//
// Parameters:
//   - index: the index to free
//
// Returns:
//   - error: an error if index is out of range or already free
func (t *BindingTable) Free(index uint32) error {
	if index >= t.capacity {
		return fmt.Errorf("bindgroup: free of out-of-range index %d (capacity %d)", index, t.capacity)
	}
	if !t.occupied[index] {
		return fmt.Errorf("bindgroup: double-free of index %d", index)
	}
	t.occupied[index] = false
	t.freeList = append(t.freeList, index)
	return nil
}

// Reset frees every index in the table.
func (t *BindingTable) Reset() {
	t.freeList = t.freeList[:0]
	for i := uint32(0); i < t.capacity; i++ {
		t.occupied[i] = false
		t.freeList = append(t.freeList, t.capacity-1-i)
	}
}

// Capacity returns the table's fixed size.
func (t *BindingTable) Capacity() uint32 { return t.capacity }

// InUse reports how many indices are currently allocated.
func (t *BindingTable) InUse() uint32 { return t.capacity - uint32(len(t.freeList)) }
