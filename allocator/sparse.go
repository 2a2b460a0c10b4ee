package allocator

// SparseRandomAccessAllocator is a sparse-set: it allocates stable dense
// slots backing something like an entity's instance data while also
// supporting fast existence checks and dense iteration, unlike
// RandomAccessAllocator which only tracks occupancy per index. It trades
// one extra indirection (sparse -> dense) for O(1) "iterate only the live
// entries" access.
type SparseRandomAccessAllocator[T any] struct {
	dense    []T
	denseKey []int // denseKey[d] = sparse key owning dense slot d
	sparse   []int // sparse[key] = dense index, or -1 if absent
}

// NewSparseRandomAccessAllocator creates an empty sparse allocator.
//
// Returns:
//   - *SparseRandomAccessAllocator[T]: a ready-to-use allocator
func NewSparseRandomAccessAllocator[T any]() *SparseRandomAccessAllocator[T] {
	return &SparseRandomAccessAllocator[T]{}
}

func (a *SparseRandomAccessAllocator[T]) ensureSparse(key int) {
	for len(a.sparse) <= key {
		a.sparse = append(a.sparse, -1)
	}
}

// Set inserts or overwrites the value stored under key.
//
// Parameters:
//   - key: sparse key (e.g. an entity index)
//   - value: the value to associate with key
func (a *SparseRandomAccessAllocator[T]) Set(key int, value T) {
	a.ensureSparse(key)
	if d := a.sparse[key]; d >= 0 {
		a.dense[d] = value
		return
	}
	a.dense = append(a.dense, value)
	a.denseKey = append(a.denseKey, key)
	a.sparse[key] = len(a.dense) - 1
}

// Get returns the value stored under key and whether it is present.
//
// Parameters:
//   - key: sparse key to look up
//
// Returns:
//   - T: the stored value, or the zero value if absent
//   - bool: true if present
func (a *SparseRandomAccessAllocator[T]) Get(key int) (T, bool) {
	var zero T
	if key < 0 || key >= len(a.sparse) || a.sparse[key] < 0 {
		return zero, false
	}
	return a.dense[a.sparse[key]], true
}

// Remove deletes key from the set using the standard sparse-set swap-pop:
// the last dense element takes the removed slot's place so iteration stays
// dense and O(1).
//
// Parameters:
//   - key: sparse key to remove
//
// Returns:
//   - bool: true if key was present and removed
func (a *SparseRandomAccessAllocator[T]) Remove(key int) bool {
	if key < 0 || key >= len(a.sparse) || a.sparse[key] < 0 {
		return false
	}
	d := a.sparse[key]
	last := len(a.dense) - 1
	a.dense[d] = a.dense[last]
	a.denseKey[d] = a.denseKey[last]
	a.sparse[a.denseKey[d]] = d
	a.dense = a.dense[:last]
	a.denseKey = a.denseKey[:last]
	a.sparse[key] = -1
	return true
}

// Len returns the number of live entries.
func (a *SparseRandomAccessAllocator[T]) Len() int {
	return len(a.dense)
}

// Dense returns the live entries in dense, iteration-friendly order. The
// returned slice aliases internal storage and is invalidated by the next
// Set/Remove call.
//
// Returns:
//   - []T: the dense value slice
func (a *SparseRandomAccessAllocator[T]) Dense() []T {
	return a.dense
}

// DenseKeys returns the sparse keys in the same order as Dense.
//
// Returns:
//   - []int: the dense key slice
func (a *SparseRandomAccessAllocator[T]) DenseKeys() []int {
	return a.denseKey
}
