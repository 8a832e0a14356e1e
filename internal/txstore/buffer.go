package txstore

// TransactionBuffer is a pool of fixed-size chunks with a free list
// (§3.4). It is owned by exactly one source's reader thread, with no
// cross-thread sharing (§5 "Shared-resource policy"), so it needs no
// internal locking.
type TransactionBuffer struct {
	free *TransactionChunk
}

// NewTransactionBuffer creates an empty pool; chunks are allocated lazily
// on first AllocChunk call (matches the teacher's lazy-allocate-on-miss
// pattern in internal/storage/manager for table data).
func NewTransactionBuffer() *TransactionBuffer {
	return &TransactionBuffer{}
}

// AllocChunk returns a chunk from the free list, or allocates a new one
// if the list is empty. O(1) amortized.
func (b *TransactionBuffer) AllocChunk() *TransactionChunk {
	if b.free == nil {
		return newChunk()
	}
	c := b.free
	b.free = c.Next
	c.Next = nil
	return c
}

// FreeChunk returns c to the free list for reuse. Memory is never
// reallocated while a record is in flight; only the free-list links
// change.
func (b *TransactionBuffer) FreeChunk(c *TransactionChunk) {
	c.reset()
	c.Next = b.free
	b.free = c
}
