// Package txstore implements the per-transaction arena (§3.3, §3.4) and
// the TransactionStore operations (§4.2): apply, rollback_last,
// rollback_by_key, flush.
package txstore

import "github.com/leengari/logminer-core/internal/redo"

// ChunkEntries is the fixed number of entries per TransactionChunk. A
// larger value amortizes allocation at the cost of wasting memory on
// short transactions; this mirrors the teacher's fixed WriteBufferSize
// trade-off in internal/wal/types.go.
const ChunkEntries = 64

// Entry is one appended change within a transaction (§3.3).
type Entry struct {
	Objn        redo.ObjN
	Objd        redo.ObjD
	OpcodePair  uint32
	Redo1       *redo.RedoLogRecord
	Redo2       *redo.RedoLogRecord
	Uba         redo.Uba
	Dba         redo.Dba
	Slt         uint8
	Rci         uint8
	Scn         redo.Scn
}

// TransactionChunk is a fixed-size arena holding a contiguous run of
// Entry values; chunks chain into a singly-linked list per transaction
// (§3.3). Appending past Entries' capacity requires a new chunk from the
// pool's free list; it never reallocates in place.
type TransactionChunk struct {
	Entries []Entry
	Count   int
	Next    *TransactionChunk
}

func newChunk() *TransactionChunk {
	return &TransactionChunk{Entries: make([]Entry, ChunkEntries)}
}

// Full reports whether the chunk has no room for another entry.
func (c *TransactionChunk) Full() bool { return c.Count >= len(c.Entries) }

// Append adds e to the chunk. Caller must check Full() first.
func (c *TransactionChunk) Append(e Entry) {
	c.Entries[c.Count] = e
	c.Count++
}

// Last returns a pointer to the most recently appended entry, or nil if
// the chunk is empty.
func (c *TransactionChunk) Last() *Entry {
	if c.Count == 0 {
		return nil
	}
	return &c.Entries[c.Count-1]
}

// PopLast removes and returns the most recently appended entry.
func (c *TransactionChunk) PopLast() (Entry, bool) {
	if c.Count == 0 {
		return Entry{}, false
	}
	c.Count--
	e := c.Entries[c.Count]
	c.Entries[c.Count] = Entry{} // drop references so the pool doesn't pin memory
	return e, true
}

// RemoveAt splices out the entry at index i, shifting later entries down
// by one (used by rollback_by_key, §4.2, when the undone record is not
// the most recent).
func (c *TransactionChunk) RemoveAt(i int) (Entry, bool) {
	if i < 0 || i >= c.Count {
		return Entry{}, false
	}
	e := c.Entries[i]
	copy(c.Entries[i:c.Count-1], c.Entries[i+1:c.Count])
	c.Count--
	c.Entries[c.Count] = Entry{}
	return e, true
}

// reset clears a chunk for reuse by the free list.
func (c *TransactionChunk) reset() {
	for i := 0; i < c.Count; i++ {
		c.Entries[i] = Entry{}
	}
	c.Count = 0
	c.Next = nil
}
