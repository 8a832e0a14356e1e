package txstore

import "github.com/leengari/logminer-core/internal/redo"

// Transaction owns its chunk chain and the trailer coordinates needed by
// rollback and the splice algorithm (§3.3).
type Transaction struct {
	Xid         redo.Xid
	FirstScn    redo.Scn
	LastScn     redo.Scn
	OpCodes     int
	TcHead      *TransactionChunk
	TcTail      *TransactionChunk
	LastUba     redo.Uba
	LastDba     redo.Dba
	LastSlt     uint8
	LastRci     uint8
	IsBegin     bool
	IsCommit    bool
	IsRollback  bool
}

// NewTransaction creates a transaction for xid, allocating its first
// chunk from pool (§3.3 "created on first observed record for an XID").
func NewTransaction(xid redo.Xid, pool *TransactionBuffer) *Transaction {
	c := pool.AllocChunk()
	return &Transaction{
		Xid:    xid,
		TcHead: c,
		TcTail: c,
	}
}

// touch updates first_scn/last_scn so that first_scn = min, last_scn = max
// (§4.2 apply step 3).
func (t *Transaction) touch(scn redo.Scn) {
	if t.FirstScn == 0 || scn < t.FirstScn {
		t.FirstScn = scn
	}
	if scn > t.LastScn {
		t.LastScn = scn
	}
}

// EntryCount walks the chunk chain and counts live entries, used by
// tests to check the §8.1 invariant op_codes == count of entries across
// chunks without trusting the maintained counter.
func (t *Transaction) EntryCount() int {
	n := 0
	for c := t.TcHead; c != nil; c = c.Next {
		n += c.Count
	}
	return n
}

// Release returns every chunk owned by t back to pool (§3.3 "destroyed
// after flush (all chunks returned to the free list)").
func (t *Transaction) Release(pool *TransactionBuffer) {
	c := t.TcHead
	for c != nil {
		next := c.Next
		pool.FreeChunk(c)
		c = next
	}
	t.TcHead, t.TcTail = nil, nil
}
