package txstore

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/redo"
	"github.com/leengari/logminer-core/internal/redo/decoder"
)

// FlushSink receives entries in insertion order during Store.Flush; it is
// implemented by internal/emitter.Emitter. Kept as a narrow interface
// here so txstore never imports emitter (§2 "Control flows top-down
// only; the decoder has no back-edge into the store", the same
// discipline applies one layer up).
type FlushSink interface {
	Process(e Entry) error
	Finish() error
}

// Store implements TransactionStore (§4.2): apply, rollback_last,
// rollback_by_key, flush, plus the commit-ordering priority queue (§3.3).
// A Store is owned by exactly one source; its TransactionBuffer is never
// shared across threads (§5).
type Store struct {
	mu    sync.Mutex
	env   *env.Env
	pool  *TransactionBuffer
	txs   map[redo.Xid]*Transaction
	queue *commitQueue
}

// New creates an empty Store bound to one source's Env.
func New(e *env.Env) *Store {
	return &Store{
		env:   e,
		pool:  NewTransactionBuffer(),
		txs:   make(map[redo.Xid]*Transaction),
		queue: newCommitQueue(),
	}
}

func (s *Store) getOrCreate(xid redo.Xid) *Transaction {
	t, ok := s.txs[xid]
	if !ok {
		t = NewTransaction(xid, s.pool)
		s.txs[xid] = t
		s.queue.push(t)
	}
	return t
}

// Apply implements §4.2 apply(): splice multi-block UNDO fragments,
// append the entry, update trailer coordinates, bump op_codes.
func (s *Store) Apply(xid redo.Xid, objn redo.ObjN, objd redo.ObjD, uba redo.Uba, dba redo.Dba, slt, rci uint8, redo1, redo2 *redo.RedoLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.getOrCreate(xid)

	if redo1 != nil && redo1.Opcode == redo.OpCodeKtudb &&
		redo1.Flg&(redo.FlgMultiBlockUndoHead|redo.FlgMultiBlockUndoMid) != 0 {
		merged, spliced := s.trySplice(t, redo1)
		if spliced {
			redo1 = merged
		}
	}

	pair := uint32(0)
	if redo1 != nil {
		pair = redo.OpcodePair(redo1.Opcode, opcodeOf(redo2))
	}

	entry := Entry{
		Objn: objn, Objd: objd, OpcodePair: pair,
		Redo1: redo1, Redo2: redo2,
		Uba: uba, Dba: dba, Slt: slt, Rci: rci,
		Scn: scnOf(redo1, redo2),
	}

	if t.TcTail.Full() {
		c := s.pool.AllocChunk()
		t.TcTail.Next = c
		t.TcTail = c
	}
	t.TcTail.Append(entry)

	t.LastUba, t.LastDba, t.LastSlt, t.LastRci = uba, dba, slt, rci
	t.OpCodes++
	t.touch(entry.Scn)

	if redo1 != nil && redo1.Opcode == redo.OpCodeBeginTxn {
		t.IsBegin = true
	}
	s.queue.fix(t)
	return nil
}

func opcodeOf(r *redo.RedoLogRecord) uint16 {
	if r == nil {
		return 0
	}
	return r.Opcode
}

func scnOf(a, b *redo.RedoLogRecord) redo.Scn {
	if a != nil && a.Scn != 0 {
		return a.Scn
	}
	if b != nil {
		return b.Scn
	}
	return 0
}

// trySplice implements the §4.2 multi-block UNDO splice: peek the last
// entry on tc_tail; if its opcode is 0x05010000 and its flg has
// MULTIBLOCKUNDOTAIL, merge the two records' raw fields (head's first,
// then tail's remaining, per original_source/src/Transaction.cpp) and
// re-decode the merged bytes through the 0x0501 parser, then roll back
// the partial predecessor. If the predecessor is missing, record a
// diagnostic and continue (§7 taxonomy #4).
func (s *Store) trySplice(t *Transaction, head *redo.RedoLogRecord) (*redo.RedoLogRecord, bool) {
	last := t.TcTail.Last()
	if last == nil || last.Redo1 == nil {
		s.env.Diagnostic(slog.LevelWarn, "missing multi-block undo predecessor", "xid", t.Xid)
		return nil, false
	}
	tail := last.Redo1
	if tail.Opcode != redo.OpCodeKtudb || tail.Flg&redo.FlgMultiBlockUndoTail == 0 {
		s.env.Diagnostic(slog.LevelWarn, "missing multi-block undo predecessor", "xid", t.Xid)
		return nil, false
	}

	raw := decoder.Resplice(head, tail)
	merged := decoder.New().Decode(raw, s.env)
	merged.Flg = merged.Flg &^ (redo.FlgMultiBlockUndoHead | redo.FlgMultiBlockUndoMid |
		redo.FlgMultiBlockUndoTail | redo.FlgLastBufferSplit)

	tailScn := tail.Scn
	s.rollbackLastLocked(t, tailScn)
	return merged, true
}

// RollbackLast implements §4.2 rollback_last(scn): pop the most recent
// entry (from the last non-empty chunk); decrement op_codes; update
// last_scn = max(last_scn, scn). The popped entry is not compared
// against the stored last_* coordinates, and those are left unchanged.
func (s *Store) RollbackLast(xid redo.Xid, scn redo.Scn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[xid]
	if !ok {
		return fmt.Errorf("rollback_last: unknown xid %s", xid)
	}
	return s.rollbackLastLocked(t, scn)
}

func (s *Store) rollbackLastLocked(t *Transaction, scn redo.Scn) error {
	c := t.TcTail
	if c.Count == 0 {
		// walk back to find a non-empty chunk (tail may have emptied)
		for p := t.TcHead; p != nil; p = p.Next {
			if p.Count > 0 {
				c = p
			}
		}
	}
	e, ok := c.PopLast()
	if !ok {
		return fmt.Errorf("rollback_last: xid %s has no entries", t.Xid)
	}
	_ = e
	t.OpCodes--
	if scn > t.LastScn {
		t.LastScn = scn
	}
	s.queue.fix(t)
	return nil
}

// RollbackByKey implements §4.2 rollback_by_key: scan the tail chunk for
// a matching (uba,dba,slt,rci) entry, splice it out. Per §9's open
// question this intentionally does NOT update last_*/trailer pointers,
// so the next rollback_last will use stale coordinates, exactly as
// upstream leaves it (kept as-is rather than silently "fixed").
func (s *Store) RollbackByKey(xid redo.Xid, uba redo.Uba, dba redo.Dba, slt, rci uint8, scn redo.Scn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[xid]
	if !ok {
		return false
	}
	c := t.TcTail
	for i := c.Count - 1; i >= 0; i-- {
		e := c.Entries[i]
		if e.Uba == uba && e.Dba == dba && e.Slt == slt && e.Rci == rci {
			if _, removed := c.RemoveAt(i); removed {
				t.OpCodes--
				if scn > t.LastScn {
					t.LastScn = scn
				}
				s.queue.fix(t)
				return true
			}
		}
	}
	return false
}

// MarkCommit records that xid has committed at scn and re-sorts the
// priority queue (§3.3 "Ordering"): commits drain in non-decreasing SCN.
func (s *Store) MarkCommit(xid redo.Xid, scn redo.Scn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.getOrCreate(xid)
	t.IsCommit = true
	t.touch(scn)
	s.queue.fix(t)
}

// MarkRollback records that xid rolled back entirely; it will still be
// dequeued (so its chunks are released) but never flushed to a Sink.
func (s *Store) MarkRollback(xid redo.Xid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.txs[xid]; ok {
		t.IsRollback = true
	}
}

// PopReady dequeues the highest-priority transaction, or nil if the queue
// is empty. When no committed transaction is queued, it returns an
// uncommitted one (lowest last_scn, then lowest xid). Used by the driver
// loop to decide what to hand to Flush next.
func (s *Store) PopReady() *Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.popReady()
}

// Flush implements §4.2 flush(sink): walk every chunk in insertion order,
// handing each entry to sink, then release the transaction's chunks back
// to the pool (§3.3 "destroyed after flush").
func (s *Store) Flush(t *Transaction, sink FlushSink) error {
	if t.IsRollback {
		s.release(t)
		return nil
	}
	for c := t.TcHead; c != nil; c = c.Next {
		for i := 0; i < c.Count; i++ {
			if err := sink.Process(c.Entries[i]); err != nil {
				return err
			}
		}
	}
	if err := sink.Finish(); err != nil {
		return err
	}
	s.release(t)
	return nil
}

func (s *Store) release(t *Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Release(s.pool)
	delete(s.txs, t.Xid)
}

// OpCodes returns the live entry counter for xid (test/diagnostic use).
func (s *Store) OpCodes(xid redo.Xid) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.txs[xid]; ok {
		return t.OpCodes
	}
	return 0
}

// Transaction returns the in-flight transaction for xid, or nil.
func (s *Store) Transaction(xid redo.Xid) *Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs[xid]
}
