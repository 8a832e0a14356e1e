// Package emitter implements the commit-time flush (§4.3): DML run
// assembly, opcode-pair dispatch, and best-effort transaction
// fragmentation under backpressure. Emitter satisfies txstore.FlushSink,
// so a driver calls store.Flush(tx, emitter) directly; the Emitter has
// no back-edge into txstore beyond that narrow interface (§9 "Opcode
// dispatch" applied one layer up, same discipline as the decoder).
package emitter

import (
	"log/slog"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/redo"
	"github.com/leengari/logminer-core/internal/sink"
	"github.com/leengari/logminer-core/internal/txstore"
)

// MaxTransactionSize is the downstream headroom (Buffer.Headroom) the
// Emitter expects during a flush (§4.3 "Backpressure"): below it, Begin
// logs a diagnostic and maybeSplit fragments the transaction before the
// next entry. Chosen to match the teacher's fixed WAL
// WriteBufferSize order of magnitude rather than invented from nothing.
const MaxTransactionSize = 4096

// Buffer reports remaining downstream capacity; satisfied by
// *ringbuf.CommandBuffer. Optional: a nil Buffer disables backpressure
// checks entirely (used by tests and by Sinks with no ring in front).
type Buffer interface {
	Headroom() int
}

// Emitter assembles DML runs and dispatches opcode pairs to a Sink
// (§4.3). One Emitter is created per flush-driving goroutine; Begin
// resets its per-transaction state (xid, scn, entry count, open run).
// The entry count is not consulted when deciding to fragment; only the
// Buffer's headroom is.
type Emitter struct {
	sink   sink.Sink
	env    *env.Env
	buffer Buffer

	xid   redo.Xid
	scn   redo.Scn
	count int

	runActive bool
	runType   sink.DmlType
	runChain  []*redo.RedoLogRecord
}

// New builds an Emitter writing to sk, diagnosing through e, with an
// optional backpressure Buffer (pass nil to disable the check).
func New(sk sink.Sink, e *env.Env, buf Buffer) *Emitter {
	return &Emitter{sink: sk, env: e, buffer: buf}
}

// Begin starts flushing transaction xid committed at scn: performs the
// pre-flush headroom check (§4.3 "Before flush...") and calls
// sink.BeginTran.
func (em *Emitter) Begin(xid redo.Xid, scn redo.Scn) error {
	em.xid, em.scn, em.count = xid, scn, 0
	em.runActive = false
	em.runChain = nil
	if em.buffer != nil && em.buffer.Headroom() < MaxTransactionSize {
		em.env.Diagnostic(slog.LevelDebug, "emitter: insufficient downstream headroom before flush", "xid", xid)
	}
	return em.sink.BeginTran(scn, xid)
}

// Process implements txstore.FlushSink: classify one entry by
// opcode_pair (§4.3 table) and dispatch.
func (em *Emitter) Process(e txstore.Entry) error {
	if err := em.maybeSplit(); err != nil {
		return err
	}
	em.count++

	switch e.OpcodePair {
	case redo.PairInsert, redo.PairDelete, redo.PairUpdate, redo.PairOverwrite:
		return em.chainRun(e)
	case redo.PairForwardAddr:
		return em.closeRun()
	case redo.PairInsertMulti:
		return em.sink.ParseInsertMultiple(e.Redo1, e.Redo2)
	case redo.PairDeleteMulti:
		return em.sink.ParseDeleteMultiple(e.Redo1, e.Redo2)
	case redo.PairDdlTruncate:
		return em.sink.ParseDdl(e.Redo1)
	default:
		em.env.Diagnostic(slog.LevelDebug, "emitter: unknown opcode pair, skipping", "pair", e.OpcodePair)
		return nil
	}
}

// Finish implements txstore.FlushSink: close any still-open run (a
// malformed stream that never saw FB_L) and commit.
func (em *Emitter) Finish() error {
	if err := em.closeRun(); err != nil {
		return err
	}
	return em.sink.CommitTran()
}

// maybeSplit implements §4.3's mid-flush fragmentation: once the
// downstream buffer's headroom drops below MaxTransactionSize, commit
// the in-progress message and open a new one carrying the same XID/SCN.
// Best-effort, not a transactional commit (§4.3).
func (em *Emitter) maybeSplit() error {
	if em.buffer == nil || em.buffer.Headroom() >= MaxTransactionSize {
		return nil
	}
	if err := em.sink.CommitTran(); err != nil {
		return err
	}
	em.count = 0
	return em.sink.BeginTran(em.scn, em.xid)
}

// chainRun implements §4.3's DML run assembly: copy the supplemental log
// from redo1 onto redo2, splice redo2 into the run chain, and emit once
// FB_L closes it.
func (em *Emitter) chainRun(e txstore.Entry) error {
	if e.Redo1 == nil || e.Redo2 == nil {
		em.env.Diagnostic(slog.LevelDebug, "emitter: DML pair missing a side, skipping")
		return nil
	}
	copySupplementalLog(e.Redo2, e.Redo1)
	piece := e.Redo2

	if !em.runActive {
		em.runActive = true
		em.runChain = []*redo.RedoLogRecord{piece}
		em.runType = inferDmlType(e.Redo1, piece)
	} else {
		em.spliceIntoRun(piece)
	}

	if piece.SuppLogFb&redo.FbL != 0 {
		return em.closeRun()
	}
	return nil
}

// spliceIntoRun implements the three splice positions of §4.3.
func (em *Emitter) spliceIntoRun(piece *redo.RedoLogRecord) {
	n := len(em.runChain)
	switch {
	case em.runType == sink.DmlInsert:
		em.runChain = append([]*redo.RedoLogRecord{piece}, em.runChain...)
	case n > 0 && piece.Op == redo.OpORP && em.runChain[n-1].Op == redo.OpIRP:
		em.runChain = append(em.runChain[:n-1:n-1], piece, em.runChain[n-1])
	default:
		em.runChain = append(em.runChain, piece)
	}
}

func (em *Emitter) closeRun() error {
	if !em.runActive || len(em.runChain) == 0 {
		em.runActive = false
		em.runChain = nil
		return nil
	}
	first := em.runChain[0]
	last := em.runChain[len(em.runChain)-1]
	runType := em.runType
	em.runActive = false
	em.runChain = nil
	return em.sink.ParseDml(runType, first, last)
}

// inferDmlType implements §4.3's type inference from the first pair of a
// run.
func inferDmlType(redo1, redo2 *redo.RedoLogRecord) sink.DmlType {
	fbF := redo1.SuppLogFb&redo.FbF != 0
	switch {
	case fbF && redo2.Op == redo.OpIRP && (redo1.SuppLogBdba == 0 || redo1.SuppLogBdba == redo2.Bdba):
		return sink.DmlInsert
	case fbF && redo2.Op == redo.OpDRP:
		return sink.DmlDelete
	case redo2.Op == redo.OpORP:
		return sink.DmlOverwrite
	default:
		return sink.DmlUpdate
	}
}

// copySupplementalLog implements §4.3's "redo2.supp_log_after is always
// copied from redo1.supp_log_after before chaining" rule, extended to
// the whole supplemental-log side-band since redo2 otherwise carries
// none of it.
func copySupplementalLog(dst, src *redo.RedoLogRecord) {
	dst.SuppLogPresent = src.SuppLogPresent
	dst.SuppLogType = src.SuppLogType
	dst.SuppLogFb = src.SuppLogFb
	dst.SuppLogCc = src.SuppLogCc
	dst.SuppLogBefore = src.SuppLogBefore
	dst.SuppLogAfter = src.SuppLogAfter
	dst.SuppLogBdba = src.SuppLogBdba
	dst.SuppLogSlot = src.SuppLogSlot
}
