package emitter

import (
	"testing"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/redo"
	"github.com/leengari/logminer-core/internal/sink"
	"github.com/leengari/logminer-core/internal/txstore"
	"gotest.tools/v3/assert"
)

type fakeSink struct {
	began     []redo.Scn
	committed int
	dmls      []dmlCall
	inserts   int
	deletes   int
	ddls      int
}

type dmlCall struct {
	typ         sink.DmlType
	first, last *redo.RedoLogRecord
}

func (f *fakeSink) BeginTran(scn redo.Scn, xid redo.Xid) error { f.began = append(f.began, scn); return nil }
func (f *fakeSink) Next() error                                { return nil }
func (f *fakeSink) ParseDml(t sink.DmlType, first, last *redo.RedoLogRecord) error {
	f.dmls = append(f.dmls, dmlCall{t, first, last})
	return nil
}
func (f *fakeSink) ParseInsertMultiple(r1, r2 *redo.RedoLogRecord) error { f.inserts++; return nil }
func (f *fakeSink) ParseDeleteMultiple(r1, r2 *redo.RedoLogRecord) error { f.deletes++; return nil }
func (f *fakeSink) ParseDdl(r1 *redo.RedoLogRecord) error                { f.ddls++; return nil }
func (f *fakeSink) CommitTran() error                                    { f.committed++; return nil }

func testEnv() *env.Env { return env.New(nil, "test", env.DumpOff, 0, 0, nil) }

// TestSingleRowInsertEmitsOneDml implements §8.3 scenario 1.
func TestSingleRowInsertEmitsOneDml(t *testing.T) {
	fs := &fakeSink{}
	em := New(fs, testEnv(), nil)
	xid := redo.NewXid(1, 2, 3)

	redo1 := &redo.RedoLogRecord{Opcode: redo.OpCodeKtudb, SuppLogFb: redo.FbF | redo.FbL}
	redo2 := &redo.RedoLogRecord{Opcode: redo.OpCodeRowIRP, Op: redo.OpIRP}

	assert.NilError(t, em.Begin(xid, 100))
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: redo.PairInsert, Redo1: redo1, Redo2: redo2}))
	assert.NilError(t, em.Finish())

	assert.Equal(t, len(fs.dmls), 1)
	assert.Equal(t, fs.dmls[0].typ, sink.DmlInsert)
	assert.Equal(t, fs.committed, 1)
}

// TestUpdateSplitAcrossTwoPiecesEmitsOneDml implements §8.3 scenario 2.
func TestUpdateSplitAcrossTwoPiecesEmitsOneDml(t *testing.T) {
	fs := &fakeSink{}
	em := New(fs, testEnv(), nil)
	xid := redo.NewXid(1, 2, 3)

	firstRedo1 := &redo.RedoLogRecord{Opcode: redo.OpCodeKtudb, SuppLogFb: redo.FbF, SuppLogBdba: 0xAA, SuppLogSlot: 1}
	firstRedo2 := &redo.RedoLogRecord{Opcode: redo.OpCodeRowURP, Op: redo.OpURP}
	secondRedo1 := &redo.RedoLogRecord{Opcode: redo.OpCodeKtudb, SuppLogFb: redo.FbL, SuppLogBdba: 0xAA, SuppLogSlot: 1}
	secondRedo2 := &redo.RedoLogRecord{Opcode: redo.OpCodeRowURP, Op: redo.OpURP}

	assert.NilError(t, em.Begin(xid, 101))
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: redo.PairUpdate, Redo1: firstRedo1, Redo2: firstRedo2}))
	assert.Equal(t, len(fs.dmls), 0) // run not yet closed
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: redo.PairUpdate, Redo1: secondRedo1, Redo2: secondRedo2}))
	assert.NilError(t, em.Finish())

	assert.Equal(t, len(fs.dmls), 1)
	assert.Equal(t, fs.dmls[0].typ, sink.DmlUpdate)
	assert.Equal(t, fs.dmls[0].first, firstRedo2)
	assert.Equal(t, fs.dmls[0].last, secondRedo2)
}

// TestTruncateDdlEmitsImmediately implements §8.3 scenario 5.
func TestTruncateDdlEmitsImmediately(t *testing.T) {
	fs := &fakeSink{}
	em := New(fs, testEnv(), nil)
	xid := redo.NewXid(5, 0, 0)

	assert.NilError(t, em.Begin(xid, 200))
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: redo.PairDdlTruncate, Redo1: &redo.RedoLogRecord{}}))
	assert.NilError(t, em.Finish())

	assert.Equal(t, fs.ddls, 1)
	assert.Equal(t, fs.committed, 1)
}

// TestUnknownOpcodePairIsSkippedNotFatal covers §4.3's "other" row.
func TestUnknownOpcodePairIsSkippedNotFatal(t *testing.T) {
	fs := &fakeSink{}
	em := New(fs, testEnv(), nil)
	assert.NilError(t, em.Begin(redo.NewXid(0, 0, 1), 1))
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: 0xDEADBEEF}))
	assert.NilError(t, em.Finish())
	assert.Equal(t, len(fs.dmls), 0)
}

type fakeBuffer struct{ headroom int }

func (f *fakeBuffer) Headroom() int { return f.headroom }

// TestBackpressureSplitsOversizedTransaction covers §4.3's mid-flush
// fragmentation: once headroom drops below MaxTransactionSize, the
// Emitter commits and reopens with the same XID/SCN.
func TestBackpressureSplitsOversizedTransaction(t *testing.T) {
	fs := &fakeSink{}
	buf := &fakeBuffer{headroom: 0}
	em := New(fs, testEnv(), buf)
	xid := redo.NewXid(1, 1, 1)

	assert.NilError(t, em.Begin(xid, 300))
	assert.NilError(t, em.Process(txstore.Entry{OpcodePair: redo.PairDdlTruncate, Redo1: &redo.RedoLogRecord{}}))

	assert.Equal(t, fs.committed, 1) // split happened before processing the entry
	assert.Equal(t, len(fs.began), 2)
	assert.Equal(t, fs.began[1], redo.Scn(300))
}
