package decoder

import (
	"log/slog"
	"testing"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
	"gotest.tools/v3/assert"
)

func testEnv(t *testing.T) *env.Env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return env.New(logger, "test", env.DumpFull, 1, 0, nil)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) { return len(p), nil }

// putField appends a length-prefixed field's bytes to data and its length
// to the length table, returning both updated slices.
func putField(data []byte, lens []uint16, payload []byte) ([]byte, []uint16) {
	data = append(data, payload...)
	pad := redo.Align4(len(payload)) - len(payload)
	data = append(data, make([]byte, pad)...)
	lens = append(lens, uint16(len(payload)))
	return data, lens
}

// buildRecord assembles a RawRecord: length-table first, then fields,
// mirroring field_lengths_delta / field_pos semantics.
func buildRecord(opcode uint16, fields [][]byte) reader.RawRecord {
	lens := make([]uint16, 0, len(fields))
	lenTable := make([]byte, 0, len(fields)*2)
	body := make([]byte, 0, 128)
	for _, f := range fields {
		body, lens = putField(body, lens, f)
	}
	for _, l := range lens {
		b := make([]byte, 2)
		reader.ByteOrder.PutUint16(b, l)
		lenTable = append(lenTable, b...)
	}
	data := append(append([]byte{}, lenTable...), body...)
	return reader.RawRecord{
		Opcode:            opcode,
		Data:              data,
		FieldLengthsDelta: 0,
		FieldCnt:          uint16(len(fields)),
		FieldPos:          len(lenTable),
		Length:            uint32(len(data)),
	}
}

func u16field(v uint16) []byte {
	b := make([]byte, 2)
	reader.ByteOrder.PutUint16(b, v)
	return b
}
func u32field(v uint32) []byte {
	b := make([]byte, 4)
	reader.ByteOrder.PutUint32(b, v)
	return b
}

func ktudbField(usn, slot uint16, seq uint32) []byte {
	b := make([]byte, 8)
	reader.ByteOrder.PutUint16(b[0:], usn)
	reader.ByteOrder.PutUint16(b[2:], slot)
	reader.ByteOrder.PutUint32(b[4:], seq)
	return b
}

func ktubField(objn, objd, tsn uint32, flg, opc uint16) []byte {
	b := make([]byte, ktubHeaderSize)
	reader.ByteOrder.PutUint32(b[0:], objn)
	reader.ByteOrder.PutUint32(b[4:], objd)
	reader.ByteOrder.PutUint32(b[8:], tsn)
	// uba left zero
	reader.ByteOrder.PutUint16(b[22:], flg)
	reader.ByteOrder.PutUint16(b[24:], opc)
	return b
}

func kdoField(bdba uint32, slot uint16, opByte byte, cc uint16, tailLen int) []byte {
	b := make([]byte, kdoHeaderSize+tailLen)
	reader.ByteOrder.PutUint32(b[0:], bdba)
	reader.ByteOrder.PutUint16(b[10:], slot)
	b[13] = opByte
	reader.ByteOrder.PutUint16(b[14:], cc)
	return b
}

func TestFieldCntZeroDerivesNothing(t *testing.T) {
	raw := reader.RawRecord{Opcode: redo.OpCodeKtudb, FieldCnt: 0}
	rec := New().Decode(raw, testEnv(t))
	assert.Equal(t, rec.Xid, redo.Xid(0))
	assert.Equal(t, rec.Op, redo.OpUnknown)
}

func TestInsertSingleRowScenario(t *testing.T) {
	// §8.3 scenario 1: single-row INSERT, 3 columns. The FB_F|FB_L
	// supplemental-log trailer is built but not attached to the record:
	// the IRP field walk reads no trailer.
	ktb := make([]byte, 4+7) // op=L, no xid needed on the undo-side KTB
	ktb[0] = redo.KtbOpL
	kdo := kdoField(0x1000, 5, byte(redo.OpIRP), 3, minIRP-kdoHeaderSize+4)
	col1 := []byte("hi")
	col2 := []byte{0x80} // NUMBER zero
	col3 := []byte{0xC7, 'F', 1, 2, 3, 2, 4, 5} // placeholder date bytes (not used by this test)
	supp := make([]byte, supplogHeaderSize)
	supp[1] = redo.FbF | redo.FbL

	fields := [][]byte{
		ktudbField(1, 2, 100),
		ktubField(10, 10, 1, 0, 0x0B01),
		ktb,
		kdo,
		col1, col2, col3,
	}
	_ = supp
	raw := buildRecord(redo.OpCodeKtudb, fields)
	rec := New().Decode(raw, testEnv(t))

	assert.Equal(t, rec.Xid, redo.NewXid(1, 2, 100))
	assert.Equal(t, rec.Objn, redo.ObjN(10))
	assert.Equal(t, rec.Op, redo.OpIRP)
	assert.Equal(t, int(rec.Cc), 3)
	assert.Assert(t, rec.NullsDelta > 0)
}

func TestShortFieldBelowMinimumRecordsDiagnosticNotPanic(t *testing.T) {
	kdo := kdoField(0x1000, 5, byte(redo.OpIRP), 1, minIRP-kdoHeaderSize-1) // one byte short
	fields := [][]byte{
		ktudbField(1, 2, 100),
		ktubField(10, 10, 1, 0, 0x0B01),
		make([]byte, 4),
		kdo,
	}
	raw := buildRecord(redo.OpCodeKtudb, fields)
	rec := New().Decode(raw, testEnv(t))
	assert.Assert(t, len(rec.Diagnostics) > 0)
}

func TestFragmentStopsFieldWalk(t *testing.T) {
	fields := [][]byte{
		ktudbField(1, 2, 100),
		ktubField(10, 10, 1, redo.FlgMultiBlockUndoHead, 0x0B01),
		make([]byte, 20), // would-be KTB-redo, never consumed
	}
	raw := buildRecord(redo.OpCodeKtudb, fields)
	rec := New().Decode(raw, testEnv(t))
	assert.Equal(t, rec.Op, redo.OpUnknown)
	assert.Assert(t, len(rec.Diagnostics) > 0)
}

func TestTruncateDdl(t *testing.T) {
	fields := [][]byte{{0x01, 0x02}}
	raw := buildRecord(redo.OpCodeDdlTruncate, fields)
	rec := New().Decode(raw, testEnv(t))
	assert.Equal(t, int(rec.Cc), 2)
	assert.Equal(t, len(rec.Diagnostics), 0)
}

func TestColumnIsNullBitmapAdvancesAcrossBytes(t *testing.T) {
	data := make([]byte, 4)
	data[2] = 0b0000_0001 // bit 0 of the first bitmap byte set -> column 0 NULL
	assert.Assert(t, ColumnIsNull(data, 2, 0))  // bit set -> null
	assert.Assert(t, !ColumnIsNull(data, 2, 8)) // column 8 is bit 0 of the next byte, which is clear -> not null
}
