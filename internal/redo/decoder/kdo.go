package decoder

import (
	"log/slog"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// KDO per-sub-op minimum field lengths (§4.1).
const (
	minIRP = 48
	minDRP = 20
	minLKR = 20
	minURP = 28
	minQMD = 20
)

// kdoHeaderSize is the fixed row-address header common to every KDO
// sub-op, before the sub-op-specific tail.
const kdoHeaderSize = 16

// parseKdo decodes the row-level KDO opcode (§4.1 "ktb_op (KDO)").
// fieldPos is the absolute offset of payload within rec.Data, needed so
// NullsDelta/SlotsDelta can be recorded as record-relative offsets
// (§3.2: "all expressed as offsets into data, never as raw pointers").
func parseKdo(e *env.Env, rec *redo.RedoLogRecord, payload []byte, fieldPos int) (kdom2 bool) {
	if len(payload) < kdoHeaderSize {
		shortFieldDiag(rec, "kdo.header", kdoHeaderSize, len(payload))
		return false
	}

	rec.Bdba = redo.Bdba(reader.Read32(payload, 0))
	rec.NridBdba = redo.Bdba(reader.Read32(payload, 4))
	rec.NridSlot = reader.Read16(payload, 8)
	rec.Slot = reader.Read16(payload, 10)
	rec.Itli = payload[12]
	opByte := payload[13]
	rec.Cc = reader.Read16(payload, 14)

	sub := redo.RowOp(opByte & 0x1F)
	rec.Op = sub

	switch sub {
	case redo.OpIRP:
		if len(payload) < minIRP {
			shortFieldDiag(rec, "kdo.IRP", minIRP, len(payload))
			return false
		}
		// Cluster-key curc/comc are carried in a fixed 32-byte block
		// between the header and the nulls bitmap; upstream hard-codes
		// both to 0 with a FIXME rather than deriving them from the
		// correct offset (§9), so this decoder preserves that
		// placeholder instead of inventing a derivation.
		rec.NullsDelta = fieldPos + minIRP
		parseNullsBitmap(rec, payload, minIRP, int(rec.Cc))

	case redo.OpDRP:
		if len(payload) < minDRP {
			shortFieldDiag(rec, "kdo.DRP", minDRP, len(payload))
			return false
		}

	case redo.OpLKR:
		if len(payload) < minLKR {
			shortFieldDiag(rec, "kdo.LKR", minLKR, len(payload))
			return false
		}

	case redo.OpURP:
		if len(payload) < minURP {
			shortFieldDiag(rec, "kdo.URP", minURP, len(payload))
			return false
		}

	case redo.OpORP:
		// ORP shares IRP's minimum shape (it is an IRP-style overwrite).
		if len(payload) < minIRP {
			shortFieldDiag(rec, "kdo.ORP", minIRP, len(payload))
			return false
		}
		rec.NullsDelta = fieldPos + minIRP
		parseNullsBitmap(rec, payload, minIRP, int(rec.Cc))

	case redo.OpCFA:
		if len(payload) < kdoHeaderSize {
			shortFieldDiag(rec, "kdo.CFA", kdoHeaderSize, len(payload))
			return false
		}

	case redo.OpQMI:
		if len(payload) < kdoHeaderSize {
			shortFieldDiag(rec, "kdo.QMI", kdoHeaderSize, len(payload))
			return false
		}

	case redo.OpQMD:
		if len(payload) < minQMD {
			shortFieldDiag(rec, "kdo.QMD", minQMD, len(payload))
			return false
		}
		nrows := int(reader.Read16(payload, 16))
		rec.SlotsDelta = fieldPos + 18
		want := 18 + nrows*2
		if len(payload) < want {
			shortFieldDiag(rec, "kdo.QMD.slots", want, len(payload))
		}

	default:
		e.Diagnostic(slog.LevelDebug, "kdo: unrecognised row op", "op", opByte)
	}

	return opByte&redo.KdoKdom2 != 0
}

// parseNullsBitmap records NullsDelta; the bitmap itself is consumed
// lazily at column-dump time (1 bit per column, LSB-first, byte-advancing
// when a byte is exhausted, §4.1 "column-dumping step"), so nothing is
// copied out here beyond validating there is enough room for cc bits.
func parseNullsBitmap(rec *redo.RedoLogRecord, payload []byte, bitmapOff, cc int) {
	need := (cc + 7) / 8
	if bitmapOff+need > len(payload) {
		shortFieldDiag(rec, "kdo.nulls", bitmapOff+need, len(payload))
	}
}

// ColumnIsNull reports whether column index i (0-based) is NULL according
// to the nulls bitmap recorded at rec.NullsDelta, reading LSB-first and
// advancing to the next byte once 8 bits have been consumed.
func ColumnIsNull(data []byte, nullsDelta, i int) bool {
	byteOff := nullsDelta + i/8
	if byteOff >= len(data) {
		return true
	}
	bit := uint(i % 8)
	return data[byteOff]&(1<<bit) != 0
}
