package decoder

import (
	"log/slog"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// RecordDecoder decodes one physical redo record at a time. It is
// stateless per call (§4.1 contract): it never allocates outside the
// target record and never fails fatally; a length mismatch is recorded
// as a diagnostic on the returned, partially-populated record.
type RecordDecoder struct{}

// New returns a RecordDecoder. There is no per-source state to hold; the
// Env carries everything call-specific (§9 "Global state").
func New() *RecordDecoder { return &RecordDecoder{} }

// Decode implements the §4.1 contract: decode(raw, env) -> RedoLogRecord.
func (d *RecordDecoder) Decode(raw reader.RawRecord, e *env.Env) *redo.RedoLogRecord {
	rec := &redo.RedoLogRecord{
		Scn:               redo.Scn(raw.Scn),
		Opcode:            raw.Opcode,
		Length:            raw.Length,
		Data:              raw.Data,
		FieldCnt:          raw.FieldCnt,
		FieldLengthsDelta: raw.FieldLengthsDelta,
		FieldPos:          raw.FieldPos,
	}
	if raw.FieldCnt == 0 {
		return rec
	}

	major := raw.Opcode
	switch {
	case major == redo.OpCodeKtudb:
		decode0501(e, rec)
	case major == redo.OpCodeBeginTxn:
		decodeKtubOnly(e, rec)
	case major == redo.OpCodeCommit:
		decodeKtubOnly(e, rec)
	case major == redo.OpCodeUserUndo:
		decodeUserUndoDone(e, rec)
	case isRowRedoOpcode(major):
		decodeRowRedo(e, rec)
	case major == redo.OpCodeDdlTruncate:
		decodeDdl(e, rec)
	default:
		e.Diagnostic(slog.LevelDebug, "decoder: unknown opcode", "opcode", major)
	}
	return rec
}

func isRowRedoOpcode(major uint16) bool {
	switch major {
	case redo.OpCodeRowIRP, redo.OpCodeRowDRP, redo.OpCodeRowLKR, redo.OpCodeRowURP,
		redo.OpCodeRowORP, redo.OpCodeRowCFA, redo.OpCodeRowQMI, redo.OpCodeRowQMD:
		return true
	default:
		return false
	}
}

// decode0501 implements the field-ordering rules of §4.1 for opcode
// 0x0501 (UNDO header): KTUDB, KTUB, optional embedded KTB-redo, KDO,
// column payload, supplemental-log trailer.
func decode0501(e *env.Env, rec *redo.RedoLogRecord) {
	w := newFieldWalker(rec.Data, rec.FieldLengthsDelta, rec.FieldPos, rec.FieldCnt)

	// field 1 -> KTUDB (sets xid)
	if w.remaining() == 0 {
		rec.AddDiagnostic("0x0501: no fields to decode")
		return
	}
	p1, _ := w.take()
	parseKtudb(rec, p1)

	// field 2 -> KTUB (sets objn, objd, flg, opc)
	if w.remaining() == 0 {
		return
	}
	p2, _ := w.take()
	parseKtub(rec, p2)

	// rule 3: fragment detection, stop if flg has MULTIBLOCKUNDOHEAD/MID/TAIL
	if rec.Flg&(redo.FlgMultiBlockUndoHead|redo.FlgMultiBlockUndoMid|redo.FlgMultiBlockUndoTail) != 0 {
		rec.AddDiagnostic("fragment: multi-block undo flag set, stopping field walk")
		return
	}

	// field 3 -> if opc in {0x0A16, 0x0B01} -> KTB-redo
	if w.remaining() > 0 && (rec.Opc == 0x0A16 || rec.Opc == 0x0B01) {
		p3, _ := w.take()
		parseKtbRedo(e, rec, p3)
	} else if w.remaining() > 0 {
		w.skip(1)
	}

	// field 4 -> if opc == 0x0B01 -> KDO op
	var kdom2 bool
	if w.remaining() > 0 && rec.Opc == 0x0B01 {
		fieldPos := w.pos
		p4, _ := w.take()
		kdom2 = parseKdo(e, rec, p4, fieldPos)
	} else {
		return
	}

	decodeColumnsAndSupplog(e, rec, w, kdom2)
}

// decodeColumnsAndSupplog implements field-walk rule 6 (§4.1): fields >=5
// depend on op & 0x1F.
func decodeColumnsAndSupplog(e *env.Env, rec *redo.RedoLogRecord, w *fieldWalker, kdom2 bool) {
	cc := int(rec.Cc)
	switch rec.Op {
	case redo.OpURP:
		if kdom2 {
			rec.ColNumsDelta = w.pos
			// KDOM2: col-nums vector + cols vector + supplemental-log
			if w.remaining() > 0 {
				w.skip(1) // col-nums vector field already pointed to by ColNumsDelta
			}
			if w.remaining() > 0 {
				fieldPos := w.pos
				w.take()
				rec.RowLengthsDelta = fieldPos
			}
			if w.remaining() > 0 {
				p, _ := w.take()
				parseSuppLog(rec, p)
			}
			return
		}
		// without KDOM2: one field per changed column, then supp-log
		rec.Columns = dumpColumns(w, rec, cc)
		if w.remaining() > 0 {
			p, _ := w.take()
			parseSuppLog(rec, p)
		}

	case redo.OpIRP, redo.OpORP:
		rec.Columns = dumpColumns(w, rec, cc)

	case redo.OpQMI:
		// field 5: row-lengths, field 6: row-vectors dump (raw; the
		// Sink handles parse_insert_multiple against the raw records).
		if w.remaining() > 0 {
			fieldPos := w.pos
			w.take()
			rec.RowLengthsDelta = fieldPos
		}
		if w.remaining() > 0 {
			w.take()
		}

	case redo.OpDRP, redo.OpCFA:
		if w.remaining() > 0 {
			p, _ := w.take()
			parseSuppLog(rec, p)
		}

	default:
		e.Diagnostic(slog.LevelDebug, "decoder: no column rule for op", "op", rec.Op)
	}
}

// decodeKtubOnly handles opcodes 0x0502 (begin) and 0x0504 (commit):
// KTUB only.
func decodeKtubOnly(e *env.Env, rec *redo.RedoLogRecord) {
	w := newFieldWalker(rec.Data, rec.FieldLengthsDelta, rec.FieldPos, rec.FieldCnt)
	if w.remaining() == 0 {
		return
	}
	p, _ := w.take()
	parseKtub(rec, p)
}

// decodeUserUndoDone handles opcode 0x0506: KTUB + KTUXVOFF.
func decodeUserUndoDone(e *env.Env, rec *redo.RedoLogRecord) {
	w := newFieldWalker(rec.Data, rec.FieldLengthsDelta, rec.FieldPos, rec.FieldCnt)
	if w.remaining() == 0 {
		return
	}
	p, _ := w.take()
	parseKtub(rec, p)
	if w.remaining() > 0 {
		p2, _ := w.take()
		parseKtuxvoff(rec, p2)
	}
}

// decodeRowRedo handles the 0x0B02..0x0B0C redo side: KTB-redo + KDO +
// column payload.
func decodeRowRedo(e *env.Env, rec *redo.RedoLogRecord) {
	w := newFieldWalker(rec.Data, rec.FieldLengthsDelta, rec.FieldPos, rec.FieldCnt)
	if w.remaining() == 0 {
		return
	}
	p1, _ := w.take()
	parseKtbRedo(e, rec, p1)

	if w.remaining() == 0 {
		return
	}
	fieldPos := w.pos
	p2, _ := w.take()
	kdom2 := parseKdo(e, rec, p2, fieldPos)

	decodeColumnsAndSupplog(e, rec, w, kdom2)
}

// decodeDdl handles opcode 0x1801 (truncate): a validity flag and a DDL
// type, the only two fields a truncate DDL record needs downstream.
func decodeDdl(e *env.Env, rec *redo.RedoLogRecord) {
	w := newFieldWalker(rec.Data, rec.FieldLengthsDelta, rec.FieldPos, rec.FieldCnt)
	if w.remaining() == 0 {
		return
	}
	p, ok := w.take()
	if !ok || len(p) < 2 {
		shortFieldDiag(rec, "ddl", 2, len(p))
		return
	}
	// byte0: validity flag (non-zero means a real DDL happened), byte1:
	// DDL sub-type. Only truncate is in scope for this core (§1).
	rec.Op = redo.RowOp(0) // DDL records carry no row op
	rec.Cc = uint16(p[1])
	if p[0] == 0 {
		rec.AddDiagnostic("ddl: validity flag unset, ignoring")
	}
}
