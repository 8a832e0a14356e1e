package decoder

import (
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// parseKtudb decodes field 1 of a 0x0501 record: the KTUDB structure,
// which carries the transaction id (§4.1 field-walk rule 1).
func parseKtudb(rec *redo.RedoLogRecord, payload []byte) {
	const minLen = 8
	if len(payload) < minLen {
		shortFieldDiag(rec, "ktudb", minLen, len(payload))
		return
	}
	usn := reader.Read16(payload, 0)
	slot := reader.Read16(payload, 2)
	seq := reader.Read32(payload, 4)
	rec.Xid = redo.NewXid(usn, slot, seq)
}

// ktubHeaderSize is the fixed KTUB layout size this decoder uses.
const ktubHeaderSize = 26

// parseKtub decodes field 2 of a 0x0501 record: the KTUB structure,
// which carries objn/objd/tsn/flg/opc (§4.1 field-walk rule 2) plus the
// undo-linkage fields used by the multi-block splice algorithm (§4.2).
func parseKtub(rec *redo.RedoLogRecord, payload []byte) {
	if len(payload) < ktubHeaderSize {
		shortFieldDiag(rec, "ktub", ktubHeaderSize, len(payload))
		return
	}
	rec.Objn = redo.ObjN(reader.Read32(payload, 0))
	rec.Objd = redo.ObjD(reader.Read32(payload, 4))
	rec.Tsn = redo.Tsn(reader.Read32(payload, 8))
	rec.Undo = redo.Uba(reader.Read56(payload, 12)) & redo.UbaMask
	rec.Slt = payload[19]
	rec.Rci = payload[20]
	rec.Flg = reader.Read16(payload, 22)
	rec.Opc = reader.Read16(payload, 24)
}

// parseKtuxvoff decodes the KTUXVOFF structure attached to opcode 0x0506
// (user undo done). It is diagnostic-only: no RedoLogRecord field beyond
// what KTUB already set is required by the emitter.
func parseKtuxvoff(rec *redo.RedoLogRecord, payload []byte) {
	const minLen = 2
	if len(payload) < minLen {
		shortFieldDiag(rec, "ktuxvoff", minLen, len(payload))
	}
}
