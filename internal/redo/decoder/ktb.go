package decoder

import (
	"log/slog"

	"github.com/leengari/logminer-core/internal/env"
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// parseKtbRedo decodes the "transaction slot" redo field (§4.1 ktb_redo).
// Layout: op(1) flg(1) pad(2) uba(7, low 56 bits significant) [xid(8) if op==F].
// The cleanout variant (op == 0x11) carries a diagnostic-only SCN and
// per-ITL entry block; its SCN offset is unverified upstream (§9 "Block
// cleanout SCN offset is marked //34?") so it is left as a TODO rather
// than guessed.
func parseKtbRedo(e *env.Env, rec *redo.RedoLogRecord, payload []byte) {
	const minLen = 4
	if len(payload) < minLen {
		shortFieldDiag(rec, "ktb_redo", minLen, len(payload))
		return
	}
	op := payload[0]

	if op == redo.Ktb11 {
		// TODO: cleanout SCN offset unverified (§9); exposing only the
		// fact that a cleanout block was seen until the offset is known.
		rec.AddDiagnostic("ktb_redo: cleanout block (0x11), SCN offset unverified")
		return
	}

	switch op {
	case redo.KtbOpC, redo.KtbOpL, redo.KtbOpF:
		const ubaOff = 4
		if len(payload) < ubaOff+7 {
			shortFieldDiag(rec, "ktb_redo.uba", ubaOff+7, len(payload))
			return
		}
		rec.Undo = redo.Uba(reader.Read56(payload, ubaOff)) & redo.UbaMask
		if op == redo.KtbOpF {
			const xidOff = ubaOff + 7
			if len(payload) < xidOff+8 {
				shortFieldDiag(rec, "ktb_redo.xid", xidOff+8, len(payload))
				return
			}
			usn := reader.Read16(payload, xidOff)
			slot := reader.Read16(payload, xidOff+2)
			seq := reader.Read32(payload, xidOff+4)
			rec.Xid = redo.NewXid(usn, slot, seq)
		}
	case redo.KtbOpZ:
		// no uba/xid to extract; recognised but otherwise inert.
	default:
		e.Diagnostic(slog.LevelDebug, "ktb_redo: unrecognised op byte", "op", op)
	}
}
