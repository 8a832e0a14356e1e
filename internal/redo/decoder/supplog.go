package decoder

import (
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// supplogHeaderSize is the fixed part of the supplemental-log trailer,
// before its variable-length before/after images.
const supplogHeaderSize = 12

// parseSuppLog decodes the supplemental-log side-band (§3.2, §4.1). It
// populates the seven supp_log_* fields used by the Emitter to chain and
// close DML runs (§4.3).
func parseSuppLog(rec *redo.RedoLogRecord, payload []byte) {
	if len(payload) < supplogHeaderSize {
		shortFieldDiag(rec, "supp_log", supplogHeaderSize, len(payload))
		return
	}
	rec.SuppLogPresent = true
	rec.SuppLogType = payload[0]
	rec.SuppLogFb = payload[1]
	rec.SuppLogCc = reader.Read16(payload, 2)
	rec.SuppLogBdba = redo.Bdba(reader.Read32(payload, 4))
	rec.SuppLogSlot = reader.Read16(payload, 8)

	off := supplogHeaderSize
	if off+2 > len(payload) {
		return
	}
	beforeLen := int(reader.Read16(payload, off))
	off += 2
	end := off + beforeLen
	if end > len(payload) {
		end = len(payload)
	}
	rec.SuppLogBefore = payload[off:end]
	off = end

	if off+2 > len(payload) {
		return
	}
	afterLen := int(reader.Read16(payload, off))
	off += 2
	end = off + afterLen
	if end > len(payload) {
		end = len(payload)
	}
	rec.SuppLogAfter = payload[off:end]
}
