package decoder

import (
	"fmt"

	"github.com/leengari/logminer-core/internal/redo"
)

// dumpColumns reads cc column-payload fields off w, recording each one's
// bytes into rec.Data (already backing them; values are returned as
// slices into rec.Data, never copied) and returns the decoded values.
// A column whose nulls-bitmap bit is set contributes a nil entry (§4.1
// "the column-dumping step consumes the nulls bitmap one bit per column
// to decide whether to emit the value or a NULL sentinel").
func dumpColumns(w *fieldWalker, rec *redo.RedoLogRecord, cc int) *redo.Columns {
	cols := &redo.Columns{Values: make([][]byte, cc)}
	for i := 0; i < cc; i++ {
		if rec.NullsDelta != 0 && ColumnIsNull(rec.Data, rec.NullsDelta, i) {
			cols.Values[i] = nil
			w.skip(1)
			continue
		}
		payload, ok := w.take()
		if !ok {
			rec.AddDiagnostic(fmt.Sprintf("short field column %d of %d: payload missing or truncated", i+1, cc))
		}
		cols.Values[i] = payload
	}
	return cols
}
