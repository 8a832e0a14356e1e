// Package decoder implements the opcode-specific parsers that turn one
// physical RawRecord into a normalized redo.RedoLogRecord (§4.1).
package decoder

import (
	"fmt"

	"github.com/leengari/logminer-core/internal/redo"
	"github.com/leengari/logminer-core/internal/reader"
)

// fieldWalker iterates the fieldCnt length-prefixed fields of a record,
// maintaining field_pos the way §4.1's "Field walk" specifies:
// after consuming field i, field_pos += align4(len_i).
type fieldWalker struct {
	data     []byte
	lens     []uint16 // length table, index 0 == field #1
	pos      int      // offset of the field about to be consumed
	next     int      // 1-based index of the field about to be consumed
}

// newFieldWalker reads the fieldCnt-entry length table (2 bytes each,
// little-endian) starting at fieldLengthsDelta, and positions the walker
// at field #1 (fieldPos).
func newFieldWalker(data []byte, fieldLengthsDelta, fieldPos int, fieldCnt uint16) *fieldWalker {
	lens := make([]uint16, fieldCnt)
	for i := range lens {
		off := fieldLengthsDelta + i*2
		lens[i] = reader.Read16(data, off)
	}
	return &fieldWalker{data: data, lens: lens, pos: fieldPos, next: 1}
}

// remaining reports how many fields have not yet been consumed.
func (w *fieldWalker) remaining() int {
	return len(w.lens) - (w.next - 1)
}

// peekLen returns the length of the field about to be consumed, or -1 if
// there isn't one.
func (w *fieldWalker) peekLen() int {
	if w.remaining() <= 0 {
		return -1
	}
	return int(w.lens[w.next-1])
}

// take returns the payload slice for the next field and advances pos by
// align4(len). If the record's data is too short for the field's declared
// length, it returns a short slice and the caller must treat that as a
// short-field diagnostic; the walker itself never panics.
func (w *fieldWalker) take() (payload []byte, ok bool) {
	if w.remaining() <= 0 {
		return nil, false
	}
	l := int(w.lens[w.next-1])
	start := w.pos
	if start > len(w.data) {
		start = len(w.data)
	}
	end := start + l
	if end > len(w.data) {
		end = len(w.data)
	}
	payload = w.data[start:end]
	w.pos += redo.Align4(l)
	w.next++
	return payload, len(payload) == l
}

// skip advances past n fields without returning their payload.
func (w *fieldWalker) skip(n int) {
	for i := 0; i < n && w.remaining() > 0; i++ {
		w.take()
	}
}

// finalPos returns field_pos after every field has been walked; by
// invariant (§3.2, §8.1) this must equal the record's declared length.
func (w *fieldWalker) finalPos() int {
	return w.pos
}

func shortFieldDiag(rec *redo.RedoLogRecord, field string, want, got int) {
	rec.AddDiagnostic(fmt.Sprintf("short field %s: want %d bytes, got %d", field, want, got))
}
