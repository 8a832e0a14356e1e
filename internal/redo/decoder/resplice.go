package decoder

import (
	"github.com/leengari/logminer-core/internal/reader"
	"github.com/leengari/logminer-core/internal/redo"
)

// Resplice rebuilds a single physical 0x0501 record from a multi-block
// UNDO HEAD/MID fragment (head, the newly arrived piece) and its
// previously buffered TAIL fragment (tail), per §4.2's splice step: the
// new incoming head's fields come first, then the tail's fields with
// its leading KTUDB/KTUB header pair dropped (the tail re-transmits the
// same logical undo header, so keeping both copies would double-count
// it), matching original_source/src/Transaction.cpp's merge order
// (~lines 94-101). The KTUB flag word is cleared of the fragment bits
// in place so the re-decode below walks all the way through the KDO and
// column fields instead of stopping at the fragment-detection rule.
// The result is a RawRecord ready for RecordDecoder.Decode, so every
// structured field (xid, kdo, columns, supplemental log) comes from the
// merged bytes rather than being copied piecemeal.
func Resplice(head, tail *redo.RedoLogRecord) reader.RawRecord {
	hw := newFieldWalker(head.Data, head.FieldLengthsDelta, head.FieldPos, head.FieldCnt)
	tw := newFieldWalker(tail.Data, tail.FieldLengthsDelta, tail.FieldPos, tail.FieldCnt)
	tw.skip(2)

	var lens []uint16
	var body []byte
	ktubOff := -1
	appendField := func(fieldIdx int, p []byte) {
		if fieldIdx == 1 {
			ktubOff = len(body)
		}
		lens = append(lens, uint16(len(p)))
		body = append(body, p...)
		if pad := redo.Align4(len(p)) - len(p); pad > 0 {
			body = append(body, make([]byte, pad)...)
		}
	}

	idx := 0
	for hw.remaining() > 0 {
		p, _ := hw.take()
		appendField(idx, p)
		idx++
	}
	for tw.remaining() > 0 {
		p, _ := tw.take()
		appendField(idx, p)
		idx++
	}

	if ktubOff >= 0 && ktubOff+ktubHeaderSize <= len(body) {
		flg := reader.Read16(body, ktubOff+22)
		flg &^= redo.FlgMultiBlockUndoHead | redo.FlgMultiBlockUndoMid |
			redo.FlgMultiBlockUndoTail | redo.FlgLastBufferSplit
		reader.ByteOrder.PutUint16(body[ktubOff+22:], flg)
	}

	lenTable := make([]byte, len(lens)*2)
	for i, l := range lens {
		reader.ByteOrder.PutUint16(lenTable[i*2:], l)
	}
	data := append(append([]byte{}, lenTable...), body...)

	return reader.RawRecord{
		Scn:               uint64(head.Scn),
		Opcode:            head.Opcode,
		Data:              data,
		FieldLengthsDelta: 0,
		FieldCnt:          uint16(len(lens)),
		FieldPos:          len(lenTable),
		Length:            uint32(len(data)),
	}
}
