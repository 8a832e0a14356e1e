package redo

// RedoLogRecord is a decoded physical change record (§3.2). A decode call
// never fails fatally: fields that could not be populated (a short field,
// an unrecognised sub-opcode) are simply left at their zero value and the
// decoder records a diagnostic instead.
type RedoLogRecord struct {
	// Header
	Scn     Scn
	Xid     Xid
	Opcode  uint16 // major<<8 | minor
	Length  uint32
	Data    []byte

	// Field index (§3.2 "Field index")
	FieldCnt          uint16
	FieldLengthsDelta int // offset of the length table
	FieldPos          int // offset of field #1

	// Row address (§3.2 "Row address")
	Bdba      Bdba
	Slot      uint16
	Itli      uint8
	Op        RowOp
	Cc        uint16 // column count
	Flg       uint16 // UNDO-fragmentation flags
	NridBdba  Bdba
	NridSlot  uint16

	// Undo linkage
	Objn  ObjN
	Objd  ObjD
	Tsn   Tsn
	Undo  Uba
	Slt   uint8
	Rci   uint8
	Opc   uint16 // embedded KTB/KDO opcode when inside an UNDO record

	// Column layout pointers, offsets into Data, never raw pointers.
	NullsDelta      int
	ColNumsDelta    int
	SlotsDelta      int
	RowLengthsDelta int

	// Columns holds the decoded per-column payload once dumpColumns has
	// run (IRP/ORP/URP-without-KDOM2); nil otherwise.
	Columns *Columns

	// Supplemental-log side-band (attached by opcode 0x0501 when present)
	SuppLogPresent bool
	SuppLogType    uint8
	SuppLogFb      byte
	SuppLogCc      uint16
	SuppLogBefore  []byte
	SuppLogAfter   []byte
	SuppLogBdba    Bdba
	SuppLogSlot    uint16

	// Chain links, as indices rather than pointers (§9 "Pointer chains to
	// arena + offsets"). Nothing sets or reads them: the Emitter keeps a
	// DML run as its own slice of records during a flush (§4.3).
	Prev int
	Next int

	// Diagnostics accumulated while decoding this record (§4.1, §7).
	Diagnostics []string
}

// Columns holds the decoded per-column payload for a row-DML record; a nil
// entry at index i means column i was NULL.
type Columns struct {
	Values [][]byte
}

// AddDiagnostic appends a short-field/unknown-opcode style note. It never
// causes the decode to fail.
func (r *RedoLogRecord) AddDiagnostic(msg string) {
	r.Diagnostics = append(r.Diagnostics, msg)
}

// FieldEnd returns field_pos + the sum of align4(len) over all fields,
// which by invariant (§3.2, §8.1) must equal r.Length once every field has
// been walked.
func (r *RedoLogRecord) FieldEnd(fieldLens []int) int {
	pos := r.FieldPos
	for _, l := range fieldLens {
		pos += Align4(l)
	}
	return pos
}
