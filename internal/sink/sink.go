// Package sink implements the downstream contract (§6.3): a Sink
// receives transaction boundaries and row/DDL changes and is
// responsible for serialising values (via valuefmt), JSON framing, and
// downstream I/O.
package sink

import "github.com/leengari/logminer-core/internal/redo"

// DmlType classifies a parse_dml call.
type DmlType int

const (
	DmlInsert DmlType = iota
	DmlUpdate
	DmlDelete
	DmlOverwrite
	DmlForwardAddr
)

func (t DmlType) String() string {
	switch t {
	case DmlInsert:
		return "INSERT"
	case DmlUpdate:
		return "UPDATE"
	case DmlDelete:
		return "DELETE"
	case DmlOverwrite:
		return "OVERWRITE"
	case DmlForwardAddr:
		return "FORWARD_ADDR"
	default:
		return "UNKNOWN"
	}
}

// Sink is the downstream contract (§6.3). Implementations serialise
// values by calling into internal/valuefmt and own all outbound I/O; the
// core never recovers from a Sink error (§7 taxonomy #7).
type Sink interface {
	BeginTran(scn redo.Scn, xid redo.Xid) error
	Next() error
	ParseDml(dmlType DmlType, first, last *redo.RedoLogRecord) error
	ParseInsertMultiple(r1, r2 *redo.RedoLogRecord) error
	ParseDeleteMultiple(r1, r2 *redo.RedoLogRecord) error
	ParseDdl(r1 *redo.RedoLogRecord) error
	CommitTran() error
}
