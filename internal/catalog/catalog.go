// Package catalog implements the data-dictionary lookup contract (§6.2)
// the Emitter consults to resolve column names/types for a table.
package catalog

import "github.com/leengari/logminer-core/internal/redo"

// Column describes one column of a cataloged table.
type Column struct {
	Name   string
	TypeNo uint16
}

// Object describes one cataloged table: its column list in redo-log
// column-number order.
type Object struct {
	Objn    redo.ObjN
	Name    string
	Columns []Column
}

// Catalog resolves an object number to its table definition. Must be
// safe for concurrent read (§6.2); implementations built once at
// startup and never mutated satisfy this trivially.
type Catalog interface {
	LookupObject(objn redo.ObjN) (*Object, bool)
}

// StaticCatalog is a read-only, in-memory Catalog built once from
// configuration (§6.2 "added", no live dictionary connection). Safe for
// concurrent read without locking because it is never mutated after
// construction, matching §5's "catalog is read-only after startup,
// shared without synchronisation."
type StaticCatalog struct {
	objects map[redo.ObjN]*Object
}

// NewStaticCatalog builds a StaticCatalog from a list of objects.
func NewStaticCatalog(objects []*Object) *StaticCatalog {
	m := make(map[redo.ObjN]*Object, len(objects))
	for _, o := range objects {
		m[o.Objn] = o
	}
	return &StaticCatalog{objects: m}
}

// LookupObject implements Catalog.
func (c *StaticCatalog) LookupObject(objn redo.ObjN) (*Object, bool) {
	o, ok := c.objects[objn]
	return o, ok
}
