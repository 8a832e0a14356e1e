package decoder

import (
	"testing"

	"gotest.tools/v3/assert"
)

// A field whose declared length overruns the remaining data pushes pos
// past len(data); the next take() must clamp its start offset rather
// than slice with a negative range (§4.1, §7 taxonomy #1, §8.2).
func TestTakeClampsPosAfterPriorFieldOverrunsData(t *testing.T) {
	w := &fieldWalker{
		data: make([]byte, 4),
		lens: []uint16{100, 100},
		pos:  0,
		next: 1,
	}

	p1, ok1 := w.take()
	assert.Equal(t, len(p1), 4)
	assert.Equal(t, ok1, false)
	assert.Assert(t, w.pos > len(w.data))

	p2, ok2 := w.take() // must not panic: pos is already past len(data)
	assert.Equal(t, len(p2), 0)
	assert.Equal(t, ok2, false)
}
