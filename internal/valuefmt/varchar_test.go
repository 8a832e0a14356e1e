package valuefmt

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestVarcharEscapesControlAndQuote(t *testing.T) {
	s := Varchar([]byte("he said \"hi\"\n"))
	assert.Equal(t, s, `he said \"hi\"\n`)
}

func TestVarcharPlainPassthrough(t *testing.T) {
	s := Varchar([]byte("hello"))
	assert.Equal(t, s, "hello")
}

func TestFormatDispatch(t *testing.T) {
	s, ok := Format(TypeNumber, []byte{0x80})
	assert.Assert(t, ok)
	assert.Equal(t, s, "0")

	s, ok = Format(9999, []byte{1, 2, 3})
	assert.Assert(t, !ok)
	assert.Equal(t, s, "?")
}
