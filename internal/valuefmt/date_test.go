package valuefmt

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestDateAdRoundTrip(t *testing.T) {
	// 2020-01-02T03:04:05 AD: century=120 (100+20), year=120 (100+20),
	// month=1, day=2, hour+1=4, minute+1=5, second+1=6.
	raw := []byte{120, 120, 1, 2, 4, 5, 6}
	s, err := Date(raw)
	assert.NilError(t, err)
	assert.Equal(t, s, "2020-01-02T03:04:05")
}

func TestDateBcSuffix(t *testing.T) {
	// century byte 99 (< 100) marks BC: (100-99)*100 + (100-57) = 143 BC.
	raw := []byte{99, 57, 3, 15, 13, 1, 1}
	s, err := Date(raw)
	assert.NilError(t, err)
	assert.Assert(t, len(s) > 0)
	assert.Equal(t, s[len(s)-2:], "BC")
}

func TestDateWrongLength(t *testing.T) {
	_, err := Date([]byte{1, 2, 3})
	assert.ErrorContains(t, err, "requires")
}
