package valuefmt

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestNumberZero(t *testing.T) {
	s, err := Number([]byte{0x80})
	assert.NilError(t, err)
	assert.Equal(t, s, "0")
}

func TestNumberPositiveIntegerOnly(t *testing.T) {
	// 123 -> digit-pairs [1, 23]: byte0 = 0xC0+2 (two integer digit-pairs), then pair+1 per byte
	s, err := Number([]byte{0xC0 + 2, 1 + 1, 23 + 1})
	assert.NilError(t, err)
	assert.Equal(t, s, "123")
}

func TestNumberPositiveWithFraction(t *testing.T) {
	// 12.5 -> integer pairs: [12], fraction byte: 50+1=51, trailing zero dropped -> "5"
	s, err := Number([]byte{0xC0 + 1, 12 + 1, 50 + 1})
	assert.NilError(t, err)
	assert.Equal(t, s, "12.5")
}

func TestNumberFractionOnly(t *testing.T) {
	// 0.5 -> zero digit-pairs in integer part, one fractional byte
	s, err := Number([]byte{0xC0, 50 + 1})
	assert.NilError(t, err)
	assert.Equal(t, s, "0.5")
}

func TestNumberNegativeInteger(t *testing.T) {
	// -123 -> digit-pairs [1, 23]: sign byte = 0x3F-2 (two digit-pairs),
	// digit bytes = 101-pair, then the 0x66 sentinel
	s, err := Number([]byte{0x3F - 2, 101 - 1, 101 - 23, numberNegSentinel})
	assert.NilError(t, err)
	assert.Equal(t, s, "-123")
}

func TestNumberEmptyIsError(t *testing.T) {
	_, err := Number([]byte{})
	assert.ErrorContains(t, err, "empty")
}
