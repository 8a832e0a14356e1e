// Package valuefmt renders redo-log column bytes into the strings a Sink
// frames into its downstream document (§4.4). Every function here is a
// pure, allocation-light transform: none of them touch a Sink, a Catalog
// or an Env, mirroring the teacher's free-standing decodeString/decodeBytes
// helpers in internal/wal/reader.go rather than turning formatting into
// a method on some stateful type.
package valuefmt

import (
	"fmt"
	"strings"
)

// numberPositiveBias and numberNegativeBias are the byte-0 sign/exponent
// biases for Oracle's packed-decimal NUMBER encoding (§4.4).
const (
	numberPositiveBias byte = 0xC0
	numberNegativeBias byte = 0x3F
	numberZero         byte = 0x80
	numberNegSentinel  byte = 0x66
)

// Number renders an Oracle packed-decimal NUMBER (type 2) as a decimal
// string. Unknown encodings return an error; callers should emit a "?"
// and log a diagnostic rather than propagate it (§4.4 "Unknown encodings
// emit a diagnostic and are skipped").
func Number(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("valuefmt: empty NUMBER")
	}
	if raw[0] == numberZero {
		return "0", nil
	}
	if raw[0] >= numberPositiveBias {
		return formatPositiveNumber(raw)
	}
	if raw[0] <= numberNegativeBias {
		return formatNegativeNumber(raw)
	}
	return "", fmt.Errorf("valuefmt: unrecognised NUMBER byte0 0x%02x", raw[0])
}

func formatPositiveNumber(raw []byte) (string, error) {
	digits := int(raw[0] - numberPositiveBias)
	rest := raw[1:]
	if digits > len(rest) {
		// fewer value bytes than integer digit-pairs: every byte is an
		// integer digit-pair and there is no fraction; the absent
		// low-order pairs are not rendered as zeros.
		digits = len(rest)
	}

	var intPart strings.Builder
	for i := 0; i < digits; i++ {
		pair := int(rest[i]) - 1
		if pair < 0 || pair > 99 {
			return "", fmt.Errorf("valuefmt: NUMBER digit-pair out of range 0x%02x", rest[i])
		}
		if i == 0 {
			intPart.WriteString(fmt.Sprintf("%d", pair))
		} else {
			intPart.WriteString(fmt.Sprintf("%02d", pair))
		}
	}
	if intPart.Len() == 0 {
		intPart.WriteByte('0')
	}

	frac := rest[digits:]
	if len(frac) == 0 {
		return intPart.String(), nil
	}

	var fracPart strings.Builder
	for i, b := range frac {
		pair := int(b) - 1
		if pair < 0 || pair > 99 {
			return "", fmt.Errorf("valuefmt: NUMBER digit-pair out of range 0x%02x", b)
		}
		if i == len(frac)-1 {
			fracPart.WriteString(strings.TrimSuffix(fmt.Sprintf("%02d", pair), "0"))
		} else {
			fracPart.WriteString(fmt.Sprintf("%02d", pair))
		}
	}
	if fracPart.Len() == 0 {
		return intPart.String(), nil
	}
	return intPart.String() + "." + fracPart.String(), nil
}

func formatNegativeNumber(raw []byte) (string, error) {
	digits := int(numberNegativeBias - raw[0])
	rest := raw[1:]
	// a trailing 0x66 sentinel marks the end of a negative encoding and
	// is not itself a digit byte (§4.4).
	if n := len(rest); n > 0 && rest[n-1] == numberNegSentinel {
		rest = rest[:n-1]
	}
	if digits > len(rest) {
		digits = len(rest)
	}

	var intPart strings.Builder
	for i := 0; i < digits; i++ {
		pair := 101 - int(rest[i])
		if pair < 0 || pair > 99 {
			return "", fmt.Errorf("valuefmt: negative NUMBER digit-pair out of range 0x%02x", rest[i])
		}
		if i == 0 {
			intPart.WriteString(fmt.Sprintf("%d", pair))
		} else {
			intPart.WriteString(fmt.Sprintf("%02d", pair))
		}
	}
	if intPart.Len() == 0 {
		intPart.WriteByte('0')
	}

	frac := rest[digits:]
	var fracPart strings.Builder
	for i, b := range frac {
		pair := 101 - int(b)
		if pair < 0 || pair > 99 {
			return "", fmt.Errorf("valuefmt: negative NUMBER digit-pair out of range 0x%02x", b)
		}
		if i == len(frac)-1 {
			fracPart.WriteString(strings.TrimSuffix(fmt.Sprintf("%02d", pair), "0"))
		} else {
			fracPart.WriteString(fmt.Sprintf("%02d", pair))
		}
	}
	if fracPart.Len() == 0 {
		return "-" + intPart.String(), nil
	}
	return "-" + intPart.String() + "." + fracPart.String(), nil
}
