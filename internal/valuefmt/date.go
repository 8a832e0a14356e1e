package valuefmt

import "fmt"

// dateLen is the fixed width of an Oracle DATE/TIMESTAMP (types 12, 180)
// physical encoding (§4.4): century, year, month, day, hour+1, minute+1,
// second+1.
const dateLen = 7

// Date renders a 7-byte Oracle DATE as ISO-8601, with a "BC" suffix when
// the era bytes encode a BC year.
func Date(raw []byte) (string, error) {
	if len(raw) != dateLen {
		return "", fmt.Errorf("valuefmt: DATE requires %d bytes, got %d", dateLen, len(raw))
	}
	century, yearByte := raw[0], raw[1]
	month, day := int(raw[2]), int(raw[3])
	hour, minute, second := int(raw[4])-1, int(raw[5])-1, int(raw[6])-1

	var year int
	var bc bool
	if century >= 100 {
		year = (int(century)-100)*100 + (int(yearByte) - 100)
	} else {
		year = (100-int(century))*100 + (100 - int(yearByte))
		bc = true
	}

	ts := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", year, month, day, hour, minute, second)
	if bc {
		ts += " BC"
	}
	return ts, nil
}
