package valuefmt

// Oracle type numbers recognised by §4.4's formatting rules.
const (
	TypeVarchar2  uint16 = 1
	TypeNumber    uint16 = 2
	TypeDate      uint16 = 12
	TypeChar      uint16 = 96
	TypeTimestamp uint16 = 180
)

// Format dispatches on typeNo per §4.4 and renders raw column bytes as
// the string a Sink frames into its document. Unknown types render "?"
// and report ok=false so the caller can log a diagnostic (§7 taxonomy #2
// treats this the same as an unknown opcode: skip, don't fail).
func Format(typeNo uint16, raw []byte) (value string, ok bool) {
	switch typeNo {
	case TypeVarchar2, TypeChar:
		return Varchar(raw), true
	case TypeNumber:
		s, err := Number(raw)
		if err != nil {
			return "?", false
		}
		return s, true
	case TypeDate, TypeTimestamp:
		s, err := Date(raw)
		if err != nil {
			return "?", false
		}
		return s, true
	default:
		return "?", false
	}
}
