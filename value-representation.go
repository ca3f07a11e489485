package dicom

type VR int // Value Representation

const (
	AE = VR(iota) // Application Entity
	AS            // Age String
	AT            // Attribute Tag
	CS            // Code String
	DA            // Date
	DS            // Decimal String
	DT            // Date Time
	FL            // Floating Point Single
	FD            // Floating Point Double
	IS            // Integer String
	LO            // Long String
	LT            // Long Text
	OB            // Other Byte String
	OD            // Other Double String
	OF            // Other Float String
	OX            // Unknown
	OW            // Other Word String
	PN            // Person Name
	SH            // Short String
	SL            // Signed Long
	SQ            // Sequence of Items
	SS            // Signed Short
	ST            // Short Text
	TM            // Time
	UI            // Unique Identifier (UUID)
	UL            // Unsigned Long
	UN            // Unknown
	US            // Unsigned Short
	UT            // Unlimited Text
	NA            // Unknown
)

var m = map[string]VR{
	"AE": AE,
	"AS": AS,
	"AT": AT,
	"CS": CS,
	"DA": DA,
	"DS": DS,
	"DT": DT,
	"FL": FL,
	"FD": FD,
	"IS": IS,
	"LO": LO,
	"LT": LT,
	"OB": OB,
	"OD": OD,
	"OF": OF,
	"OW": OW,
	"PN": PN,
	"SH": SH,
	"SL": SL,
	"SQ": SQ,
	"SS": SS,
	"ST": ST,
	"TM": TM,
	"UI": UI,
	"UL": UL,
	"UN": UN,
	"US": US,
	"UT": UT,
}

var vrNames = []string{
	"AE", "AS", "AT", "CS", "DA", "DS", "DT", "FL", "FD", "IS",
	"LO", "LT", "OB", "OD", "OF", "OX", "OW", "PN", "SH", "SL",
	"SQ", "SS", "ST", "TM", "UI", "UL", "UN", "US", "UT", "NA",
}

func ParseVR(s string) VR {
	vr, found := m[s]
	if !found {
		return NA
	}
	return vr
}

func (vr VR) String() string {
	if vr < 0 || int(vr) >= len(vrNames) {
		return "NA"
	}
	return vrNames[vr]
}

// Context carries the delimiter properties of the value being converted.
// Delimiters reset the code extension state between components
// (PS3.5 6.1.2.5.3).
type Context struct {
	MultiValued bool // backslash separates values
	PersonName  bool // caret and equals separate components and groups
}

// ContextForVR derives the delimiter context of a VR: person names carry
// component and group delimiters, multi-valued string VRs carry the
// value separator, and the text VRs treat backslash as ordinary text.
func ContextForVR(vr VR) Context {
	switch vr {
	case PN:
		return Context{MultiValued: true, PersonName: true}
	case LT, ST, UT:
		return Context{}
	default:
		return Context{MultiValued: true}
	}
}
