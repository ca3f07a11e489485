package dicom

// Specific Character Set defined terms and their descriptors. The list of
// terms is defined in PS3.3 C.12.1.1.2, the code extension machinery they
// select in PS3.5 6.1.2.
//
// https://dicom.nema.org/medical/dicom/current/output/chtml/part03/sect_C.12.html

// Term is the canonical spelling of one Specific Character Set value, such
// as "ISO_IR 100" or "ISO 2022 IR 87". The canonical form is case and
// whitespace sensitive; use FindTerm to resolve aliases and spelling
// variants.
type Term string

const (
	IsoIR6       = Term("ISO_IR 6")
	IsoIR100     = Term("ISO_IR 100")
	IsoIR101     = Term("ISO_IR 101")
	IsoIR109     = Term("ISO_IR 109")
	IsoIR110     = Term("ISO_IR 110")
	IsoIR144     = Term("ISO_IR 144")
	IsoIR127     = Term("ISO_IR 127")
	IsoIR126     = Term("ISO_IR 126")
	IsoIR138     = Term("ISO_IR 138")
	IsoIR148     = Term("ISO_IR 148")
	IsoIR203     = Term("ISO_IR 203")
	IsoIR13      = Term("ISO_IR 13")
	IsoIR166     = Term("ISO_IR 166")
	Iso2022IR6   = Term("ISO 2022 IR 6")
	Iso2022IR100 = Term("ISO 2022 IR 100")
	Iso2022IR101 = Term("ISO 2022 IR 101")
	Iso2022IR109 = Term("ISO 2022 IR 109")
	Iso2022IR110 = Term("ISO 2022 IR 110")
	Iso2022IR144 = Term("ISO 2022 IR 144")
	Iso2022IR127 = Term("ISO 2022 IR 127")
	Iso2022IR126 = Term("ISO 2022 IR 126")
	Iso2022IR138 = Term("ISO 2022 IR 138")
	Iso2022IR148 = Term("ISO 2022 IR 148")
	Iso2022IR203 = Term("ISO 2022 IR 203")
	Iso2022IR13  = Term("ISO 2022 IR 13")
	Iso2022IR166 = Term("ISO 2022 IR 166")
	Iso2022IR87  = Term("ISO 2022 IR 87")
	Iso2022IR159 = Term("ISO 2022 IR 159")
	Iso2022IR149 = Term("ISO 2022 IR 149")
	Iso2022IR58  = Term("ISO 2022 IR 58")
	IsoIR192     = Term("ISO_IR 192")
	GB18030      = Term("GB18030")
	GBK          = Term("GBK")
)

func (t Term) String() string { return string(t) }

type Kind int // Specific Character Set term kind, PS3.3 C.12.1.1.2

const (
	SingleByteWithoutExtensions = Kind(iota) // e.g. ISO_IR 100
	SingleByteWithExtensions                 // e.g. ISO 2022 IR 100
	MultiByteWithExtensions                  // e.g. ISO 2022 IR 87
	MultiByteWithoutExtensions               // e.g. ISO_IR 192
	NonStandard                              // e.g. cp1251
)

var kindNames = map[Kind]string{
	SingleByteWithoutExtensions: "single-byte without code extensions",
	SingleByteWithExtensions:    "single-byte with code extensions",
	MultiByteWithExtensions:     "multi-byte with code extensions",
	MultiByteWithoutExtensions:  "multi-byte without code extensions",
	NonStandard:                 "non-standard",
}

func (k Kind) String() string {
	name, found := kindNames[k]
	if !found {
		return "unknown"
	}
	return name
}

// Match reports how a raw attribute value matched a registered term.
type Match int

const (
	MatchNone      = Match(iota) // no registered term matched
	MatchCanonical               // exact canonical spelling
	MatchFold                    // canonical spelling up to letter case
	MatchAlias                   // a registered alias, e.g. "ISO-8859-1"
	MatchLoose                   // spelling variant, e.g. "iso-ir100"
)

// Canonical reports whether the input was the exact canonical spelling.
// Everything else is treated as an alias by the validator.
func (m Match) Canonical() bool { return m == MatchCanonical }

// EncodingDescriptor describes one registered term: its kind, the code
// tables it designates, and the names it answers to. Exactly one descriptor
// exists per canonical Term; aliases resolve to the same descriptor.
type EncodingDescriptor struct {
	Term        Term
	Kind        Kind
	Description string
	Aliases     []string

	// ISO 2022 code elements. For SingleByteWithoutExtensions terms these
	// are inherited from the with-extensions counterpart.
	g0, g1 *codeTable

	// With-extensions counterpart of a SingleByteWithoutExtensions term,
	// "" otherwise.
	pair Term

	// Key into the direct (whole-buffer) codec table for
	// MultiByteWithoutExtensions and NonStandard terms.
	direct string

	// GL half equals US-ASCII, so pure 7-bit values need no table walk.
	ascii bool
}

// ISO2022Capable reports whether the term may take part in the code
// extension machinery, alone or in a multi-valued character set.
func (d *EncodingDescriptor) ISO2022Capable() bool {
	switch d.Kind {
	case SingleByteWithoutExtensions, SingleByteWithExtensions, MultiByteWithExtensions:
		return true
	}
	return false
}

// ByteWidth returns the number of bytes one code point occupies in the
// term's designated half: 2 for the 94x94 multi-byte sets, 1 otherwise.
func (d *EncodingDescriptor) ByteWidth() int {
	if d.Kind == MultiByteWithExtensions {
		return 2
	}
	return 1
}

// EscapeSequences returns the designation escape sequences (bytes after
// ESC) of the term's code elements, following the with-extensions pair of
// a without-extensions term. Empty for terms outside the code extension
// machinery.
func (d *EncodingDescriptor) EscapeSequences() [][]byte {
	g0, g1 := d.tables()
	var seqs [][]byte
	for _, t := range []*codeTable{g0, g1} {
		if t != nil && len(t.esc) > 0 {
			seqs = append(seqs, t.esc)
		}
	}
	return seqs
}

// tables resolves the descriptor's G0/G1 code elements, following the
// with-extensions pair of a without-extensions term.
func (d *EncodingDescriptor) tables() (*codeTable, *codeTable) {
	if d.g0 == nil && d.g1 == nil && d.pair != "" {
		p := MustFindTerm(d.pair)
		return p.g0, p.g1
	}
	return d.g0, d.g1
}
