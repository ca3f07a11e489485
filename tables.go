package dicom

// ISO 2022 code tables backing the character set descriptors. Single-byte
// G1 tables are derived from the x/text charmaps, the 94x94 multi-byte
// tables are precomputed from the corresponding x/text CJK codecs. Where a
// registered DICOM table deviates from its WHATWG-flavored x/text source
// (code points added to or removed from the ISO-IR registration), the
// difference is applied as a patch on top.

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ISO 2022 byte regions and delimiter codes, PS3.5 6.1.1.
const (
	codeEsc             = 0x1B
	codeValuesSeparator = '\\'
	clMax               = 0x1F // CL: control characters
	glMax               = 0x7F // GL: 0x20-0x7F, selected by G0
	grMin               = 0xA0 // GR: 0xA0-0xFF, selected by G1
)

// tableRegion names the code region a table is designated to.
type tableRegion int

const (
	regionGL = tableRegion(iota)
	regionGR
)

// codeTable is one designation target of the code extension machinery: the
// escape sequence that selects it plus byte<->rune conversion over its
// region. Virtual tables (identity, always-invalid) carry an empty escape.
type codeTable struct {
	name   string
	region tableRegion
	esc    []byte // bytes following ESC
	modern *codeTable

	// forward consumes one code point worth of bytes. n is at least 1
	// even when the bytes were not recognized, so the caller always
	// makes progress.
	forward func(b []byte) (n int, r rune, ok bool)
	// backward yields the wire bytes of r in this table.
	backward func(r rune) (buf [2]byte, n int, ok bool)
}

func forwardInvalid(_ []byte) (int, rune, bool) { return 1, 0, false }

func backwardInvalid(_ rune) ([2]byte, int, bool) { return [2]byte{}, 0, false }

func forwardIdentity(b []byte) (int, rune, bool) { return 1, rune(b[0]), true }

func backwardIdentity(r rune) ([2]byte, int, bool) {
	if r < 0 || r > 0xFF {
		return [2]byte{}, 0, false
	}
	return [2]byte{byte(r)}, 1, true
}

// Virtual tables for undesignated regions. The identity table serves as G1
// for a sole default-repertoire value, where unannounced 8-bit bytes are
// common enough in the wild to deserve a lossless round-trip.
var (
	tableG0Invalid  = &codeTable{name: "g0-invalid", region: regionGL, forward: forwardInvalid, backward: backwardInvalid}
	tableG1Invalid  = &codeTable{name: "g1-invalid", region: regionGR, forward: forwardInvalid, backward: backwardInvalid}
	tableG1Identity = &codeTable{name: "g1-identity", region: regionGR, forward: forwardIdentity, backward: backwardIdentity}
)

var (
	codeTablesOnce sync.Once
	codeTables     map[string]*codeTable

	// Designation escape search order. Modern variants are absent: they
	// share their base table's escape and are reached by substitution.
	isoTables []*codeTable

	tableG0IR6      *codeTable
	tableG0IR14     *codeTable
	tableG0JisX0208 *codeTable
	tableG0JisX0212 *codeTable

	tableG1Katakana     *codeTable
	tableG1Latin1       *codeTable
	tableG1Latin2       *codeTable
	tableG1Latin3       *codeTable
	tableG1Latin4       *codeTable
	tableG1Greek        *codeTable
	tableG1GreekModern  *codeTable
	tableG1Arabic       *codeTable
	tableG1Hebrew       *codeTable
	tableG1HebrewModern *codeTable
	tableG1Cyrillic     *codeTable
	tableG1Latin5       *codeTable
	tableG1Thai         *codeTable
	tableG1Latin9       *codeTable
	tableG1KsX1001      *codeTable
	tableG1GB2312       *codeTable
)

func maybeInitCodeTables() {
	codeTablesOnce.Do(initCodeTables)
}

func initCodeTables() {
	codeTables = make(map[string]*codeTable)

	ascii := asciiGL()
	tableG0IR6 = newG0Table("ir6", []byte{0x28, 0x42}, ascii)
	// ISO-IR 14 romaji: yen sign and overline in place of backslash and
	// tilde, PS3.5 6.1.2.2.
	tableG0IR14 = newG0Table("romaji", []byte{0x28, 0x4A},
		patchTable(ascii, 0x20, map[byte]rune{0x5C: 0x00A5, 0x7E: 0x203E}))

	tableG1Katakana = newG1Table("katakana", []byte{0x29, 0x49}, katakanaGR())
	tableG1Latin1 = newG1Table("latin1", []byte{0x2D, 0x41}, grFromCharmap(charmap.ISO8859_1))
	tableG1Latin2 = newG1Table("latin2", []byte{0x2D, 0x42}, grFromCharmap(charmap.ISO8859_2))
	tableG1Latin3 = newG1Table("latin3", []byte{0x2D, 0x43}, grFromCharmap(charmap.ISO8859_3))
	tableG1Latin4 = newG1Table("latin4", []byte{0x2D, 0x44}, grFromCharmap(charmap.ISO8859_4))
	// ISO-IR 126 is the 1986 Greek registration: no euro, drachma or
	// ypogegrammeni, which the x/text charmap carries from the later
	// revision. ISO-IR 227 keeps them and shares the escape sequence.
	tableG1Greek = newG1Table("greek", []byte{0x2D, 0x46},
		patchTable(grFromCharmap(charmap.ISO8859_7), grMin, map[byte]rune{
			0xA4: utf8.RuneError, 0xA5: utf8.RuneError, 0xAA: utf8.RuneError,
		}))
	tableG1GreekModern = newG1Table("greek-modern", []byte{0x2D, 0x46}, grFromCharmap(charmap.ISO8859_7))
	tableG1Arabic = newG1Table("arabic", []byte{0x2D, 0x47}, grFromCharmap(charmap.ISO8859_6))
	// Same story for Hebrew: ISO-IR 138 predates the LRM/RLM additions,
	// ISO-IR 234 adds the euro, sheqel and directional controls.
	tableG1Hebrew = newG1Table("hebrew", []byte{0x2D, 0x48},
		patchTable(grFromCharmap(charmap.ISO8859_8), grMin, map[byte]rune{
			0xFD: utf8.RuneError, 0xFE: utf8.RuneError,
		}))
	tableG1HebrewModern = newG1Table("hebrew-modern", []byte{0x2D, 0x48},
		patchTable(grFromCharmap(charmap.ISO8859_8), grMin, map[byte]rune{
			0xD9: 0x20AC, 0xDA: 0x20AA, 0xDB: 0x202D, 0xDC: 0x202E, 0xDD: 0x202C,
			0xFB: 0x202A, 0xFC: 0x202B,
		}))
	tableG1Cyrillic = newG1Table("cyrillic", []byte{0x2D, 0x4C}, grFromCharmap(charmap.ISO8859_5))
	tableG1Latin5 = newG1Table("latin5", []byte{0x2D, 0x4D}, grFromCharmap(charmap.ISO8859_9))
	tableG1Thai = newG1Table("thai", []byte{0x2D, 0x54}, grFromCharmap(charmap.Windows874))
	tableG1Latin9 = newG1Table("latin9", []byte{0x2D, 0x62}, grFromCharmap(charmap.ISO8859_15))

	tableG0JisX0208 = newCJKTable("jisx0208", []byte{0x24, 0x42}, regionGL, 0x21,
		japanese.EUCJP.NewDecoder(), func(lead, trail byte) []byte {
			return []byte{lead | 0x80, trail | 0x80}
		})
	tableG0JisX0212 = newCJKTable("jisx0212", []byte{0x24, 0x28, 0x44}, regionGL, 0x21,
		japanese.EUCJP.NewDecoder(), func(lead, trail byte) []byte {
			return []byte{0x8F, lead | 0x80, trail | 0x80}
		})
	tableG1KsX1001 = newCJKTable("ksx1001", []byte{0x24, 0x29, 0x43}, regionGR, 0xA1,
		korean.EUCKR.NewDecoder(), func(lead, trail byte) []byte {
			return []byte{lead, trail}
		})
	tableG1GB2312 = newCJKTable("gb2312", []byte{0x24, 0x29, 0x41}, regionGR, 0xA1,
		simplifiedchinese.GBK.NewDecoder(), func(lead, trail byte) []byte {
			return []byte{lead, trail}
		})

	tableG1Greek.modern = tableG1GreekModern
	tableG1Hebrew.modern = tableG1HebrewModern

	isoTables = []*codeTable{
		tableG0IR6,
		tableG1Katakana,
		tableG0IR14,
		tableG1Latin1,
		tableG1Latin2,
		tableG1Latin3,
		tableG1Latin4,
		tableG1Greek,
		tableG1Arabic,
		tableG1Hebrew,
		tableG1Cyrillic,
		tableG1Latin5,
		tableG1Thai,
		tableG1Latin9,
		tableG0JisX0208,
		tableG0JisX0212,
		tableG1KsX1001,
		tableG1GB2312,
	}
}

func registerCodeTable(t *codeTable) {
	_, dup := codeTables[t.name]
	doassert(!dup)
	codeTables[t.name] = t
}

// codeTableByName resolves a dictionary table column. "-" and "" mean no
// table; any other unknown name is a dictionary bug.
func codeTableByName(name string) *codeTable {
	if name == "" || name == "-" {
		return nil
	}
	t, found := codeTables[name]
	doassert(found)
	return t
}

func modernOrSelf(t *codeTable, useModern bool) *codeTable {
	if t != nil && useModern && t.modern != nil {
		return t.modern
	}
	return t
}

// asciiGL is the default repertoire's GL half: US-ASCII with DEL excluded,
// being outside the 94-character set.
func asciiGL() (gl [96]rune) {
	for i := range gl {
		gl[i] = rune(0x20 + i)
	}
	gl[glMax-0x20] = utf8.RuneError
	return gl
}

// katakanaGR derives the JIS X 0201 katakana block from the Shift JIS
// single-byte region 0xA1-0xDF.
func katakanaGR() (gr [96]rune) {
	for i := range gr {
		gr[i] = utf8.RuneError
	}
	dec := japanese.ShiftJIS.NewDecoder()
	for c := byte(0xA1); c <= 0xDF; c++ {
		if r, ok := decodeRuneVia(dec, []byte{c}); ok {
			gr[c-grMin] = r
		}
	}
	return gr
}

func grFromCharmap(cm *charmap.Charmap) (gr [96]rune) {
	for i := range gr {
		gr[i] = cm.DecodeByte(byte(grMin + i))
	}
	return gr
}

// patchTable overrides selected positions of a region array. utf8.RuneError
// marks a position as unmapped.
func patchTable(tab [96]rune, base byte, patch map[byte]rune) [96]rune {
	for c, r := range patch {
		tab[c-base] = r
	}
	return tab
}

// decodeRuneVia decodes raw through dec and accepts the result only if it
// is a single well-formed rune. The x/text decoders substitute U+FFFD for
// anything undecodable, which is never a legitimate table entry here.
func decodeRuneVia(dec *encoding.Decoder, raw []byte) (rune, bool) {
	out, err := dec.Bytes(raw)
	if err != nil {
		return 0, false
	}
	r, size := utf8.DecodeRune(out)
	if r == utf8.RuneError || size != len(out) {
		return 0, false
	}
	return r, true
}

// newG0Table builds a single-byte GL table. CL bytes pass through
// untranslated in both directions.
func newG0Table(name string, esc []byte, gl [96]rune) *codeTable {
	back := make(map[rune]byte, len(gl))
	for i, r := range gl {
		if r == utf8.RuneError {
			continue
		}
		if _, seen := back[r]; !seen {
			back[r] = byte(0x20 + i)
		}
	}
	t := &codeTable{name: name, region: regionGL, esc: esc}
	t.forward = func(b []byte) (int, rune, bool) {
		c := b[0]
		switch {
		case c <= clMax:
			return 1, rune(c), true
		case c <= glMax:
			r := gl[c-0x20]
			if r == utf8.RuneError {
				return 1, 0, false
			}
			return 1, r, true
		default:
			return 1, 0, false
		}
	}
	t.backward = func(r rune) ([2]byte, int, bool) {
		if r >= 0 && r <= clMax {
			return [2]byte{byte(r)}, 1, true
		}
		if c, found := back[r]; found {
			return [2]byte{c}, 1, true
		}
		return [2]byte{}, 0, false
	}
	registerCodeTable(t)
	return t
}

// newG1Table builds a single-byte GR table. CR bytes pass through
// untranslated in both directions; GL bytes never reach a G1 table and are
// rejected.
func newG1Table(name string, esc []byte, gr [96]rune) *codeTable {
	back := make(map[rune]byte, len(gr))
	for i, r := range gr {
		if r == utf8.RuneError {
			continue
		}
		if _, seen := back[r]; !seen {
			back[r] = byte(grMin + i)
		}
	}
	t := &codeTable{name: name, region: regionGR, esc: esc}
	t.forward = func(b []byte) (int, rune, bool) {
		c := b[0]
		switch {
		case c <= glMax:
			return 1, 0, false
		case c < grMin:
			return 1, rune(c), true
		default:
			r := gr[c-grMin]
			if r == utf8.RuneError {
				return 1, 0, false
			}
			return 1, r, true
		}
	}
	t.backward = func(r rune) ([2]byte, int, bool) {
		if r >= 0x80 && r < grMin {
			return [2]byte{byte(r)}, 1, true
		}
		if c, found := back[r]; found {
			return [2]byte{c}, 1, true
		}
		return [2]byte{}, 0, false
	}
	registerCodeTable(t)
	return t
}

// newCJKTable precomputes a 94x94 table from an x/text CJK decoder. raw
// maps a pair of wire bytes to the byte sequence the decoder understands
// (EUC-JP, EUC-KR or GBK). Truncated input and an out-of-range byte consume
// one byte; an in-range pair with no mapping consumes both.
func newCJKTable(name string, esc []byte, region tableRegion, lo byte, dec *encoding.Decoder, raw func(lead, trail byte) []byte) *codeTable {
	var fwd [94][94]rune
	back := make(map[rune][2]byte)
	for l := byte(0); l < 94; l++ {
		for tr := byte(0); tr < 94; tr++ {
			r, ok := decodeRuneVia(dec, raw(lo+l, lo+tr))
			if !ok {
				continue
			}
			fwd[l][tr] = r
			if _, seen := back[r]; !seen {
				back[r] = [2]byte{lo + l, lo + tr}
			}
		}
	}
	hi := lo + 93
	t := &codeTable{name: name, region: region, esc: esc}
	t.forward = func(b []byte) (int, rune, bool) {
		if b[0] < lo || b[0] > hi || len(b) < 2 {
			return 1, 0, false
		}
		if b[1] < lo || b[1] > hi {
			return 1, 0, false
		}
		r := fwd[b[0]-lo][b[1]-lo]
		if r == 0 {
			return 2, 0, false
		}
		return 2, r, true
	}
	t.backward = func(r rune) ([2]byte, int, bool) {
		p, found := back[r]
		if !found {
			return [2]byte{}, 0, false
		}
		return p, 2, true
	}
	registerCodeTable(t)
	return t
}
