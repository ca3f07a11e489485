package dicom

// Dictionary of Specific Character Set defined terms, as listed in
//
// https://dicom.nema.org/medical/dicom/current/output/chtml/part03/sect_C.12.html
//
// plus the configurable non-standard code pages seen in the wild.

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Columns: term, kind, G0 table, G1 table, with-extensions pair,
// ASCII-compatible, direct codec, aliases, description. "-" marks an empty
// column.
const termDictData = `
# Single-byte character sets without code extensions, PS3.3 Table C.12-2.
ISO_IR 6	sb	-	-	ISO 2022 IR 6	y	-	-	Default repertoire
ISO_IR 100	sb	-	-	ISO 2022 IR 100	y	-	ISO-8859-1	Latin alphabet No. 1
ISO_IR 101	sb	-	-	ISO 2022 IR 101	y	-	ISO-8859-2	Latin alphabet No. 2
ISO_IR 109	sb	-	-	ISO 2022 IR 109	y	-	ISO-8859-3	Latin alphabet No. 3
ISO_IR 110	sb	-	-	ISO 2022 IR 110	y	-	ISO-8859-4	Latin alphabet No. 4
ISO_IR 144	sb	-	-	ISO 2022 IR 144	y	-	ISO-8859-5	Cyrillic
ISO_IR 127	sb	-	-	ISO 2022 IR 127	y	-	ISO-8859-6	Arabic
ISO_IR 126	sb	-	-	ISO 2022 IR 126	y	-	ISO-8859-7	Greek
ISO_IR 138	sb	-	-	ISO 2022 IR 138	y	-	ISO-8859-8	Hebrew
ISO_IR 148	sb	-	-	ISO 2022 IR 148	y	-	ISO-8859-9	Latin alphabet No. 5
ISO_IR 203	sb	-	-	ISO 2022 IR 203	y	-	ISO-8859-15	Latin alphabet No. 9
ISO_IR 13	sb	-	-	ISO 2022 IR 13	n	-	-	Japanese katakana
ISO_IR 166	sb	-	-	ISO 2022 IR 166	y	-	TIS-620,ISO-8859-11	Thai
# Single-byte character sets with code extensions, PS3.3 Table C.12-3.
ISO 2022 IR 6	sbx	ir6	-	-	y	-	-	Default repertoire
ISO 2022 IR 100	sbx	ir6	latin1	-	y	-	-	Latin alphabet No. 1
ISO 2022 IR 101	sbx	ir6	latin2	-	y	-	-	Latin alphabet No. 2
ISO 2022 IR 109	sbx	ir6	latin3	-	y	-	-	Latin alphabet No. 3
ISO 2022 IR 110	sbx	ir6	latin4	-	y	-	-	Latin alphabet No. 4
ISO 2022 IR 144	sbx	ir6	cyrillic	-	y	-	-	Cyrillic
ISO 2022 IR 127	sbx	ir6	arabic	-	y	-	-	Arabic
ISO 2022 IR 126	sbx	ir6	greek	-	y	-	-	Greek
ISO 2022 IR 138	sbx	ir6	hebrew	-	y	-	-	Hebrew
ISO 2022 IR 148	sbx	ir6	latin5	-	y	-	-	Latin alphabet No. 5
ISO 2022 IR 203	sbx	ir6	latin9	-	y	-	-	Latin alphabet No. 9
ISO 2022 IR 13	sbx	romaji	katakana	-	n	-	-	Japanese katakana
ISO 2022 IR 166	sbx	ir6	thai	-	y	-	-	Thai
# Multi-byte character sets with code extensions, PS3.3 Table C.12-4.
ISO 2022 IR 87	mbx	jisx0208	-	-	n	-	-	Japanese kanji
ISO 2022 IR 159	mbx	jisx0212	-	-	n	-	-	Japanese supplementary kanji
ISO 2022 IR 149	mbx	-	ksx1001	-	y	-	-	Korean
ISO 2022 IR 58	mbx	-	gb2312	-	y	-	-	Simplified Chinese
# Multi-byte character sets without code extensions, PS3.3 Table C.12-5.
ISO_IR 192	mb	-	-	-	y	utf8	UTF-8,UTF8	Unicode in UTF-8
GB18030	mb	-	-	-	y	gb18030	-	Chinese GB 18030
GBK	mb	-	-	-	y	gbk	GB2312	Chinese GBK
# Non-standard code pages. Never valid in a conforming data set, accepted
# only through Config.AllowNonStandard.
cp1250	non	-	-	-	y	cp1250	windows-1250	Non-standard MS Central European
cp1251	non	-	-	-	y	cp1251	windows-1251	Non-standard MS Cyrillic
cp1252	non	-	-	-	y	cp1252	windows-1252	Non-standard MS Western European
cp1253	non	-	-	-	y	cp1253	windows-1253	Non-standard MS Greek
cp1254	non	-	-	-	y	cp1254	windows-1254	Non-standard MS Turkish
cp1255	non	-	-	-	y	cp1255	windows-1255	Non-standard MS Hebrew
cp1256	non	-	-	-	y	cp1256	windows-1256	Non-standard MS Arabic
cp1257	non	-	-	-	y	cp1257	windows-1257	Non-standard MS Baltic
cp1258	non	-	-	-	y	cp1258	windows-1258	Non-standard MS Vietnamese
cp866	non	-	-	-	y	cp866	ibm-866	Non-standard MS-DOS Cyrillic
KOI8-R	non	-	-	-	y	koi8r	KOI8	Non-standard Russian KOI8-R
`

var termKinds = map[string]Kind{
	"sb":  SingleByteWithoutExtensions,
	"sbx": SingleByteWithExtensions,
	"mbx": MultiByteWithExtensions,
	"mb":  MultiByteWithoutExtensions,
	"non": NonStandard,
}

var (
	termDictOnce sync.Once
	termDict     map[Term]*EncodingDescriptor
	termNorm     map[string]*EncodingDescriptor
	termOrder    []*EncodingDescriptor
)

// The registry is built once and read-only afterwards, so concurrent
// lookups need no further synchronization.
func maybeInitTermDict() {
	termDictOnce.Do(initTermDict)
}

func initTermDict() {
	maybeInitCodeTables()
	reader := csv.NewReader(bytes.NewReader([]byte(termDictData)))
	reader.Comma = '\t'  // tab separated file
	reader.Comment = '#' // comments start with #
	termDict = make(map[Term]*EncodingDescriptor)
	termNorm = make(map[string]*EncodingDescriptor)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		kind, found := termKinds[row[1]]
		doassert(found)
		d := &EncodingDescriptor{
			Term:        Term(row[0]),
			Kind:        kind,
			Description: row[8],
			g0:          codeTableByName(row[2]),
			g1:          codeTableByName(row[3]),
			pair:        Term(dictColumn(row[4])),
			ascii:       row[5] == "y",
			direct:      dictColumn(row[6]),
		}
		if aliases := dictColumn(row[7]); aliases != "" {
			d.Aliases = strings.Split(aliases, ",")
		}
		_, dup := termDict[d.Term]
		doassert(!dup)
		termDict[d.Term] = d
		termOrder = append(termOrder, d)
		for _, name := range append([]string{string(d.Term)}, d.Aliases...) {
			// Aliases of one term may collide after normalization
			// ("UTF-8", "UTF8"); two different terms must not.
			n := normalizeTermName(name)
			prev, dup := termNorm[n]
			doassert(!dup || prev == d)
			termNorm[n] = d
		}
	}
}

func dictColumn(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// normalizeTermName uppercases and strips everything but letters and
// digits, so "iso-ir 100", "ISO_IR 100" and "ISO-IR-100" collide.
func normalizeTermName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FindTerm resolves a raw Specific Character Set value to its descriptor
// and reports how it matched. Unknown names return an error; whether a
// non-canonical or non-standard match is acceptable is the validator's
// call, not the registry's.
func FindTerm(name string) (*EncodingDescriptor, Match, error) {
	maybeInitTermDict()
	trimmed := strings.TrimSpace(name)
	if d, found := termDict[Term(trimmed)]; found {
		return d, MatchCanonical, nil
	}
	d, found := termNorm[normalizeTermName(trimmed)]
	if !found {
		return nil, MatchNone, errors.Errorf("unknown character set %q", name)
	}
	if strings.EqualFold(trimmed, string(d.Term)) {
		return d, MatchFold, nil
	}
	for _, alias := range d.Aliases {
		if strings.EqualFold(trimmed, alias) {
			return d, MatchAlias, nil
		}
	}
	return d, MatchLoose, nil
}

// Like FindTerm, but accepts only the exact canonical spelling and panics
// when the term is not registered.
func MustFindTerm(term Term) *EncodingDescriptor {
	maybeInitTermDict()
	d, found := termDict[term]
	if !found {
		vlog.Fatalf("term %q not found in the character set dictionary", term)
	}
	return d
}

// PairWithExtensions returns the ISO-2022-with-extensions counterpart of a
// single-byte-without-extensions term ("ISO_IR 100" -> "ISO 2022 IR 100").
func PairWithExtensions(term Term) (Term, bool) {
	maybeInitTermDict()
	d, found := termDict[term]
	if !found || d.pair == "" {
		return "", false
	}
	return d.pair, true
}

// AllTerms returns every registered descriptor in registration order.
func AllTerms() []*EncodingDescriptor {
	maybeInitTermDict()
	return append([]*EncodingDescriptor(nil), termOrder...)
}
