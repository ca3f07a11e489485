package dicom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// directCodec converts whole values for character sets outside the code
// extension machinery: the multi-byte sets without extensions, the
// non-standard code pages, label-resolved encodings and the disabled
// fallback.
type directCodec interface {
	decode(b []byte, cfg Config, strict bool) (string, []Diagnostic, error)
	encode(s string) ([]byte, error)
}

// Keyed by the dictionary's direct-codec column.
var directCodecs = map[string]directCodec{
	"utf8":    utf8Codec{},
	"gb18030": transformCodec{enc: simplifiedchinese.GB18030, name: "GB18030"},
	"gbk":     transformCodec{enc: simplifiedchinese.GBK, name: "GBK"},
	"cp1250":  charmapCodec{cm: charmap.Windows1250, name: "cp1250"},
	"cp1251":  charmapCodec{cm: charmap.Windows1251, name: "cp1251"},
	"cp1252":  charmapCodec{cm: charmap.Windows1252, name: "cp1252"},
	"cp1253":  charmapCodec{cm: charmap.Windows1253, name: "cp1253"},
	"cp1254":  charmapCodec{cm: charmap.Windows1254, name: "cp1254"},
	"cp1255":  charmapCodec{cm: charmap.Windows1255, name: "cp1255"},
	"cp1256":  charmapCodec{cm: charmap.Windows1256, name: "cp1256"},
	"cp1257":  charmapCodec{cm: charmap.Windows1257, name: "cp1257"},
	"cp1258":  charmapCodec{cm: charmap.Windows1258, name: "cp1258"},
	"cp866":   charmapCodec{cm: charmap.CodePage866, name: "cp866"},
	"koi8r":   charmapCodec{cm: charmap.KOI8R, name: "KOI8-R"},
}

// utf8Codec handles ISO_IR 192. Decoding validates rather than converts;
// encoding is the identity, Go strings are already UTF-8.
type utf8Codec struct{}

func (utf8Codec) decode(b []byte, cfg Config, strict bool) (string, []Diagnostic, error) {
	if utf8.Valid(b) {
		return string(b), nil, nil
	}
	var out strings.Builder
	out.Grow(len(b))
	var diags []Diagnostic
	for off := 0; off < len(b); {
		r, n := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && n == 1 {
			bad := b[off : off+1]
			if strict {
				return "", nil, &CodecError{Kind: InvalidCodeUnit, Offset: off, Input: bad}
			}
			out.WriteString(cfg.replace(bad))
			diags = append(diags, decodeDiag(DiagInvalidCodeUnit, off, bad))
		} else {
			out.WriteRune(r)
		}
		off += n
	}
	return out.String(), diags, nil
}

func (utf8Codec) encode(s string) ([]byte, error) {
	return []byte(s), nil
}

// transformCodec runs a whole value through an x/text encoding. The
// decoder substitutes U+FFFD for undecodable input on its own, so strict
// mode and the lenient diagnostic are driven by replacement characters
// showing up in the output; a position cannot be recovered and
// cfg.Replacement does not apply here.
type transformCodec struct {
	enc  encoding.Encoding
	name string
}

func (c transformCodec) decode(b []byte, cfg Config, strict bool) (string, []Diagnostic, error) {
	if len(b) == 0 {
		return "", nil, nil
	}
	decoded, err := c.enc.NewDecoder().Bytes(b)
	if err != nil || strings.ContainsRune(string(decoded), utf8.RuneError) {
		if strict {
			return "", nil, &CodecError{Kind: InvalidCodeUnit, Offset: -1, Name: c.name}
		}
		if err != nil {
			return cfg.replace(b), []Diagnostic{{Code: DiagInvalidCodeUnit, Index: -1, Context: c.name}}, nil
		}
		return string(decoded), []Diagnostic{{Code: DiagInvalidCodeUnit, Index: -1, Context: c.name}}, nil
	}
	return string(decoded), nil, nil
}

func (c transformCodec) encode(s string) ([]byte, error) {
	if len(s) == 0 {
		return []byte{}, nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, c.encodeFailure(s)
	}
	return out, nil
}

// encodeFailure retries rune by rune to name the first offender.
func (c transformCodec) encodeFailure(s string) error {
	for i, r := range s {
		if _, err := c.enc.NewEncoder().Bytes([]byte(string(r))); err != nil {
			return &CodecError{Kind: UnrepresentableCharacter, Offset: i, Rune: r, Name: c.name}
		}
	}
	return &CodecError{Kind: UnrepresentableCharacter, Offset: -1, Name: c.name}
}

// charmapCodec converts byte by byte through an x/text charmap, which
// keeps full control over substitution and error positions for the
// single-byte non-standard code pages.
type charmapCodec struct {
	cm   *charmap.Charmap
	name string
}

func (c charmapCodec) decode(b []byte, cfg Config, strict bool) (string, []Diagnostic, error) {
	var out strings.Builder
	out.Grow(len(b))
	var diags []Diagnostic
	for off, bb := range b {
		r := c.cm.DecodeByte(bb)
		if r == utf8.RuneError {
			bad := b[off : off+1]
			if strict {
				return "", nil, &CodecError{Kind: InvalidCodeUnit, Offset: off, Input: bad, Name: c.name}
			}
			out.WriteString(cfg.replace(bad))
			diags = append(diags, decodeDiag(DiagInvalidCodeUnit, off, bad))
			continue
		}
		out.WriteRune(r)
	}
	return out.String(), diags, nil
}

func (c charmapCodec) encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		bb, ok := c.cm.EncodeRune(r)
		if !ok {
			return nil, &CodecError{Kind: UnrepresentableCharacter, Offset: i, Rune: r, Name: c.name}
		}
		out = append(out, bb)
	}
	return out, nil
}

// identityCodec backs a disabled conversion: bytes map one to one onto
// code points, nothing is interpreted and nothing is lost. Text that
// never leaves this representation round-trips exactly.
type identityCodec struct{}

func (identityCodec) decode(b []byte, _ Config, _ bool) (string, []Diagnostic, error) {
	var out strings.Builder
	out.Grow(len(b))
	for _, c := range b {
		out.WriteRune(rune(c))
	}
	return out.String(), nil, nil
}

func (identityCodec) encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xFF {
			return nil, &CodecError{Kind: UnrepresentableCharacter, Offset: i, Rune: r}
		}
		out = append(out, byte(r))
	}
	return out, nil
}
