package dicom

import (
	"fmt"

	"github.com/pkg/errors"
)

// CodecErrorKind classifies conversion failures.
type CodecErrorKind int

const (
	// MalformedEscapeSequence marks a truncated, unparseable or
	// out-of-plan ISO 2022 escape sequence in strict decoding.
	MalformedEscapeSequence = CodecErrorKind(iota)
	// InvalidCodeUnit marks input bytes outside the designated table.
	InvalidCodeUnit
	// UnrepresentableCharacter marks a rune no table of the plan can
	// encode. Encoding never substitutes, it fails.
	UnrepresentableCharacter
	// UnsupportedEncoding marks a plan referencing an encoding this
	// build cannot serve.
	UnsupportedEncoding
)

func (k CodecErrorKind) String() string {
	switch k {
	case MalformedEscapeSequence:
		return "malformed escape sequence"
	case InvalidCodeUnit:
		return "invalid code unit"
	case UnrepresentableCharacter:
		return "unrepresentable character"
	case UnsupportedEncoding:
		return "unsupported encoding"
	}
	return fmt.Sprintf("CodecErrorKind(%d)", int(k))
}

// CodecError is a typed conversion failure. Offset is a byte position
// when decoding and a byte position of the rune when encoding, or -1
// when the position cannot be recovered.
type CodecError struct {
	Kind   CodecErrorKind
	Offset int
	Input  []byte // offending bytes, decode side
	Rune   rune   // offending rune, encode side
	Name   string // encoding name, when one is involved
}

func (e *CodecError) Error() string {
	switch e.Kind {
	case MalformedEscapeSequence:
		return fmt.Sprintf("malformed escape sequence % X at offset %d", e.Input, e.Offset)
	case InvalidCodeUnit:
		if e.Offset < 0 {
			return fmt.Sprintf("invalid code units in %s value", e.Name)
		}
		return fmt.Sprintf("invalid code unit % X at offset %d", e.Input, e.Offset)
	case UnrepresentableCharacter:
		return fmt.Sprintf("character %q not representable at offset %d", e.Rune, e.Offset)
	case UnsupportedEncoding:
		return fmt.Sprintf("unsupported encoding %q", e.Name)
	}
	return e.Kind.String()
}

// Codec converts attribute values between their encoded bytes and
// strings. A Codec is immutable and safe for concurrent use; Decode and
// Encode are pure functions of their inputs.
type Codec struct {
	plan *EncodingPlan
	cfg  Config

	// Code extension state templates; nil for direct conversions.
	initialG0  *codeTable
	initialG1  *codeTable
	termTables [][2]*codeTable

	direct directCodec // set when conversion bypasses code extensions
	ascii  bool
}

// NewCodec builds the converter for a validated plan. A nil or empty
// plan yields the disabled codec, which maps bytes one to one onto code
// points and back.
func NewCodec(plan *EncodingPlan, cfg Config) *Codec {
	c := &Codec{plan: plan, cfg: cfg}
	switch {
	case plan == nil || (len(plan.descriptors) == 0 && plan.external == nil):
		c.direct = identityCodec{}
		c.ascii = true
	case plan.external != nil:
		// Arbitrary label-resolved encodings give no ASCII guarantee.
		c.direct = transformCodec{enc: plan.external, name: plan.label}
	case plan.descriptors[0].direct != "":
		// Direct conversions never pass validation in multi-valued sets.
		doassert(len(plan.descriptors) == 1)
		d := plan.descriptors[0]
		c.ascii = d.ascii
		codec, ok := directCodecs[d.direct]
		if !ok {
			codec = unsupportedCodec{name: string(d.Term)}
		}
		c.direct = codec
	default:
		// Keyed on the first element alone: input without ESC never
		// invokes the other elements' sets.
		c.ascii = plan.descriptors[0].ascii
		c.termTables = make([][2]*codeTable, len(plan.descriptors))
		for i, d := range plan.descriptors {
			g0, g1 := planTables(d, len(plan.descriptors), cfg)
			c.termTables[i] = [2]*codeTable{g0, g1}
		}
		c.initialG0 = c.termTables[0][0]
		c.initialG1 = c.termTables[0][1]
	}
	return c
}

// Plan reports the plan the codec was built for.
func (c *Codec) Plan() *EncodingPlan {
	return c.plan
}

// Decode converts encoded bytes to a string. With StrictEscapes any
// malformed escape or invalid code unit fails; otherwise offending input
// is replaced per the configured replacement.
func (c *Codec) Decode(b []byte, ctx Context) (string, error) {
	s, _, err := c.decode(b, ctx, c.cfg.StrictEscapes)
	return s, err
}

// DecodeLenient never fails: offending input is replaced and each
// substitution is reported as a diagnostic.
func (c *Codec) DecodeLenient(b []byte, ctx Context) (string, []Diagnostic) {
	s, diags, _ := c.decode(b, ctx, false)
	return s, diags
}

func (c *Codec) decode(b []byte, ctx Context, strict bool) (string, []Diagnostic, error) {
	if s, ok := asciiDecode(b, c.ascii); ok {
		return s, nil, nil
	}
	if c.direct != nil {
		return c.direct.decode(b, c.cfg, strict)
	}
	return c.iso2022Decode(b, ctx, strict)
}

// Encode converts a string to the plan's byte representation. Runes the
// plan cannot represent fail with UnrepresentableCharacter; nothing is
// ever substituted on the way out.
func (c *Codec) Encode(s string, ctx Context) ([]byte, error) {
	if b, ok := asciiEncode(s, c.ascii); ok {
		return b, nil
	}
	if c.direct != nil {
		return c.direct.encode(s)
	}
	return c.iso2022Encode(s, ctx)
}

// DecodeElement decodes one element value, deriving the delimiter
// context from its VR and annotating failures with the element.
func (c *Codec) DecodeElement(b []byte, tag Tag, vr VR) (string, error) {
	s, err := c.Decode(b, ContextForVR(vr))
	if err != nil {
		return "", errors.Wrapf(err, "decoding %s %s", tag, vr)
	}
	return s, nil
}

// EncodeElement encodes one element value, deriving the delimiter
// context from its VR and annotating failures with the element.
func (c *Codec) EncodeElement(s string, tag Tag, vr VR) ([]byte, error) {
	b, err := c.Encode(s, ContextForVR(vr))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s %s", tag, vr)
	}
	return b, nil
}

// unsupportedCodec reports every conversion attempt as failed. It backs
// descriptors whose conversion this build cannot serve.
type unsupportedCodec struct {
	name string
}

func (u unsupportedCodec) decode([]byte, Config, bool) (string, []Diagnostic, error) {
	return "", nil, &CodecError{Kind: UnsupportedEncoding, Offset: -1, Name: u.name}
}

func (u unsupportedCodec) encode(string) ([]byte, error) {
	return nil, &CodecError{Kind: UnsupportedEncoding, Offset: -1, Name: u.name}
}
