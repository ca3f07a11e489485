package dicom

import (
	"bytes"
	"strings"
)

// shouldResetTables reports whether decoding or encoding c must revert the
// code elements to the initial state, per PS3.5 6.1.2.5.3: before any
// control character other than ESC, before the value separator of a
// multi-valued attribute, and before the "^" and "=" delimiters of a PN
// value. The check applies to the decoded code point, so a byte that the
// active table maps elsewhere (ISO-IR 14's 0x5C yen) does not reset.
func shouldResetTables(c byte, delims []byte) bool {
	return c <= clMax || bytes.IndexByte(delims, c) >= 0
}

// extraDelimiters lists the reset characters beyond the C0 controls for
// the given decode context.
func extraDelimiters(ctx Context) []byte {
	switch {
	case ctx.MultiValued && ctx.PersonName:
		return []byte{codeValuesSeparator, '^', '='}
	case ctx.MultiValued:
		return []byte{codeValuesSeparator}
	case ctx.PersonName:
		return []byte{'^', '='}
	}
	return nil
}

// extractEscSeqLen scans the bytes following ESC for a complete
// designation sequence: one or more intermediates in 0x20-0x2F, then a
// final byte in 0x30-0x7E. Returns the sequence length, or 0 when the
// input is malformed or truncated.
func extractEscSeqLen(b []byte) int {
	for i, c := range b {
		switch {
		case c >= 0x20 && c <= 0x2F:
		case c >= 0x30 && c <= 0x7E && i > 0:
			return i + 1
		default:
			return 0
		}
	}
	return 0
}

// resolvedTables returns d's code element pair with empty slots replaced
// by the invalid virtual tables and modern variants substituted per cfg.
func resolvedTables(d *EncodingDescriptor, cfg Config) (*codeTable, *codeTable) {
	g0, g1 := d.tables()
	if g0 == nil {
		g0 = tableG0Invalid
	}
	if g1 == nil {
		g1 = tableG1Invalid
	}
	return modernOrSelf(g0, cfg.UseModernCodePages), modernOrSelf(g1, cfg.UseModernCodePages)
}

// planTables resolves the G0/G1 code elements one plan element
// contributes. A sole default-repertoire value leaves G1 undesignated by
// the standard; it becomes the identity table so unannounced 8-bit bytes
// survive a round-trip, or the G1 half of cfg.G1ForDefaultRepertoire when
// the caller knows what those bytes really were.
func planTables(d *EncodingDescriptor, planLen int, cfg Config) (*codeTable, *codeTable) {
	g0, g1 := resolvedTables(d, cfg)
	if planLen == 1 && (d.Term == IsoIR6 || d.Term == Iso2022IR6) {
		g1 = tableG1Identity
		if cfg.G1ForDefaultRepertoire != "" {
			if o, _, err := FindTerm(string(cfg.G1ForDefaultRepertoire)); err == nil && o.ISO2022Capable() {
				_, g1 = resolvedTables(o, cfg)
			}
		}
	}
	return g0, g1
}

// findEscTable matches a complete designation sequence against the tables
// reachable from the plan. Reachability is decided on table identity over
// the plan's base pairs; the modern variant substitutes only after a
// match, so both the standard and the modern page answer to the same
// escape.
func (c *Codec) findEscTable(seq []byte) *codeTable {
	for _, t := range isoTables {
		if !bytes.Equal(t.esc, seq) {
			continue
		}
		for _, d := range c.plan.descriptors {
			g0, g1 := d.tables()
			if t == g0 || t == g1 {
				return modernOrSelf(t, c.cfg.UseModernCodePages)
			}
		}
	}
	return nil
}

// asciiDecode short-circuits decoding when the first plan element's GL
// half equals US-ASCII and the input stays within it, with no escapes.
func asciiDecode(b []byte, asciiCompatible bool) (string, bool) {
	if len(b) == 0 {
		return "", true
	}
	if !asciiCompatible {
		return "", false
	}
	for _, c := range b {
		if c >= 0x80 || c == codeEsc {
			return "", false
		}
	}
	return string(b), true
}

// asciiEncode is the encode-side counterpart of asciiDecode.
func asciiEncode(s string, asciiCompatible bool) ([]byte, bool) {
	if len(s) == 0 {
		return []byte{}, true
	}
	if !asciiCompatible {
		return nil, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, false
		}
	}
	return []byte(s), true
}

// iso2022Decode runs the code extension state machine over b. In strict
// mode the first malformed escape, undesignated escape or invalid code
// unit fails the whole value; otherwise the offending bytes become
// cfg.Replacement text and a diagnostic each, and decoding continues.
func (c *Codec) iso2022Decode(b []byte, ctx Context, strict bool) (string, []Diagnostic, error) {
	if s, ok := asciiDecode(b, c.ascii); ok {
		return s, nil, nil
	}

	g0, g1 := c.initialG0, c.initialG1
	delims := extraDelimiters(ctx)

	var out strings.Builder
	out.Grow(len(b) + len(b)/2)
	var diags []Diagnostic

	for off := 0; off < len(b); {
		if b[off] == codeEsc {
			n := extractEscSeqLen(b[off+1:])
			if n == 0 {
				// Not a designation sequence. Drop the ESC byte alone
				// and resume at the next byte.
				bad := b[off : off+1]
				if strict {
					return "", diags, &CodecError{Kind: MalformedEscapeSequence, Offset: off, Input: bad}
				}
				out.WriteString(c.cfg.replace(bad))
				diags = append(diags, decodeDiag(DiagMalformedEscape, off, bad))
				off++
				continue
			}
			seq := b[off+1 : off+1+n]
			if t := c.findEscTable(seq); t != nil {
				if t.region == regionGL {
					g0 = t
				} else {
					g1 = t
				}
			} else {
				bad := b[off : off+1+n]
				if strict {
					return "", diags, &CodecError{Kind: MalformedEscapeSequence, Offset: off, Input: bad}
				}
				out.WriteString(c.cfg.replace(bad))
				diags = append(diags, decodeDiag(DiagUnknownEscape, off, bad))
			}
			off += 1 + n
			continue
		}

		var (
			consumed int
			r        rune
			ok       bool
		)
		if b[off] < 0x80 {
			consumed, r, ok = g0.forward(b[off:])
		} else {
			consumed, r, ok = g1.forward(b[off:])
		}
		if !ok {
			bad := b[off : off+consumed]
			if strict {
				return "", diags, &CodecError{Kind: InvalidCodeUnit, Offset: off, Input: bad}
			}
			out.WriteString(c.cfg.replace(bad))
			diags = append(diags, decodeDiag(DiagInvalidCodeUnit, off, bad))
		} else {
			out.WriteRune(r)
			if r < glMax && shouldResetTables(byte(r), delims) {
				g0, g1 = c.initialG0, c.initialG1
			}
		}
		off += consumed
	}
	return out.String(), diags, nil
}

// iso2022Encode writes s using the plan's code elements. Each rune goes
// through the first table that can represent it, preferring the currently
// designated pair, then the initial pair, then the remaining plan
// elements; switching tables emits the designation escape. A rune no plan
// element can represent fails the whole value, the plan is never silently
// extended.
func (c *Codec) iso2022Encode(s string, ctx Context) ([]byte, error) {
	if b, ok := asciiEncode(s, c.ascii); ok {
		return b, nil
	}

	g0, g1 := c.initialG0, c.initialG1
	delims := extraDelimiters(ctx)
	out := make([]byte, 0, len(s)+len(s)/2)

	emitEsc := func(t *codeTable) {
		if len(t.esc) > 0 {
			out = append(out, codeEsc)
			out = append(out, t.esc...)
		}
	}
	tryG0 := func(r rune, t *codeTable, switchTo bool) bool {
		buf, n, ok := t.backward(r)
		if !ok {
			return false
		}
		if switchTo && t != g0 {
			emitEsc(t)
			g0 = t
		}
		out = append(out, buf[:n]...)
		return true
	}
	tryG1 := func(r rune, t *codeTable, switchTo bool) bool {
		buf, n, ok := t.backward(r)
		if !ok {
			return false
		}
		if switchTo && t != g1 {
			emitEsc(t)
			g1 = t
		}
		out = append(out, buf[:n]...)
		return true
	}
	write := func(r rune) bool {
		if tryG0(r, g0, false) || tryG1(r, g1, false) {
			return true
		}
		if g0 != c.initialG0 && tryG0(r, c.initialG0, true) {
			return true
		}
		if g1 != c.initialG1 && tryG1(r, c.initialG1, true) {
			return true
		}
		for _, pair := range c.termTables {
			if pair[0] != g0 && tryG0(r, pair[0], true) {
				return true
			}
			if pair[1] != g1 && tryG1(r, pair[1], true) {
				return true
			}
		}
		return false
	}

	for i, r := range s {
		if r <= glMax && shouldResetTables(byte(r), delims) {
			if g0 != c.initialG0 {
				emitEsc(c.initialG0)
			}
			g0 = c.initialG0
			if g1 != c.initialG1 {
				emitEsc(c.initialG1)
			}
			g1 = c.initialG1
		}
		if !write(r) {
			return nil, &CodecError{Kind: UnrepresentableCharacter, Offset: i, Rune: r}
		}
	}

	// The standard does not ask for a trailing reset, but a string left
	// with a 94x94 set in G0 breaks later space padding, so G0 always
	// reverts. G1 stays, GR bytes cannot be mistaken for padding.
	if g0 != c.initialG0 {
		emitEsc(c.initialG0)
	}
	return out, nil
}
