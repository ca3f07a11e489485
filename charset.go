package dicom

import (
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// EncodingPlan is the validated, ordered character set list of one
// Specific Character Set attribute. A plan of length > 1 holds only
// ISO 2022 code extension capable sets, never two entries for the same
// canonical term, and never a multi-byte set first. A plan resolved from
// a non-DICOM encoding label holds the resolved encoding instead of
// registered descriptors.
type EncodingPlan struct {
	descriptors []*EncodingDescriptor

	// Encoding resolved from an IANA or WHATWG label when no registered
	// term matched, together with its canonical label.
	external encoding.Encoding
	label    string
}

// Len returns the number of registered character sets in the plan.
func (p *EncodingPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.descriptors)
}

// Terms returns the canonical terms in plan order.
func (p *EncodingPlan) Terms() []Term {
	if p == nil {
		return nil
	}
	terms := make([]Term, len(p.descriptors))
	for i, d := range p.descriptors {
		terms[i] = d.Term
	}
	return terms
}

// Values returns the canonical attribute values for writing the plan back
// to a dataset. Alias resolution and code extension promotion show up
// here: a plan parsed from "ISO-8859-1" writes back as "ISO_IR 100".
func (p *EncodingPlan) Values() []string {
	if p == nil {
		return nil
	}
	if p.external != nil {
		return []string{p.label}
	}
	values := make([]string, len(p.descriptors))
	for i, d := range p.descriptors {
		values[i] = string(d.Term)
	}
	return values
}

// String returns the canonical attribute value, values joined with the
// DICOM value separator.
func (p *EncodingPlan) String() string {
	return strings.Join(p.Values(), `\`)
}

// Validate checks a pre-split Specific Character Set value list against
// the registry and cfg. A nil plan means conversion is disabled; the
// diagnostic that disabled it is the last one returned. Validation never
// mutates the registry and never fails outright: every finding is
// reported as data.
func Validate(values []string, cfg Config) (*EncodingPlan, []Diagnostic) {
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	plan, diags := validateValues(trimmed, cfg)
	traceDiagnostics(cfg, strings.Join(trimmed, `\`), plan, diags)
	return plan, diags
}

// ParseSpecificCharacterSet validates the raw value of a
// (0008,0005) Specific Character Set attribute. The value is trimmed and
// split on backslashes before validation.
func ParseSpecificCharacterSet(raw string, cfg Config) (*EncodingPlan, []Diagnostic) {
	raw = strings.TrimSpace(raw)
	var values []string
	if raw != "" {
		values = strings.Split(raw, `\`)
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
	}
	plan, diags := validateValues(values, cfg)
	traceDiagnostics(cfg, raw, plan, diags)
	return plan, diags
}

func validateValues(values []string, cfg Config) (*EncodingPlan, []Diagnostic) {
	switch len(values) {
	case 0:
		return nil, []Diagnostic{{Code: DiagEmptyCharacterSet}}
	case 1:
		if values[0] == "" {
			return nil, []Diagnostic{{Code: DiagEmptyCharacterSet}}
		}
		return validateSingle(values[0], cfg)
	}
	return validateMulti(values, cfg)
}

// validateSingle resolves a single-valued character set. Any kind is
// acceptable alone; only the resolution gates of cfg apply. A value
// unknown to the registry is retried as an IANA or WHATWG encoding label,
// which yields a label plan when non-standard encodings are allowed.
func validateSingle(value string, cfg Config) (*EncodingPlan, []Diagnostic) {
	d, match, err := FindTerm(value)
	if err != nil {
		if enc, name := lookupEncodingLabel(value); enc != nil {
			if !cfg.labelAllowed(value) {
				return nil, []Diagnostic{{Code: DiagNonStandardEncoding, Context: value}}
			}
			return &EncodingPlan{external: enc, label: name},
				[]Diagnostic{{Code: DiagNonStandardAccepted, Context: value}}
		}
		return nil, []Diagnostic{{Code: DiagUnknownEncoding, Context: value}}
	}

	var diags []Diagnostic
	if d.Kind == NonStandard {
		if !cfg.nonStandardAllowed(d) {
			return nil, []Diagnostic{{Code: DiagNonStandardEncoding, Context: value}}
		}
		diags = append(diags, Diagnostic{Code: DiagNonStandardAccepted, Context: value})
	} else if !match.Canonical() {
		if !cfg.AllowAliases {
			return nil, []Diagnostic{{Code: DiagNonStandardEncoding, Context: value}}
		}
		diags = append(diags, Diagnostic{Code: DiagAliasAccepted, Context: value})
	}
	return &EncodingPlan{descriptors: []*EncodingDescriptor{d}}, diags
}

// validateMulti walks a multi-valued character set left to right. Each
// value passes the resolution gates first, then the code extension rules:
// only ISO 2022 capable sets may appear, the first set must be
// single-byte, single-byte sets without code extensions promote to their
// counterparts, and the surviving canonical terms must be distinct.
// Dropping values must not leave fewer than two, otherwise the last drop
// escalates into the terminal form of its diagnostic.
func validateMulti(values []string, cfg Config) (*EncodingPlan, []Diagnostic) {
	var (
		diags       []Diagnostic
		descriptors = make([]*EncodingDescriptor, 0, len(values))

		ignoredEmptyAt = -1
		ignoredDupAt   = -1
		ignoredDupVal  string
	)

	for i, value := range values {
		if value == "" {
			if i == 0 {
				// PS3.5 6.1.2.5.2: an absent first value stands for the
				// default repertoire.
				descriptors = append(descriptors, MustFindTerm(Iso2022IR6))
				continue
			}
			if !cfg.IgnoreEmptyValues {
				return nil, append(diags, Diagnostic{Code: DiagEmptyValue, Index: i})
			}
			diags = append(diags, Diagnostic{Code: DiagIgnoredEmptyValue, Index: i})
			ignoredEmptyAt = i
			continue
		}

		d, match, err := FindTerm(value)
		if err != nil {
			if enc, _ := lookupEncodingLabel(value); enc != nil {
				// Label-resolved encodings carry no code extension
				// machinery, so they cannot join a multi-valued set.
				return nil, append(diags, Diagnostic{Code: DiagNonISO2022Encoding, Index: i, Context: value})
			}
			return nil, append(diags, Diagnostic{Code: DiagUnknownEncoding, Index: i, Context: value})
		}

		aliased := false
		if d.Kind == NonStandard {
			if !cfg.nonStandardAllowed(d) {
				return nil, append(diags, Diagnostic{Code: DiagNonStandardEncoding, Index: i, Context: value})
			}
			diags = append(diags, Diagnostic{Code: DiagNonStandardAccepted, Index: i, Context: value})
		} else if !match.Canonical() {
			if !cfg.AllowAliases {
				return nil, append(diags, Diagnostic{Code: DiagNonStandardEncoding, Index: i, Context: value})
			}
			diags = append(diags, Diagnostic{Code: DiagAliasAccepted, Index: i, Context: value})
			aliased = true
		}

		if !d.ISO2022Capable() {
			return nil, append(diags, Diagnostic{Code: DiagNonISO2022Encoding, Index: i, Context: value})
		}
		if i == 0 && d.Kind == MultiByteWithExtensions {
			return nil, append(diags, Diagnostic{Code: DiagMultiByteFirst, Index: i, Context: value})
		}

		if d.Kind == SingleByteWithoutExtensions {
			if !cfg.PromoteSingleByte {
				return nil, append(diags, Diagnostic{Code: DiagNonISO2022Encoding, Index: i, Context: value})
			}
			pair, ok := PairWithExtensions(d.Term)
			doassert(ok)
			d = MustFindTerm(pair)
			if !aliased {
				diags = append(diags, Diagnostic{Code: DiagPromotedTerm, Index: i, Context: value})
			}
		}

		dup := false
		for _, e := range descriptors {
			if e == d {
				dup = true
				break
			}
		}
		if dup {
			if !cfg.IgnoreDuplicateValues {
				return nil, append(diags, Diagnostic{Code: DiagDuplicateValue, Index: i, Context: value})
			}
			diags = append(diags, Diagnostic{Code: DiagIgnoredDuplicateValue, Index: i, Context: value})
			ignoredDupAt, ignoredDupVal = i, value
			continue
		}
		descriptors = append(descriptors, d)
	}

	// Dropping values must not turn a multi-valued character set into a
	// single-valued one.
	if len(descriptors) < 2 {
		doassert(ignoredEmptyAt >= 0 || ignoredDupAt >= 0)
		if ignoredEmptyAt >= 0 {
			return nil, append(diags, Diagnostic{Code: DiagEmptyValue, Index: ignoredEmptyAt})
		}
		return nil, append(diags, Diagnostic{Code: DiagDuplicateValue, Index: ignoredDupAt, Context: ignoredDupVal})
	}
	return &EncodingPlan{descriptors: descriptors}, diags
}

// lookupEncodingLabel resolves an encoding name outside the DICOM defined
// terms, trying the IANA index, then the WHATWG index, then the html
// charset lookup which knows a few more legacy spellings.
func lookupEncodingLabel(label string) (encoding.Encoding, string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ""
	}
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		if name, err := ianaindex.IANA.Name(enc); err == nil {
			return enc, name
		}
		return enc, label
	}
	if enc, err := htmlindex.Get(label); err == nil {
		if name, err := htmlindex.Name(enc); err == nil {
			return enc, name
		}
		return enc, label
	}
	if enc, name := charset.Lookup(label); enc != nil {
		return enc, name
	}
	return nil, ""
}
