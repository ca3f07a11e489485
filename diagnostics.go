package dicom

import (
	"fmt"
	"strings"

	"v.io/x/lib/vlog"
)

// DiagnosticCode identifies one of the twelve findings the Specific
// Character Set validator can report. The numeric value is the four digit
// identifier used in the library documentation.
type DiagnosticCode uint16

const (
	DiagEmptyCharacterSet     = DiagnosticCode(iota + 1) // 0001
	DiagUnknownEncoding                                  // 0002
	DiagNonStandardEncoding                              // 0003
	DiagNonStandardAccepted                              // 0004
	DiagNonISO2022Encoding                               // 0005
	DiagMultiByteFirst                                   // 0006
	DiagAliasAccepted                                    // 0007
	DiagIgnoredEmptyValue                                // 0008
	DiagIgnoredDuplicateValue                            // 0009
	DiagEmptyValue                                       // 0010
	DiagDuplicateValue                                   // 0011
	DiagPromotedTerm                                     // 0012
)

// Substitution findings reported by Codec.DecodeLenient. They live
// outside the validator's 0001-0012 range; the index of such a finding is
// a byte offset and the context holds the replaced bytes in hex.
const (
	DiagMalformedEscape = DiagnosticCode(iota + 101) // 0101
	DiagUnknownEscape                                // 0102
	DiagInvalidCodeUnit                              // 0103
)

var diagnosticMessages = map[DiagnosticCode]string{
	DiagEmptyCharacterSet:     "empty character set",
	DiagUnknownEncoding:       "unknown encoding in character set",
	DiagNonStandardEncoding:   "non-standard encoding in character set",
	DiagNonStandardAccepted:   "non-standard term",
	DiagNonISO2022Encoding:    "non ISO-2022 encoding in multi-valued character set",
	DiagMultiByteFirst:        "first encoding is multi-byte in multi-valued character set",
	DiagAliasAccepted:         "term alias",
	DiagIgnoredEmptyValue:     "empty value",
	DiagIgnoredDuplicateValue: "duplicate value",
	DiagEmptyValue:            "empty value in multi-valued character set",
	DiagDuplicateValue:        "duplicate value in multi-valued character set",
	DiagPromotedTerm:          "'ISO_IR' as 'ISO 2022 IR'",
	DiagMalformedEscape:       "malformed escape sequence replaced",
	DiagUnknownEscape:         "undesignated escape sequence replaced",
	DiagInvalidCodeUnit:       "invalid code unit replaced",
}

// decodeDiag reports one lenient-decode substitution.
func decodeDiag(code DiagnosticCode, offset int, bad []byte) Diagnostic {
	return Diagnostic{Code: code, Index: offset, Context: fmt.Sprintf("% X", bad)}
}

func (c DiagnosticCode) String() string {
	return fmt.Sprintf("%04d", uint16(c))
}

// Message returns the human readable description of the finding.
func (c DiagnosticCode) Message() string {
	if m, ok := diagnosticMessages[c]; ok {
		return m
	}
	return "unknown diagnostic"
}

// terminal reports whether the finding disables conversion. A terminal
// diagnostic is always the last one the validator emits.
func (c DiagnosticCode) terminal() bool {
	switch c {
	case DiagEmptyCharacterSet, DiagUnknownEncoding, DiagNonStandardEncoding,
		DiagNonISO2022Encoding, DiagMultiByteFirst, DiagEmptyValue, DiagDuplicateValue:
		return true
	}
	return false
}

// Severity grades a Diagnostic. Every condition the validator reports is a
// warning: validation never raises a hard failure, it either accepts with
// a substitution or disables conversion.
type Severity int

const SeverityWarning = Severity(iota)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "Warning"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic records one finding made while validating a Specific
// Character Set value. Diagnostics are accumulated and returned, never
// thrown; each describes a fact about the input.
type Diagnostic struct {
	Code     DiagnosticCode
	Severity Severity
	// Index is the position of the offending value within the attribute.
	Index int
	// Context is the offending value as written.
	Context string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s (value %d, %q)",
		d.Severity, d.Code, d.Code.Message(), d.Index, d.Context)
}

// traceDiagnostics logs validator findings. A disabled conversion logs the
// terminal finding together with the raw attribute. An accepted character
// set whose canonical form differs from the written one logs both forms,
// otherwise the findings are logged as accepted.
func traceDiagnostics(cfg Config, source string, plan *EncodingPlan, diags []Diagnostic) {
	if len(diags) == 0 || cfg.DisableTracing {
		return
	}
	failed := plan == nil
	var msgs []string
	seen := make(map[DiagnosticCode]bool)
	for _, d := range diags {
		if seen[d.Code] || (failed && !d.Code.terminal()) {
			continue
		}
		seen[d.Code] = true
		msgs = append(msgs, d.Code.Message())
	}
	joined := strings.Join(msgs, ", ")
	switch {
	case failed && source != "":
		vlog.Errorf("Warning: %s %q", joined, source)
	case failed:
		vlog.Errorf("Warning: %s", joined)
	case plan.String() != source:
		vlog.Errorf("Warning: character set %q accepted as %q (%s)", source, plan, joined)
	default:
		vlog.Errorf("Warning: accepted %s in character set %q", joined, source)
	}
}
