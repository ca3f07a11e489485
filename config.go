package dicom

import "fmt"

// Config controls how Specific Character Set values are validated and how
// the resulting Codec behaves on malformed input.
//
// The zero value is the most restrictive configuration. DefaultConfig
// returns a configuration tuned for interoperability with datasets written
// by less careful implementations; StrictConfig follows the letter of
// PS3.3 C.12.1.1.2 and PS3.5 6.1.
type Config struct {
	// AllowNonStandard accepts character sets that are not defined terms,
	// for example "cp1251" or "KOI8-R". When NonStandardAllowList is empty
	// every known non-standard encoding is accepted, otherwise only the
	// listed ones.
	AllowNonStandard     bool
	NonStandardAllowList []string

	// AllowAliases accepts well-known alternative spellings of defined
	// terms, for example "ISO-8859-1" for "ISO_IR 100".
	AllowAliases bool

	// IgnoreEmptyValues drops empty values from a multi-valued character
	// set as long as at least two values remain.
	IgnoreEmptyValues bool

	// IgnoreDuplicateValues drops repeated values from a multi-valued
	// character set as long as at least two values remain.
	IgnoreDuplicateValues bool

	// PromoteSingleByte treats a single-byte character set without code
	// extensions inside a multi-valued value as its code-extension
	// counterpart, so "ISO_IR 6\ISO_IR 100" parses as
	// "ISO 2022 IR 6\ISO 2022 IR 100".
	PromoteSingleByte bool

	// StrictEscapes makes Codec.Decode fail on malformed, unknown or
	// undesignated ISO 2022 escape sequences instead of substituting a
	// replacement character.
	StrictEscapes bool

	// UseModernCodePages substitutes the newer revisions of the Greek and
	// Hebrew code pages (ISO-IR 227 and ISO-IR 234) for the ones named by
	// the standard. All other pages have no newer revision.
	UseModernCodePages bool

	// G1ForDefaultRepertoire designates the G1 code element when the
	// character set is a sole "ISO_IR 6" or "ISO 2022 IR 6". By default
	// such a codec maps bytes 0x80..0xFF one to one onto code points,
	// which preserves text written by encoding-unaware software. Setting
	// a term here decodes the upper half through that term's G1 page
	// instead.
	G1ForDefaultRepertoire Term

	// Replacement produces the substitution text for a run of undecodable
	// bytes. When nil a single U+FFFD is used.
	Replacement func(invalid []byte) string

	// DisableTracing suppresses the log messages otherwise emitted while
	// parsing a Specific Character Set.
	DisableTracing bool
}

// DefaultConfig enables every compatibility relaxation. Codecs built with
// it accept sloppy character sets and never fail decoding, which keeps
// malformed datasets readable at the price of deviating from the standard.
func DefaultConfig() Config {
	return Config{
		AllowNonStandard:      true,
		AllowAliases:          true,
		IgnoreEmptyValues:     true,
		IgnoreDuplicateValues: true,
		PromoteSingleByte:     true,
		UseModernCodePages:    true,
	}
}

// StrictConfig disables every relaxation and makes escape sequence errors
// fatal.
func StrictConfig() Config {
	return Config{StrictEscapes: true}
}

// ConfigurationError reports a Config field that cannot be satisfied.
type ConfigurationError struct {
	Option string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %q %s", e.Option, e.Value, e.Reason)
}

// Validate checks the cross-field constraints that cannot be expressed by
// the type system: allow-list entries must name resolvable non-standard
// encodings and G1ForDefaultRepertoire must be a registered character set.
// Validation failures surface here, never from Decode or Encode.
func (c Config) Validate() error {
	for _, entry := range c.NonStandardAllowList {
		d, _, err := FindTerm(entry)
		if err == nil {
			if d.Kind != NonStandard {
				return &ConfigurationError{
					Option: "NonStandardAllowList",
					Value:  entry,
					Reason: "names a standard character set",
				}
			}
			continue
		}
		if enc, _ := lookupEncodingLabel(entry); enc != nil {
			continue
		}
		return &ConfigurationError{
			Option: "NonStandardAllowList",
			Value:  entry,
			Reason: "does not resolve to a known encoding",
		}
	}
	if t := c.G1ForDefaultRepertoire; t != "" {
		if _, _, err := FindTerm(string(t)); err != nil {
			return &ConfigurationError{
				Option: "G1ForDefaultRepertoire",
				Value:  string(t),
				Reason: "is not a registered character set",
			}
		}
	}
	return nil
}

// replace renders the substitution text for invalid input bytes.
func (c Config) replace(invalid []byte) string {
	if c.Replacement != nil {
		return c.Replacement(invalid)
	}
	return "�"
}

// nonStandardAllowed reports whether the registered non-standard encoding d
// may be used under this configuration.
func (c Config) nonStandardAllowed(d *EncodingDescriptor) bool {
	if !c.AllowNonStandard {
		return false
	}
	if len(c.NonStandardAllowList) == 0 {
		return true
	}
	for _, entry := range c.NonStandardAllowList {
		if e, _, err := FindTerm(entry); err == nil && e == d {
			return true
		}
	}
	return false
}

// labelAllowed is the allow-list check for encodings resolved by IANA or
// WHATWG label rather than through the registry.
func (c Config) labelAllowed(label string) bool {
	if !c.AllowNonStandard {
		return false
	}
	if len(c.NonStandardAllowList) == 0 {
		return true
	}
	norm := normalizeTermName(label)
	for _, entry := range c.NonStandardAllowList {
		if normalizeTermName(entry) == norm {
			return true
		}
	}
	return false
}
