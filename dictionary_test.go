package dicom

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTerm(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		term  Term
		match Match
	}{
		{"canonical", "ISO_IR 100", IsoIR100, MatchCanonical},
		{"canonical with extensions", "ISO 2022 IR 87", Iso2022IR87, MatchCanonical},
		{"surrounding space", "  ISO 2022 IR 87  ", Iso2022IR87, MatchCanonical},
		{"case fold", "iso_ir 100", IsoIR100, MatchFold},
		{"alias", "ISO-8859-1", IsoIR100, MatchAlias},
		{"alias case fold", "iso-8859-1", IsoIR100, MatchAlias},
		{"alias thai", "TIS-620", IsoIR166, MatchAlias},
		{"alias utf8 dashed", "UTF-8", IsoIR192, MatchAlias},
		{"alias utf8 plain", "utf8", IsoIR192, MatchAlias},
		{"alias gbk", "GB2312", GBK, MatchAlias},
		{"alias code page", "windows-1251", Term("cp1251"), MatchAlias},
		{"alias dos code page", "IBM-866", Term("cp866"), MatchAlias},
		{"loose underscore dropped", "ISO IR 100", IsoIR100, MatchLoose},
		{"loose space dropped", "iso_ir100", IsoIR100, MatchLoose},
		{"loose squashed", "ISO2022IR100", Iso2022IR100, MatchLoose},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d, m, err := FindTerm(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.term, d.Term)
			assert.Equal(t, tc.match, m)
			assert.Equal(t, tc.match == MatchCanonical, m.Canonical())
		})
	}

	for _, in := range []string{"", "unicode", "ISO_IR 999", "utf-16le"} {
		_, m, err := FindTerm(in)
		require.Error(t, err, in)
		assert.Equal(t, MatchNone, m, in)
	}
}

func TestDescriptorProperties(t *testing.T) {
	latin1 := MustFindTerm(IsoIR100)
	assert.Equal(t, SingleByteWithoutExtensions, latin1.Kind)
	assert.True(t, latin1.ISO2022Capable())
	assert.Equal(t, 1, latin1.ByteWidth())
	assert.Contains(t, latin1.Aliases, "ISO-8859-1")
	// A without-extensions term answers with the escapes of its
	// with-extensions pair.
	assert.Equal(t, [][]byte{{0x28, 0x42}, {0x2d, 0x41}}, latin1.EscapeSequences())

	kanji := MustFindTerm(Iso2022IR87)
	assert.Equal(t, MultiByteWithExtensions, kanji.Kind)
	assert.True(t, kanji.ISO2022Capable())
	assert.Equal(t, 2, kanji.ByteWidth())
	assert.Equal(t, [][]byte{{0x24, 0x42}}, kanji.EscapeSequences())

	korean := MustFindTerm(Iso2022IR149)
	assert.Equal(t, [][]byte{{0x24, 0x29, 0x43}}, korean.EscapeSequences())

	unicode := MustFindTerm(IsoIR192)
	assert.Equal(t, MultiByteWithoutExtensions, unicode.Kind)
	assert.False(t, unicode.ISO2022Capable())
	assert.Empty(t, unicode.EscapeSequences())

	cyrillic := MustFindTerm(IsoIR144)
	assert.Equal(t, "Cyrillic", cyrillic.Description)

	cp, _, err := FindTerm("cp1251")
	require.NoError(t, err)
	assert.Equal(t, NonStandard, cp.Kind)
	assert.False(t, cp.ISO2022Capable())
}

func TestPairWithExtensions(t *testing.T) {
	pair, ok := PairWithExtensions(IsoIR6)
	require.True(t, ok)
	assert.Equal(t, Iso2022IR6, pair)

	pair, ok = PairWithExtensions(IsoIR100)
	require.True(t, ok)
	assert.Equal(t, Iso2022IR100, pair)

	for _, term := range []Term{Iso2022IR100, GB18030, IsoIR192, Term("nope")} {
		_, ok := PairWithExtensions(term)
		assert.False(t, ok, term)
	}
}

func TestAllTerms(t *testing.T) {
	all := AllTerms()
	require.Len(t, all, 44)
	assert.Equal(t, IsoIR6, all[0].Term)

	terms := make(map[Term]bool, len(all))
	for _, d := range all {
		terms[d.Term] = true
	}
	for _, term := range []Term{IsoIR13, Iso2022IR159, GB18030, GBK, Term("KOI8-R")} {
		assert.True(t, terms[term], term)
	}

	// Callers get a copy of the registration order.
	all[0] = nil
	assert.NotNil(t, AllTerms()[0])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single-byte without code extensions", SingleByteWithoutExtensions.String())
	assert.Equal(t, "single-byte with code extensions", SingleByteWithExtensions.String())
	assert.Equal(t, "multi-byte with code extensions", MultiByteWithExtensions.String())
	assert.Equal(t, "multi-byte without code extensions", MultiByteWithoutExtensions.String())
	assert.Equal(t, "non-standard", NonStandard.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "ISO_IR 100", IsoIR100.String())
}

// The registry initializes lazily; the first lookups may race.
func TestFindTermConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if d, _, err := FindTerm("ISO_IR 144"); err != nil || d.Term != IsoIR144 {
					t.Errorf("FindTerm: %v %v", d, err)
					return
				}
				MustFindTerm(Iso2022IR87)
				AllTerms()
			}
		}()
	}
	wg.Wait()
}

func BenchmarkFindTermCanonical(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, _, err := FindTerm("ISO_IR 100"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindTermAlias(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, _, err := FindTerm("ISO-8859-1"); err != nil {
			b.Fatal(err)
		}
	}
}
