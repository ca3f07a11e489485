package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	assert.Equal(t, "(0008,0005)", TagSpecificCharacterSet.String())
	assert.Equal(t, "(0010,0010)", TagPatientName.String())
	assert.Equal(t, "(7fe0,0010)", Tag{Group: 0x7FE0, Element: 0x0010}.String())
}

func TestParseTag(t *testing.T) {
	cases := []struct {
		in   string
		want Tag
	}{
		{"(0008,0005)", TagSpecificCharacterSet},
		{"0008,0005", TagSpecificCharacterSet},
		{"(7FE0,0010)", Tag{Group: 0x7FE0, Element: 0x0010}},
		{"(7fe0, 0010)", Tag{Group: 0x7FE0, Element: 0x0010}},
	}
	for _, tc := range cases {
		got, err := parseTag(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "0008", "(0008;0005)", "(zzzz,0010)", "(00080005)", "(10008,0005)"} {
		_, err := parseTag(in)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "invalid tag", in)
	}
}
