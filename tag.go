package dicom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tag is a <group, element> tuple that identifies an element type in a
// DICOM data set.
type Tag struct {
	Group   uint16
	Element uint16
}

// Tags the character set layer cares about.
var (
	// TagSpecificCharacterSet (0008,0005) declares the character
	// repertoire of a data set, PS3.3 C.12.1.1.2.
	TagSpecificCharacterSet = Tag{0x0008, 0x0005}
	TagPatientName          = Tag{0x0010, 0x0010}
)

// String returns a string of form "(0008,0005)", where 0x0008 is
// t.Group and 0x0005 is t.Element.
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// parseTag splits a "(0008,0005)" or "0008,0005" form into a Tag.
func parseTag(tag string) (Tag, error) {
	parts := strings.Split(strings.Trim(tag, "()"), ",")
	if len(parts) != 2 {
		return Tag{}, errors.Errorf("invalid tag %q", tag)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	if err != nil {
		return Tag{}, errors.Wrapf(err, "invalid tag %q", tag)
	}
	elem, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err != nil {
		return Tag{}, errors.Wrapf(err, "invalid tag %q", tag)
	}
	return Tag{Group: uint16(group), Element: uint16(elem)}, nil
}
