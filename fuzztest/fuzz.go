package fuzz

import (
	"bytes"

	dicom "github.com/StingX84/dicomlib-playground"
)

// Fuzz feeds the whole pipeline: the first input line selects the
// character set, the rest is one element value. Lenient decoding must
// never fail, and a value that decodes strictly must survive the
// encode/decode round trip unchanged.
func Fuzz(data []byte) int {
	sep := bytes.IndexByte(data, '\n')
	if sep < 0 {
		return 0
	}
	cfg := dicom.DefaultConfig()
	plan, _ := dicom.ParseSpecificCharacterSet(string(data[:sep]), cfg)
	value := data[sep+1:]
	ctx := dicom.ContextForVR(dicom.PN)

	codec := dicom.NewCodec(plan, cfg)
	codec.DecodeLenient(value, ctx)

	strict := cfg
	strict.StrictEscapes = true
	sc := dicom.NewCodec(plan, strict)
	text, err := sc.Decode(value, ctx)
	if err != nil {
		return 1
	}
	if plan != nil && plan.Len() == 0 {
		// Label-resolved encodings give no round-trip guarantee.
		return 1
	}
	encoded, err := sc.Encode(text, ctx)
	if err != nil {
		panic("strictly decoded text failed to encode: " + err.Error())
	}
	back, err := sc.Decode(encoded, ctx)
	if err != nil {
		panic("re-encoded text failed to decode: " + err.Error())
	}
	if back != text {
		panic("round-trip mismatch")
	}
	return 1
}
