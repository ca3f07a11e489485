// Character set handling for DICOM data sets: validation of Specific
// Character Set (0008,0005) values into encoding plans, and conversion
// of element text between encoded bytes and strings, including the
// ISO 2022 code extension technique. Example:
//
//   package main
//
//   import (
// 	"fmt"
// 	dicom "github.com/StingX84/dicomlib-playground"
//   )
//
//   func main() {
//     cfg := dicom.DefaultConfig()
//     plan, _ := dicom.ParseSpecificCharacterSet(`ISO 2022 IR 6\ISO 2022 IR 87`, cfg)
//     codec := dicom.NewCodec(plan, cfg)
//     name, err := codec.Decode(
//         []byte("Yamada^Tarou=\x1b$B;3ED\x1b(B^\x1b$BB@O:\x1b(B"),
//         dicom.ContextForVR(dicom.PN))
//     if err != nil {
//         panic(err)
//     }
//     fmt.Println(name) // Yamada^Tarou=山田^太郎
//   }
package dicom

// DecodeText validates a raw Specific Character Set value, builds the
// matching codec and decodes one element value in a single call.
// Validation diagnostics are traced, not returned; use
// ParseSpecificCharacterSet and NewCodec directly to inspect them.
func DecodeText(specificCharacterSet string, b []byte, vr VR, cfg Config) (string, error) {
	plan, _ := ParseSpecificCharacterSet(specificCharacterSet, cfg)
	return NewCodec(plan, cfg).Decode(b, ContextForVR(vr))
}

// EncodeText is the write-side counterpart of DecodeText.
func EncodeText(specificCharacterSet, s string, vr VR, cfg Config) ([]byte, error) {
	plan, _ := ParseSpecificCharacterSet(specificCharacterSet, cfg)
	return NewCodec(plan, cfg).Encode(s, ContextForVR(vr))
}

func doassert(x bool) {
	if !x {
		panic("doassert")
	}
}
