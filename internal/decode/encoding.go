package decode

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BOM prefixes.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any BOM,
// and returns UTF-8 bytes along with the detected encoding name.
// Text that is neither BOM-marked nor valid UTF-8 is read as Windows-1252,
// which covers the Latin-1 exports produced by older spreadsheet tools.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	switch {
	case len(data) == 0:
		return data, "utf-8", nil
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, err := transcode(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
		return out, "utf-16le", err
	case bytes.HasPrefix(data, bomUTF16BE):
		out, err := transcode(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
		return out, "utf-16be", err
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		out, err := transcode(charmap.Windows1252, data)
		return out, "windows-1252", err
	}
}

func transcode(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to transcode input: %w", err)
	}
	return out, nil
}
