package formats

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

const charsetPrefixSize = 8

// DecodeCharsetPrefixed decodes an EXIF byte value whose first 8 bytes name
// its character set (UserComment style). ASCII keeps 7-bit bytes only, JIS is
// read as Shift-JIS, Unicode as UTF-16 (BOM honoured, little-endian
// otherwise), anything else as UTF-8. Invalid sequences are dropped; if a
// decoder fails outright the whole value is returned as hex.
func DecodeCharsetPrefixed(value []byte) string {
	s, err := decodeCharsetPrefixed(value)
	if err != nil {
		return hex.EncodeToString(value)
	}
	return s
}

func decodeCharsetPrefixed(value []byte) (string, error) {
	charset := head(value, charsetPrefixSize)
	var text []byte
	if len(value) > charsetPrefixSize {
		text = value[charsetPrefixSize:]
	}

	switch {
	case bytes.Contains(charset, []byte("ASCII")):
		return asciiOnly(text), nil
	case bytes.Contains(charset, []byte("JIS")):
		return decodeWith(japanese.ShiftJIS, text)
	case bytes.Contains(charset, []byte("UNICODE")), bytes.Contains(charset, []byte("Unicode")):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), text)
	}
	return lossyUTF8(text), nil
}

// decodeWith runs an x/text decoder and strips the replacement runes it
// emits for invalid input.
func decodeWith(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(bytes.ReplaceAll(out, []byte("\uFFFD"), nil)), nil
}
