package formats

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PayloadKind classifies an opaque extension payload by sniffing its first bytes.
type PayloadKind string

const (
	PayloadEXIF    PayloadKind = "exif"
	PayloadXMP     PayloadKind = "xmp"
	PayloadICC     PayloadKind = "icc"
	PayloadText    PayloadKind = "text"
	PayloadUnknown PayloadKind = "unknown"
)

// SniffPayload guesses what an application or unknown extension carries.
func SniffPayload(data []byte) PayloadKind {
	switch {
	case bytes.HasPrefix(data, []byte("Exif")),
		bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}),
		bytes.HasPrefix(data, []byte("II*\x00")),
		bytes.HasPrefix(data, []byte("MM\x00*")),
		bytes.Contains(head(data, 20), []byte("Exif\x00\x00")):
		return PayloadEXIF
	case bytes.Contains(head(data, 50), []byte("<?xpacket")),
		bytes.Contains(head(data, 50), []byte("<x:xmpmeta")):
		return PayloadXMP
	case bytes.Contains(head(data, 50), []byte("ICC_PROFILE")):
		return PayloadICC
	case len(data) > 3 && isPrintableASCII(data):
		return PayloadText
	}
	return PayloadUnknown
}

func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}

func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// lossyUTF8 decodes b as UTF-8, dropping invalid sequences.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.WriteRune(r)
		}
		b = b[size:]
	}
	return sb.String()
}

// asciiOnly keeps the 7-bit bytes of b.
func asciiOnly(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

var sizeUnits = []struct {
	limit float64
	label string
}{
	{1e12, "TB"},
	{1e9, "GB"},
	{1e6, "MB"},
	{1e3, "KB"},
}

// FormatSize renders a byte count with a decimal unit and the exact count,
// e.g. "1.2 KB (1200 bytes)".
func FormatSize(n uint64) string {
	f := float64(n)
	for _, u := range sizeUnits {
		if f >= u.limit {
			return fmt.Sprintf("%.1f %s (%d bytes)", f/u.limit, u.label, n)
		}
	}
	return fmt.Sprintf("%d bytes (%d bytes)", n, n)
}
