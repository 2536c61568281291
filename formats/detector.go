package formats

import "bytes"

// Format represents a container format recognised by Detect.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "JPEG"
	FormatPNG     Format = "PNG"
	FormatGIF     Format = "GIF"
	FormatBMP     Format = "BMP"
)

var (
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	gif87a        = []byte("GIF87a")
	gif89a        = []byte("GIF89a")
	bmpSignature  = []byte("BM")
)

// Detect identifies the container format by examining the magic bytes.
// It returns FormatUnknown if the format is not recognized.
func Detect(magicBytes []byte) Format {
	switch {
	// JPEG: FF D8 FF
	case bytes.HasPrefix(magicBytes, jpegSignature):
		return FormatJPEG
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	case bytes.HasPrefix(magicBytes, pngSignature):
		return FormatPNG
	// GIF: "GIF87a" or "GIF89a"
	case bytes.HasPrefix(magicBytes, gif87a), bytes.HasPrefix(magicBytes, gif89a):
		return FormatGIF
	// BMP: 42 4D (BM)
	case bytes.HasPrefix(magicBytes, bmpSignature):
		return FormatBMP
	}
	return FormatUnknown
}
