package formats

import "fmt"

// Tier is one of the cumulative field groups of a BMP DIB header.
type Tier int

const (
	TierCore Tier = iota
	TierInfo
	TierMasks
	TierAlpha
	TierV4
	TierV5
)

// tierInfo lists, per tier, the declared header size that enables it and
// the number of bytes it occupies after the previous tier.
var tierInfo = [...]struct {
	name      string
	threshold uint32
	length    int
}{
	TierCore:  {"CORE", 12, 8},
	TierInfo:  {"INFO", 40, 36},
	TierMasks: {"masks", 52, 12},
	TierAlpha: {"alpha", 56, 4},
	TierV4:    {"V4", 108, 52},
	TierV5:    {"V5", 124, 16},
}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierInfo) {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierInfo[t].name
}

// Threshold returns the smallest declared header size that includes t.
func (t Tier) Threshold() uint32 {
	return tierInfo[t].threshold
}

const (
	bmpFileHeaderSize = 14
	maxDIBHeaderSize  = 4096
)

var headerVariants = map[uint32]string{
	12:  "BITMAPCOREHEADER",
	40:  "BITMAPINFOHEADER",
	52:  "BITMAPV2INFOHEADER",
	56:  "BITMAPV3INFOHEADER",
	64:  "OS22XBITMAPHEADER",
	108: "BITMAPV4HEADER",
	124: "BITMAPV5HEADER",
}

var compressionNames = map[uint32]string{
	0:  "BI_RGB (no compression)",
	1:  "BI_RLE8 (RLE 8-bit/pixel)",
	2:  "BI_RLE4 (RLE 4-bit/pixel)",
	3:  "BI_BITFIELDS (bit field or Huffman 1D compression)",
	4:  "BI_JPEG (JPEG image for printing devices)",
	5:  "BI_PNG (PNG image for printing devices)",
	6:  "BI_ALPHABITFIELDS (RGBA bit field masks)",
	11: "BI_CMYK (no compression)",
	12: "BI_CMYKRLE8 (RLE-8 compression)",
	13: "BI_CMYKRLE4 (RLE-4 compression)",
}

// Logical color space types (LCSCSTYPE).
const (
	LCSCalibratedRGB   uint32 = 0x00000000
	LCSsRGB            uint32 = 0x73524742 // 'sRGB'
	LCSWindows         uint32 = 0x57696E20 // 'Win '
	LCSProfileLinked   uint32 = 0x4C494E4B // 'LINK'
	LCSProfileEmbedded uint32 = 0x4D424544 // 'MBED'
)

var colorSpaceNames = map[uint32]string{
	LCSCalibratedRGB:   "Calibrated RGB",
	LCSsRGB:            "sRGB",
	LCSWindows:         "Windows Color Space",
	LCSProfileLinked:   "Linked Color Profile",
	LCSProfileEmbedded: "Embedded Color Profile",
}

// Writers disagree on the absolute colorimetric value: Windows defines 8,
// older tools emit 0.
var intentNames = map[uint32]string{
	0: "LCS_GM_ABS_COLORIMETRIC",
	1: "LCS_GM_BUSINESS",
	2: "LCS_GM_GRAPHICS",
	4: "LCS_GM_IMAGES",
	8: "LCS_GM_ABS_COLORIMETRIC",
}

// CompressionName maps a BMP compression code to a label.
func CompressionName(code uint32) string {
	if name, ok := compressionNames[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%d)", code)
}

// ColorSpaceName maps an LCSCSTYPE value to a label.
func ColorSpaceName(cs uint32) string {
	if name, ok := colorSpaceNames[cs]; ok {
		return name
	}
	return "Unknown Color Space Type"
}

// IntentName maps a V5 rendering intent to its constant name. Unknown values
// pass through as decimal.
func IntentName(intent uint32) string {
	if name, ok := intentNames[intent]; ok {
		return name
	}
	return fmt.Sprintf("%d", intent)
}
