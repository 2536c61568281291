package formats

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-andiamo/iccarus"
	"golang.org/x/text/encoding/charmap"
)

// BMP is the decoded file header and DIB header of a BMP file.
//
// Each tier pointer is nil when the declared header size does not reach that
// tier, or when decoding stopped before it.
type BMP struct {
	Signature  string
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32
	HeaderSize uint32

	Core  *CoreHeader
	Info  *InfoHeader
	Masks *ColorMasks
	Alpha *AlphaMask
	V4    *V4Header
	V5    *V5Header

	Warnings []string
}

// Variant names the DIB header structure selected by HeaderSize.
func (b *BMP) Variant() string {
	if name, ok := headerVariants[b.HeaderSize]; ok {
		return name
	}
	return fmt.Sprintf("nonstandard (%d bytes)", b.HeaderSize)
}

// CoreHeader is BITMAPCOREHEADER: 16-bit dimensions.
type CoreHeader struct {
	Width    uint16
	Height   uint16
	Planes   uint16
	BitCount uint16
}

// InfoHeader is the BITMAPINFOHEADER field group.
type InfoHeader struct {
	Width           int32
	Height          int32 // negative for top-down bitmaps
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      PaletteCount
	ColorsImportant PaletteCount
}

// TopDown reports whether rows are stored top to bottom.
func (h *InfoHeader) TopDown() bool { return h.Height < 0 }

// DPI converts the resolutions from pixels per meter.
func (h *InfoHeader) DPI() (x, y float64) {
	return math.Round(float64(h.XPelsPerMeter)*0.0254*100) / 100,
		math.Round(float64(h.YPelsPerMeter)*0.0254*100) / 100
}

// PaletteCount is a palette color count where zero means every color.
type PaletteCount uint32

// All reports whether the count means "all colors" rather than a number.
func (p PaletteCount) All() bool { return p == 0 }

func (p PaletteCount) String() string {
	if p.All() {
		return "all"
	}
	return fmt.Sprintf("%d", uint32(p))
}

// ColorMasks holds the RGB bit masks (BITMAPV2INFOHEADER and later).
type ColorMasks struct {
	Red, Green, Blue uint32
}

// AlphaMask holds the alpha bit mask (BITMAPV3INFOHEADER and later).
type AlphaMask struct {
	Mask uint32
}

// CIEXYZ is one color endpoint in FXPT2DOT30 fixed point.
type CIEXYZ struct {
	X, Y, Z int32
}

// Float returns the endpoint coordinates as floats.
func (c CIEXYZ) Float() [3]float64 {
	return [3]float64{fxpt2dot30(c.X), fxpt2dot30(c.Y), fxpt2dot30(c.Z)}
}

func fxpt2dot30(v int32) float64 { return float64(v) / (1 << 30) }

// Gamma is a 16.16 fixed-point gamma value. Zero means no correction, which
// is distinct from the field being absent (a nil *V4Header).
type Gamma uint32

func (g Gamma) NoCorrection() bool { return g == 0 }

func (g Gamma) Float() float64 { return float64(g) / (1 << 16) }

func (g Gamma) String() string {
	if g.NoCorrection() {
		return "No correction"
	}
	return fmt.Sprintf("%.4f", g.Float())
}

// V4Header is the BITMAPV4HEADER color space field group.
type V4Header struct {
	ColorSpaceType uint32
	Endpoints      [3]CIEXYZ // red, green, blue
	GammaRed       Gamma
	GammaGreen     Gamma
	GammaBlue      Gamma
}

// ProfileDescriptor locates an ICC profile. Offset is measured from the
// start of the DIB header.
type ProfileDescriptor struct {
	Offset uint32
	Size   uint32
}

// Embedded reports whether a profile is present. False means no profile and
// sRGB is assumed.
func (p ProfileDescriptor) Embedded() bool { return p.Size != 0 }

// FileOffset returns the absolute position of the profile in the file.
func (p ProfileDescriptor) FileOffset() uint64 {
	return bmpFileHeaderSize + uint64(p.Offset)
}

// V5Header is the BITMAPV5HEADER field group.
type V5Header struct {
	Intent   uint32
	Profile  ProfileDescriptor
	Reserved uint32

	// ICC is the parsed header of a PROFILE_EMBEDDED profile.
	ICC *iccarus.Header
	// LinkedProfile is the file name of a PROFILE_LINKED profile.
	LinkedProfile string
}

// DecodeBMP decodes the file header and the tiers of the DIB header that its
// declared size selects.
//
// A bad file header returns a nil *BMP and a *ParseError. An unsupported
// header size returns the file header fields with ErrUnsupportedHeaderVariant.
// A tier that runs past the buffer returns the earlier tiers with a
// *TierError.
func DecodeBMP(data []byte) (*BMP, error) {
	d := &bmpDecoder{data: data, c: NewCursor(data), b: &BMP{}}
	return d.decode()
}

type bmpDecoder struct {
	data []byte
	c    *Cursor
	b    *BMP
}

func (d *bmpDecoder) decode() (*BMP, error) {
	if err := d.readFileHeader(); err != nil {
		return nil, &ParseError{Format: FormatBMP, Stage: "file header", Err: err}
	}

	size, err := d.c.ReadUint32LE()
	if err != nil {
		return d.b, &ParseError{Format: FormatBMP, Stage: "DIB header size", Err: err}
	}
	d.b.HeaderSize = size
	switch {
	case size < 12, size > 12 && size < 40, size > maxDIBHeaderSize:
		return d.b, fmt.Errorf("%w: DIB header size %d", ErrUnsupportedHeaderVariant, size)
	}
	if _, ok := headerVariants[size]; !ok {
		d.warnf("nonstandard DIB header size %d; decoded up to the last tier it reaches", size)
	}

	for t := TierCore; t <= TierV5; t++ {
		if !d.includes(t) {
			continue
		}
		if err := d.c.check(tierInfo[t].length); err != nil {
			return d.b, &TierError{Tier: t, Err: err}
		}
		d.readTier(t)
	}
	d.resolveProfile()
	return d.b, nil
}

// includes applies the tier thresholds. CORE is exclusive to a 12-byte
// header; every later tier is cumulative.
func (d *bmpDecoder) includes(t Tier) bool {
	if t == TierCore {
		return d.b.HeaderSize == t.Threshold()
	}
	return d.b.HeaderSize >= t.Threshold()
}

func (d *bmpDecoder) warnf(format string, args ...any) {
	d.b.Warnings = append(d.b.Warnings, fmt.Sprintf(format, args...))
}

func (d *bmpDecoder) readFileHeader() error {
	h, err := d.c.ReadBytes(bmpFileHeaderSize)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(h, bmpSignature) {
		return fmt.Errorf("%w: %q", ErrInvalidSignature, h[:2])
	}
	fc := NewCursor(h[2:])
	d.b.Signature = string(h[:2])
	d.b.FileSize, _ = fc.ReadUint32LE()
	d.b.Reserved, _ = fc.ReadUint32LE()
	d.b.DataOffset, _ = fc.ReadUint32LE()
	return nil
}

// readTier decodes one tier. The caller has already checked that the tier's
// bytes are inside the buffer.
func (d *bmpDecoder) readTier(t Tier) {
	c := d.c
	switch t {
	case TierCore:
		h := &CoreHeader{}
		h.Width, _ = c.ReadUint16LE()
		h.Height, _ = c.ReadUint16LE()
		h.Planes, _ = c.ReadUint16LE()
		h.BitCount, _ = c.ReadUint16LE()
		d.b.Core = h
	case TierInfo:
		h := &InfoHeader{}
		h.Width, _ = c.ReadInt32LE()
		h.Height, _ = c.ReadInt32LE()
		h.Planes, _ = c.ReadUint16LE()
		h.BitCount, _ = c.ReadUint16LE()
		h.Compression, _ = c.ReadUint32LE()
		h.ImageSize, _ = c.ReadUint32LE()
		h.XPelsPerMeter, _ = c.ReadInt32LE()
		h.YPelsPerMeter, _ = c.ReadInt32LE()
		used, _ := c.ReadUint32LE()
		important, _ := c.ReadUint32LE()
		h.ColorsUsed, h.ColorsImportant = PaletteCount(used), PaletteCount(important)
		d.b.Info = h
	case TierMasks:
		m := &ColorMasks{}
		m.Red, _ = c.ReadUint32LE()
		m.Green, _ = c.ReadUint32LE()
		m.Blue, _ = c.ReadUint32LE()
		d.b.Masks = m
	case TierAlpha:
		a := &AlphaMask{}
		a.Mask, _ = c.ReadUint32LE()
		d.b.Alpha = a
	case TierV4:
		h := &V4Header{}
		h.ColorSpaceType, _ = c.ReadUint32LE()
		for i := range h.Endpoints {
			h.Endpoints[i].X, _ = c.ReadInt32LE()
			h.Endpoints[i].Y, _ = c.ReadInt32LE()
			h.Endpoints[i].Z, _ = c.ReadInt32LE()
		}
		var g uint32
		g, _ = c.ReadUint32LE()
		h.GammaRed = Gamma(g)
		g, _ = c.ReadUint32LE()
		h.GammaGreen = Gamma(g)
		g, _ = c.ReadUint32LE()
		h.GammaBlue = Gamma(g)
		d.b.V4 = h
	case TierV5:
		h := &V5Header{}
		h.Intent, _ = c.ReadUint32LE()
		h.Profile.Offset, _ = c.ReadUint32LE()
		h.Profile.Size, _ = c.ReadUint32LE()
		h.Reserved, _ = c.ReadUint32LE()
		d.b.V5 = h
	}
}

// resolveProfile reads the profile data a V5 header points at. Problems are
// recorded as warnings.
func (d *bmpDecoder) resolveProfile() {
	if d.b.V4 == nil || d.b.V5 == nil || !d.b.V5.Profile.Embedded() {
		return
	}
	p := d.b.V5.Profile
	start := p.FileOffset()
	end := start + uint64(p.Size)
	if end > uint64(len(d.data)) {
		d.warnf("ICC profile at offset %d (%d bytes) lies outside the file", start, p.Size)
		return
	}
	raw := d.data[start:end]

	switch d.b.V4.ColorSpaceType {
	case LCSProfileEmbedded:
		h, err := parseICCHeader(raw)
		if err != nil {
			d.warnf("embedded ICC profile: %v", err)
			return
		}
		d.b.V5.ICC = h
	case LCSProfileLinked:
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		name, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			d.warnf("linked profile name: %v", fmt.Errorf("%w: %v", ErrDecode, err))
			return
		}
		d.b.V5.LinkedProfile = string(name)
	}
}
