package formats

import "fmt"

// Report flattens the decoded BMP into a Report. Keys for absent tiers are
// left out.
func (b *BMP) Report() *Report {
	r := NewReport()
	r.Set("Signature", b.Signature)
	r.Set("FileSize", FormatSize(uint64(b.FileSize)))
	r.Set("DataOffset", b.DataOffset)
	if b.HeaderSize != 0 {
		r.Set("HeaderSize", b.HeaderSize)
		r.Set("Variant", b.Variant())
	}

	if h := b.Core; h != nil {
		r.Set("CoreHeader", b.HeaderSize)
		r.Set("Width", h.Width)
		r.Set("Height", h.Height)
		r.Set("Planes", h.Planes)
		r.Set("BitCount", h.BitCount)
	}
	if h := b.Info; h != nil {
		r.Set("InfoHeader", b.HeaderSize)
		r.Set("Width", h.Width)
		r.Set("Height", h.Height)
		r.Set("TopDown", h.TopDown())
		r.Set("Planes", h.Planes)
		r.Set("BitCount", h.BitCount)
		r.Set("Compression", CompressionName(h.Compression))
		r.Set("ImageSize", h.ImageSize)
		r.Set("ResolutionX", h.XPelsPerMeter)
		r.Set("ResolutionY", h.YPelsPerMeter)
		dx, dy := h.DPI()
		r.Set("DPI", fmt.Sprintf("%.2f x %.2f", dx, dy))
		r.Set("ColorsUsed", paletteValue(h.ColorsUsed))
		r.Set("ColorsImportant", paletteValue(h.ColorsImportant))
	}
	if m := b.Masks; m != nil {
		r.Set("Masks", fmt.Sprintf("RedMask: 0x%08X, GreenMask: 0x%08X, BlueMask: 0x%08X",
			m.Red, m.Green, m.Blue))
	}
	if a := b.Alpha; a != nil {
		r.Set("AlphaMask", fmt.Sprintf("0x%08X", a.Mask))
	}
	if h := b.V4; h != nil {
		r.Set("ColorSpace", fmt.Sprintf("Color Space Type: 0x%08X (%s)",
			h.ColorSpaceType, ColorSpaceName(h.ColorSpaceType)))
		endpoints := make([]any, len(h.Endpoints))
		raw := make([]any, len(h.Endpoints))
		for i, e := range h.Endpoints {
			f := e.Float()
			endpoints[i] = fmt.Sprintf("X:%.6f, Y:%.6f, Z:%.6f", f[0], f[1], f[2])
			raw[i] = fmt.Sprintf("X:%d, Y:%d, Z:%d", e.X, e.Y, e.Z)
		}
		r.Set("Endpoints", endpoints)
		r.Set("EndpointsRaw", raw)
		r.Set("GammaRed", h.GammaRed.String())
		r.Set("GammaGreen", h.GammaGreen.String())
		r.Set("GammaBlue", h.GammaBlue.String())
		// 16.16 fixed point
		r.Set("GammaRaw", []any{uint32(h.GammaRed), uint32(h.GammaGreen), uint32(h.GammaBlue)})
	}
	if h := b.V5; h != nil {
		r.Set("RenderingIntent", IntentName(h.Intent))
		if h.Profile.Embedded() {
			r.Set("ICCProfile", fmt.Sprintf("ICC Profile embedded at offset %d, size %d bytes",
				h.Profile.FileOffset(), h.Profile.Size))
		} else {
			r.Set("ICCProfile", "ICC Profile: No profile embedded; standard sRGB is used.")
		}
		if h.ICC != nil {
			r.Set("ICC Profile Header", iccReport(h.ICC))
		}
		if h.LinkedProfile != "" {
			r.Set("LinkedProfile", h.LinkedProfile)
		}
	}

	setWarnings(r, b.Warnings)
	return r
}

func paletteValue(p PaletteCount) any {
	if p.All() {
		return "all"
	}
	return uint32(p)
}
