package formats

import "fmt"

// ExtractOptions tunes Extract.
type ExtractOptions struct {
	// MaxGIFBlocks is passed to the GIF decoder as its block budget.
	MaxGIFBlocks int
}

// Extract dispatches to the appropriate format parser based on the format.
func Extract(format Format, data []byte) (*Report, error) {
	return ExtractWithOptions(format, data, ExtractOptions{})
}

// ExtractWithOptions is Extract with decoder limits. GIF and BMP decoders
// may return a partial report together with an error.
func ExtractWithOptions(format Format, data []byte, opts ExtractOptions) (*Report, error) {
	var (
		r   *Report
		err error
	)
	switch format {
	case FormatGIF:
		var g *GIF
		g, err = DecodeGIFWithOptions(data, GIFOptions{MaxBlocks: opts.MaxGIFBlocks})
		if g != nil {
			r = g.Report()
		}
	case FormatBMP:
		var b *BMP
		b, err = DecodeBMP(data)
		if b != nil {
			r = b.Report()
		}
	case FormatPNG:
		r, err = ExtractPNG(data)
	case FormatJPEG:
		r, err = ExtractJPEG(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if r != nil && err == nil {
		if mode, cerr := ColorMode(data); cerr == nil {
			r.Set("Color Mode", mode)
		}
	}
	return r, err
}
