package formats

import "fmt"

const (
	blockImage     = 0x2C
	blockExtension = 0x21
	blockTrailer   = 0x3B

	labelGraphicControl = 0xF9
	labelComment        = 0xFE
	labelApplication    = 0xFF
	labelPlainText      = 0x01

	gifHeaderSize       = 6
	plainTextHeaderSize = 12

	// DefaultMaxGIFBlocks is the block budget used when GIFOptions.MaxBlocks is zero.
	DefaultMaxGIFBlocks = 1 << 20
)

// GIFOptions tunes DecodeGIFWithOptions.
type GIFOptions struct {
	// MaxBlocks caps the number of top-level blocks dispatched in the block
	// stream. Zero or negative selects DefaultMaxGIFBlocks.
	MaxBlocks int
}

// DecodeGIF walks a GIF87a/GIF89a buffer and returns its header fields and
// block records.
//
// Header and logical screen descriptor failures return a nil *GIF and a
// *ParseError. Once those are decoded, any later failure returns the partial
// *GIF (State == StateAborted) together with the error.
func DecodeGIF(data []byte) (*GIF, error) {
	return DecodeGIFWithOptions(data, GIFOptions{})
}

// DecodeGIFWithOptions is DecodeGIF with a caller-chosen block budget.
func DecodeGIFWithOptions(data []byte, opts GIFOptions) (*GIF, error) {
	return newGIFDecoder(data, opts).decode()
}

func newGIFDecoder(data []byte, opts GIFOptions) *gifDecoder {
	if opts.MaxBlocks <= 0 {
		opts.MaxBlocks = DefaultMaxGIFBlocks
	}
	return &gifDecoder{c: NewCursor(data), opts: opts, g: &GIF{}}
}

// gifDecoder owns the cursor and the pending Graphic Control values for a
// single parse.
type gifDecoder struct {
	c       *Cursor
	opts    GIFOptions
	g       *GIF
	pending *GraphicControl
	stray   int
}

func (d *gifDecoder) decode() (*GIF, error) {
	if err := d.readHeader(); err != nil {
		return nil, &ParseError{Format: FormatGIF, Stage: "header", Err: err}
	}
	if err := d.readScreenDescriptor(); err != nil {
		return nil, &ParseError{Format: FormatGIF, Stage: "logical screen descriptor", Err: err}
	}

	err := d.walk()
	if d.stray > 0 {
		d.warnf("skipped %d stray bytes between blocks", d.stray)
	}
	if d.pending != nil {
		d.warnf("graphic control extension not followed by a graphic block")
	}
	if err != nil {
		d.g.State = StateAborted
		d.warnf("%v", err)
		return d.g, err
	}
	d.g.State = StateTerminated
	return d.g, nil
}

func (d *gifDecoder) warnf(format string, args ...any) {
	d.g.Warnings = append(d.g.Warnings, fmt.Sprintf(format, args...))
}

func (d *gifDecoder) readHeader() error {
	b, err := d.c.ReadBytes(gifHeaderSize)
	if err != nil {
		return err
	}
	sig, version := string(b[:3]), string(b[3:])
	if sig != "GIF" || (version != "87a" && version != "89a") {
		return fmt.Errorf("%w: %q", ErrInvalidSignature, b)
	}
	d.g.Signature = sig
	d.g.Version = version
	return nil
}

func (d *gifDecoder) readScreenDescriptor() error {
	// 7 bytes: width, height, packed, background index, aspect ratio
	if err := d.c.check(7); err != nil {
		return err
	}
	s := &d.g.Screen
	s.Width, _ = d.c.ReadUint16LE()
	s.Height, _ = d.c.ReadUint16LE()
	packed, _ := d.c.ReadUint8()
	s.BackgroundIndex, _ = d.c.ReadUint8()
	s.AspectRatioByte, _ = d.c.ReadUint8()

	s.GlobalColorTable = packed&0x80 != 0
	s.ColorResolution = int((packed>>4)&0x07) + 1
	s.Sorted = packed&0x08 != 0
	s.GlobalColorTableSize = colorTableEntries(packed)
	return nil
}

// colorTableEntries decodes the low three bits of a packed byte.
func colorTableEntries(packed byte) int {
	return 1 << (int(packed&0x07) + 1)
}

// walk runs the block-stream state machine until the trailer.
func (d *gifDecoder) walk() error {
	if d.g.Screen.GlobalColorTable {
		if err := d.c.Advance(3 * d.g.Screen.GlobalColorTableSize); err != nil {
			return fmt.Errorf("global color table: %w", err)
		}
	}

	for blocks := 0; ; blocks++ {
		if blocks >= d.opts.MaxBlocks {
			return fmt.Errorf("%w: %d blocks read, stopped at offset %d",
				ErrBlockBudget, blocks, d.c.Offset())
		}
		start := d.c.Offset()
		b, err := d.c.ReadUint8()
		if err != nil {
			return fmt.Errorf("missing trailer: %w", err)
		}
		switch b {
		case blockTrailer:
			return nil
		case blockImage:
			if err := d.readImage(); err != nil {
				return fmt.Errorf("image descriptor at offset %d: %w", start, err)
			}
		case blockExtension:
			if err := d.readExtension(); err != nil {
				return fmt.Errorf("extension at offset %d: %w", start, err)
			}
		default:
			d.stray++
		}
	}
}

// readImage records an Image Descriptor and skips its color table and
// LZW data without decompressing it. The record is kept even when the data
// that follows is truncated.
func (d *gifDecoder) readImage() error {
	if err := d.c.check(9); err != nil {
		return err
	}
	var img Image
	img.Left, _ = d.c.ReadUint16LE()
	img.Top, _ = d.c.ReadUint16LE()
	img.Width, _ = d.c.ReadUint16LE()
	img.Height, _ = d.c.ReadUint16LE()
	packed, _ := d.c.ReadUint8()

	img.LocalColorTable = packed&0x80 != 0
	img.Interlaced = packed&0x40 != 0
	img.Sorted = packed&0x20 != 0
	if img.LocalColorTable {
		img.LocalColorTableSize = colorTableEntries(packed)
	}
	img.Control = d.takePending()
	d.g.Images = append(d.g.Images, img)

	if img.LocalColorTable {
		if err := d.c.Advance(3 * img.LocalColorTableSize); err != nil {
			return fmt.Errorf("local color table: %w", err)
		}
	}
	// LZW minimum code size
	if err := d.c.Advance(1); err != nil {
		return err
	}
	if _, _, err := readSubBlocks(d.c, false); err != nil {
		return fmt.Errorf("image data: %w", err)
	}
	return nil
}

func (d *gifDecoder) takePending() *GraphicControl {
	gc := d.pending
	d.pending = nil
	return gc
}

func (d *gifDecoder) readExtension() error {
	label, err := d.c.ReadUint8()
	if err != nil {
		return err
	}
	switch label {
	case labelGraphicControl:
		return d.readGraphicControl()
	case labelComment:
		data, _, err := readSubBlocks(d.c, true)
		if err != nil {
			return fmt.Errorf("comment: %w", err)
		}
		d.g.Extensions = append(d.g.Extensions, Comment{Text: lossyUTF8(data)})
		return nil
	case labelApplication:
		return d.readApplication()
	case labelPlainText:
		return d.readPlainText()
	default:
		data, n, err := readSubBlocks(d.c, true)
		if err != nil {
			return fmt.Errorf("unknown extension 0x%02X: %w", label, err)
		}
		d.g.Extensions = append(d.g.Extensions, UnknownExtension{
			ID:      label,
			Skipped: n,
			Kind:    SniffPayload(data),
		})
		return nil
	}
}

func (d *gifDecoder) readGraphicControl() error {
	size, err := d.c.ReadUint8()
	if err != nil {
		return fmt.Errorf("graphic control: %w", err)
	}
	if size != 4 {
		d.warnf("graphic control extension at offset %d has block size %d, skipped", d.c.Offset()-3, size)
		if err := d.skipRest(int(size)); err != nil {
			return fmt.Errorf("graphic control: %w", err)
		}
		return nil
	}

	b, err := d.c.ReadBytes(4)
	if err != nil {
		return fmt.Errorf("graphic control: %w", err)
	}
	gc := GraphicControl{
		DisposalMethod:    (b[0] >> 2) & 0x07,
		UserInput:         b[0]&0x02 != 0,
		HasTransparency:   b[0]&0x01 != 0,
		DelayCentiseconds: uint16(b[1]) | uint16(b[2])<<8,
		TransparentIndex:  b[3],
	}
	if _, n, err := readSubBlocks(d.c, false); err != nil {
		return fmt.Errorf("graphic control: %w", err)
	} else if n > 0 {
		d.warnf("graphic control extension carries %d unexpected bytes", n)
	}
	d.g.Extensions = append(d.g.Extensions, gc)
	d.g.Images = append(d.g.Images, Image{Control: &gc, FromControl: true})
	d.pending = &gc
	return nil
}

func (d *gifDecoder) readApplication() error {
	size, err := d.c.ReadUint8()
	if err != nil {
		return fmt.Errorf("application: %w", err)
	}
	id, err := d.c.ReadBytes(int(size))
	if err != nil {
		return fmt.Errorf("application identifier: %w", err)
	}
	if size != 11 {
		d.warnf("application extension identifier is %d bytes, want 11", size)
	}
	payload, _, err := readSubBlocks(d.c, true)
	if err != nil {
		return fmt.Errorf("application %q: %w", id, err)
	}

	app := Application{
		Identifier: lossyUTF8(id),
		Payload:    payload,
		Kind:       SniffPayload(payload),
	}
	if app.Identifier == "ICCRGBG1012" {
		app.Kind = PayloadICC
		if h, err := parseICCHeader(payload); err != nil {
			d.warnf("ICC profile in application extension: %v", err)
		} else {
			app.ICC = h
		}
	}
	d.g.Extensions = append(d.g.Extensions, app)
	return nil
}

func (d *gifDecoder) readPlainText() error {
	size, err := d.c.ReadUint8()
	if err != nil {
		return fmt.Errorf("plain text: %w", err)
	}
	if size < plainTextHeaderSize {
		d.warnf("plain text extension header is %d bytes, want %d; skipped", size, plainTextHeaderSize)
		if err := d.skipRest(int(size)); err != nil {
			return fmt.Errorf("plain text: %w", err)
		}
		return nil
	}
	if err := d.c.check(int(size)); err != nil {
		return fmt.Errorf("plain text header: %w", err)
	}

	var pt PlainText
	pt.Left, _ = d.c.ReadUint16LE()
	pt.Top, _ = d.c.ReadUint16LE()
	pt.Width, _ = d.c.ReadUint16LE()
	pt.Height, _ = d.c.ReadUint16LE()
	pt.CellWidth, _ = d.c.ReadUint8()
	pt.CellHeight, _ = d.c.ReadUint8()
	pt.ForegroundIndex, _ = d.c.ReadUint8()
	pt.BackgroundIndex, _ = d.c.ReadUint8()
	_ = d.c.Advance(int(size) - plainTextHeaderSize)

	text, _, err := readSubBlocks(d.c, true)
	if err != nil {
		return fmt.Errorf("plain text data: %w", err)
	}
	pt.Text = lossyUTF8(text)
	pt.Control = d.takePending()
	d.g.Extensions = append(d.g.Extensions, pt)
	return nil
}

// skipRest discards a fixed block of n bytes and the rest of its chain.
func (d *gifDecoder) skipRest(n int) error {
	if err := d.c.Advance(n); err != nil {
		return err
	}
	_, _, err := readSubBlocks(d.c, false)
	return err
}

// readSubBlocks consumes a sub-block chain up to and including its
// zero-length terminator. It returns the number of payload bytes and, when
// collect is set, a fresh copy of them.
func readSubBlocks(c *Cursor, collect bool) ([]byte, int, error) {
	var (
		data []byte
		n    int
	)
	for {
		size, err := c.ReadUint8()
		if err != nil {
			return data, n, err
		}
		if size == 0 {
			return data, n, nil
		}
		b, err := c.ReadBytes(int(size))
		if err != nil {
			return data, n, err
		}
		n += int(size)
		if collect {
			data = append(data, b...)
		}
	}
}
