package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gifBuilder assembles GIF fixtures block by block.
type gifBuilder struct {
	bytes.Buffer
}

func newGIF(version string, width, height uint16, packed, aspect byte) *gifBuilder {
	b := &gifBuilder{}
	b.WriteString("GIF" + version)
	binary.Write(b, binary.LittleEndian, width)
	binary.Write(b, binary.LittleEndian, height)
	b.WriteByte(packed)
	b.WriteByte(0) // background
	b.WriteByte(aspect)
	if packed&0x80 != 0 {
		b.Write(make([]byte, 3*colorTableEntries(packed)))
	}
	return b
}

func (b *gifBuilder) subBlocks(chunks ...[]byte) *gifBuilder {
	for _, c := range chunks {
		b.WriteByte(byte(len(c)))
		b.Write(c)
	}
	b.WriteByte(0)
	return b
}

func (b *gifBuilder) graphicControl(packed byte, delay uint16, transparent byte) *gifBuilder {
	b.Write([]byte{0x21, 0xF9, 0x04, packed, byte(delay), byte(delay >> 8), transparent, 0x00})
	return b
}

func (b *gifBuilder) comment(parts ...string) *gifBuilder {
	b.Write([]byte{0x21, 0xFE})
	chunks := make([][]byte, len(parts))
	for i, p := range parts {
		chunks[i] = []byte(p)
	}
	return b.subBlocks(chunks...)
}

func (b *gifBuilder) application(id string, payload ...[]byte) *gifBuilder {
	b.Write([]byte{0x21, 0xFF, byte(len(id))})
	b.WriteString(id)
	return b.subBlocks(payload...)
}

func (b *gifBuilder) plainText(text string) *gifBuilder {
	b.Write([]byte{0x21, 0x01, 0x0C})
	b.Write([]byte{
		0x01, 0x00, 0x02, 0x00, // left, top
		0x40, 0x00, 0x10, 0x00, // width, height
		0x08, 0x10, // cell width, height
		0x01, 0x00, // foreground, background
	})
	return b.subBlocks([]byte(text))
}

func (b *gifBuilder) image(width, height uint16, packed byte) *gifBuilder {
	b.WriteByte(0x2C)
	binary.Write(b, binary.LittleEndian, [4]uint16{0, 0, width, height})
	b.WriteByte(packed)
	if packed&0x80 != 0 {
		b.Write(make([]byte, 3*colorTableEntries(packed)))
	}
	b.WriteByte(0x02) // LZW minimum code size
	return b.subBlocks([]byte{0x44, 0x01})
}

func (b *gifBuilder) trailer() []byte {
	b.WriteByte(0x3B)
	return b.Bytes()
}

func TestDecodeGIFMinimal(t *testing.T) {
	for _, version := range []string{"87a", "89a"} {
		t.Run(version, func(t *testing.T) {
			data := newGIF(version, 320, 200, 0x00, 0).trailer()
			require.Len(t, data, 14)

			g, err := DecodeGIF(data)
			require.NoError(t, err)
			assert.Equal(t, "GIF", g.Signature)
			assert.Equal(t, version, g.Version)
			assert.Equal(t, uint16(320), g.Screen.Width)
			assert.Equal(t, uint16(200), g.Screen.Height)
			assert.Empty(t, g.Extensions)
			assert.Empty(t, g.Images)
			assert.Empty(t, g.Warnings)
			assert.Equal(t, StateTerminated, g.State)
		})
	}
}

func TestDecodeGIFScreenDescriptor(t *testing.T) {
	// GCT present, color resolution 8, sorted, 8 entries
	data := newGIF("89a", 16, 16, 0xFA, 49).trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	s := g.Screen
	assert.True(t, s.GlobalColorTable)
	assert.Equal(t, 8, s.ColorResolution)
	assert.True(t, s.Sorted)
	assert.Equal(t, 8, s.GlobalColorTableSize)

	ratio, ok := s.AspectRatio()
	assert.True(t, ok)
	assert.Equal(t, 1.0, ratio)

	_, ok = ScreenDescriptor{}.AspectRatio()
	assert.False(t, ok)
}

func TestDecodeGIFComment(t *testing.T) {
	data := newGIF("89a", 1, 1, 0, 0).comment("Hello", " World").trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, g.Extensions, 1)
	assert.Equal(t, Comment{Text: "Hello World"}, g.Extensions[0])
}

func TestDecodeGIFCommentLossyText(t *testing.T) {
	// "é" split across sub-blocks, then an invalid byte
	data := newGIF("89a", 1, 1, 0, 0).comment("caf\xC3", "\xA9", "\xFF!").trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	comments := extensionsOf[Comment](g)
	require.Len(t, comments, 1)
	assert.Equal(t, "café!", comments[0].Text)
}

func TestDecodeGIFApplication(t *testing.T) {
	t.Run("netscape payload", func(t *testing.T) {
		data := newGIF("89a", 1, 1, 0, 0).
			application("NETSCAPE2.0", []byte{0x03, 0x01, 0x00, 0x00}).
			trailer()

		g, err := DecodeGIF(data)
		require.NoError(t, err)
		apps := extensionsOf[Application](g)
		require.Len(t, apps, 1)
		assert.Equal(t, "NETSCAPE2.0", apps[0].Identifier)
		assert.Len(t, apps[0].Payload, 4)
	})

	t.Run("loop count", func(t *testing.T) {
		tests := []struct {
			id      string
			payload []byte
			loops   int
			ok      bool
		}{
			{"NETSCAPE2.0", []byte{0x01, 0x00, 0x00}, 0, true},
			{"NETSCAPE2.0", []byte{0x01, 0x05, 0x01}, 261, true},
			{"ANIMEXTS1.0", []byte{0x01, 0x02, 0x00}, 2, true},
			{"NETSCAPE2.0", []byte{0x02, 0x05, 0x00}, 0, false},
			{"NETSCAPE2.0", []byte{0x01}, 0, false},
			{"XMP DataXMP", []byte{0x01, 0x05, 0x00}, 0, false},
		}
		for _, tt := range tests {
			loops, ok := Application{Identifier: tt.id, Payload: tt.payload}.LoopCount()
			assert.Equal(t, tt.ok, ok, "%s %v", tt.id, tt.payload)
			assert.Equal(t, tt.loops, loops, "%s %v", tt.id, tt.payload)
		}
	})

	t.Run("payload is copied", func(t *testing.T) {
		data := newGIF("89a", 1, 1, 0, 0).
			application("NETSCAPE2.0", []byte{0x01, 0x00, 0x00}).
			trailer()
		g, err := DecodeGIF(data)
		require.NoError(t, err)

		for i := range data {
			data[i] = 0xEE
		}
		app := g.Extensions[0].(Application)
		assert.Equal(t, []byte{0x01, 0x00, 0x00}, app.Payload)
	})

	t.Run("xmp kind", func(t *testing.T) {
		data := newGIF("89a", 1, 1, 0, 0).
			application("XMP DataXMP", []byte(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>`)).
			trailer()
		g, err := DecodeGIF(data)
		require.NoError(t, err)
		assert.Equal(t, PayloadXMP, g.Extensions[0].(Application).Kind)
	})
}

func TestDecodeGIFICCApplication(t *testing.T) {
	t.Run("valid header", func(t *testing.T) {
		data := newGIF("89a", 1, 1, 0, 0).
			application("ICCRGBG1012", iccHeaderBytes()).
			trailer()
		g, err := DecodeGIF(data)
		require.NoError(t, err)
		app := g.Extensions[0].(Application)
		assert.Equal(t, PayloadICC, app.Kind)
		require.NotNil(t, app.ICC)
		assert.Equal(t, "RGB", app.ICC.ColorSpace)
		assert.Equal(t, "mntr", app.ICC.DeviceClass)
		assert.Equal(t, "4.3.0", app.ICC.Version.String())
	})

	t.Run("garbage payload", func(t *testing.T) {
		data := newGIF("89a", 1, 1, 0, 0).
			application("ICCRGBG1012", []byte("not a profile")).
			trailer()
		g, err := DecodeGIF(data)
		require.NoError(t, err)
		app := g.Extensions[0].(Application)
		assert.Nil(t, app.ICC)
		assert.Len(t, g.Warnings, 1)
		assert.Equal(t, StateTerminated, g.State)
	})
}

func TestDecodeGIFGraphicControlTagging(t *testing.T) {
	data := newGIF("89a", 4, 4, 0, 0).
		graphicControl(0x09, 10, 5).
		image(4, 4, 0x00).
		image(2, 2, 0x00).
		trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)

	gcs := extensionsOf[GraphicControl](g)
	require.Len(t, gcs, 1)
	assert.Equal(t, GraphicControl{
		DisposalMethod:    2,
		HasTransparency:   true,
		DelayCentiseconds: 10,
		TransparentIndex:  5,
	}, gcs[0])

	// the GCE record, then one record per descriptor
	require.Len(t, g.Images, 3)
	assert.True(t, g.Images[0].FromControl)
	assert.Equal(t, uint16(10), g.Images[0].Control.DelayCentiseconds)

	descriptors := g.Descriptors()
	require.Len(t, descriptors, 2)
	require.NotNil(t, descriptors[0].Control)
	assert.Equal(t, uint16(10), descriptors[0].Control.DelayCentiseconds)
	assert.Equal(t, uint8(5), descriptors[0].Control.TransparentIndex)
	// a GCE applies to the next graphic rendering block only
	assert.Nil(t, descriptors[1].Control)
	assert.Equal(t, uint16(2), descriptors[1].Width)
}

func TestDecodeGIFGraphicControlAppendsImageRecord(t *testing.T) {
	data := newGIF("89a", 4, 4, 0, 0).
		graphicControl(0x00, 10, 1).
		graphicControl(0x00, 20, 2).
		image(4, 4, 0x00).
		trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, g.Images, 3)
	assert.Len(t, g.Descriptors(), 1)

	images, _ := g.Report().Get("Images")
	require.Len(t, images, 3)
	list := images.([]any)

	first := list[0].(*Report)
	assert.Equal(t, []string{"delay", "transparent_index"}, first.Keys())
	delay, _ := first.Get("delay")
	assert.Equal(t, uint16(10), delay)

	second := list[1].(*Report)
	delay, _ = second.Get("delay")
	assert.Equal(t, uint16(20), delay)
	index, _ := second.Get("transparent_index")
	assert.Equal(t, uint8(2), index)

	// the descriptor is tagged with the most recent GCE
	third := list[2].(*Report)
	width, _ := third.Get("width")
	assert.Equal(t, uint16(4), width)
	delay, _ = third.Get("delay")
	assert.Equal(t, uint16(20), delay)
}

func TestDecodeGIFPlainText(t *testing.T) {
	data := newGIF("89a", 64, 16, 0, 0).
		graphicControl(0x00, 3, 0).
		plainText("Hi").
		image(64, 16, 0x00).
		trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)

	texts := extensionsOf[PlainText](g)
	require.Len(t, texts, 1)
	pt := texts[0]
	assert.Equal(t, "Hi", pt.Text)
	assert.Equal(t, uint16(1), pt.Left)
	assert.Equal(t, uint16(64), pt.Width)
	assert.Equal(t, uint8(8), pt.CellWidth)
	require.NotNil(t, pt.Control)
	assert.Equal(t, uint16(3), pt.Control.DelayCentiseconds)

	require.Len(t, g.Images, 2)
	assert.True(t, g.Images[0].FromControl)
	assert.Nil(t, g.Images[1].Control)
}

func TestDecodeGIFImageDescriptor(t *testing.T) {
	// local color table of 4 entries, interlaced
	data := newGIF("89a", 8, 8, 0, 0).image(8, 8, 0xC1).trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, g.Images, 1)
	img := g.Images[0]
	assert.True(t, img.LocalColorTable)
	assert.Equal(t, 4, img.LocalColorTableSize)
	assert.True(t, img.Interlaced)
	assert.Equal(t, StateTerminated, g.State)
}

func TestDecodeGIFUnknownExtension(t *testing.T) {
	b := newGIF("89a", 1, 1, 0, 0)
	b.Write([]byte{0x21, 0x77})
	b.subBlocks([]byte("abc"), []byte("defg"))
	data := b.comment("after").trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, g.Extensions, 2)
	assert.Equal(t, UnknownExtension{ID: 0x77, Skipped: 7, Kind: PayloadText}, g.Extensions[0])
	assert.Equal(t, byte(0x77), g.Extensions[0].Label())
	assert.Equal(t, Comment{Text: "after"}, g.Extensions[1])
}

func TestDecodeGIFMalformedGraphicControl(t *testing.T) {
	b := newGIF("89a", 1, 1, 0, 0)
	b.Write([]byte{0x21, 0xF9, 0x03, 0x01, 0x02, 0x03, 0x00})
	data := b.image(1, 1, 0).trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	assert.Empty(t, extensionsOf[GraphicControl](g))
	require.Len(t, g.Images, 1)
	assert.Nil(t, g.Images[0].Control)
	require.Len(t, g.Warnings, 1)
	assert.Contains(t, g.Warnings[0], "block size 3")
}

func TestDecodeGIFTruncatedLocalColorTable(t *testing.T) {
	full := newGIF("89a", 8, 8, 0, 0).comment("kept").image(8, 8, 0x81).trailer()
	// cut 5 bytes into the 12-byte local color table
	cut := 13 + 2 + 1 + 4 + 1 + 10 + 5
	data := full[:cut]

	g, err := DecodeGIF(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedInput))
	require.NotNil(t, g)
	assert.Equal(t, StateAborted, g.State)
	assert.Equal(t, uint16(8), g.Screen.Width)
	assert.Equal(t, []Extension{Comment{Text: "kept"}}, g.Extensions)
	assert.Len(t, g.Images, 1)
	assert.NotEmpty(t, g.Warnings)
}

func TestDecodeGIFMissingTrailer(t *testing.T) {
	data := newGIF("89a", 1, 1, 0, 0).comment("x").Bytes()

	g, err := DecodeGIF(data)
	assert.ErrorIs(t, err, ErrTruncatedInput)
	require.NotNil(t, g)
	assert.Equal(t, StateAborted, g.State)
	assert.Len(t, g.Extensions, 1)
}

func TestDecodeGIFTruncatedGlobalColorTable(t *testing.T) {
	data := newGIF("89a", 1, 1, 0x81, 0).trailer()
	data = data[:13+5]

	g, err := DecodeGIF(data)
	assert.ErrorIs(t, err, ErrTruncatedInput)
	require.NotNil(t, g)
	assert.Equal(t, StateAborted, g.State)
	assert.True(t, g.Screen.GlobalColorTable)
}

func TestDecodeGIFHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		stage string
		is    error
	}{
		{"bad version", []byte("GIF90a\x01\x00\x01\x00\x00\x00\x00;"), "header", ErrInvalidSignature},
		{"not a gif", []byte("PNG89a\x01\x00\x01\x00\x00\x00\x00;"), "header", ErrInvalidSignature},
		{"short header", []byte("GIF8"), "header", ErrTruncatedInput},
		{"short screen descriptor", []byte("GIF89a\x01\x00\x01\x00"), "logical screen descriptor", ErrTruncatedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := DecodeGIF(tt.data)
			assert.Nil(t, g)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, FormatGIF, pe.Format)
			assert.Equal(t, tt.stage, pe.Stage)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestDecodeGIFStrayBytes(t *testing.T) {
	b := newGIF("89a", 1, 1, 0, 0)
	b.Write(make([]byte, 10))
	data := b.trailer()

	t.Run("skipped", func(t *testing.T) {
		g, err := DecodeGIF(data)
		require.NoError(t, err)
		assert.Equal(t, StateTerminated, g.State)
		require.Len(t, g.Warnings, 1)
		assert.Contains(t, g.Warnings[0], "10 stray bytes")
	})

	t.Run("block budget", func(t *testing.T) {
		g, err := DecodeGIFWithOptions(data, GIFOptions{MaxBlocks: 5})
		assert.ErrorIs(t, err, ErrBlockBudget)
		require.NotNil(t, g)
		assert.Equal(t, StateAborted, g.State)
	})
}

func TestGIFReport(t *testing.T) {
	data := newGIF("89a", 10, 20, 0, 0).
		application("NETSCAPE2.0", []byte{0x01, 0x00, 0x00}).
		graphicControl(0x00, 7, 0).
		image(10, 20, 0x00).
		comment("Hello", " World").
		trailer()

	g, err := DecodeGIF(data)
	require.NoError(t, err)
	r := g.Report()

	assert.Equal(t, []string{
		"Signature", "Version", "Width", "Height",
		"Global Color Table Flag", "Color Resolution", "Sort Flag",
		"Size of Global Color Table", "Background Color Index", "Aspect Ratio",
		"Images", "App Extensions", "Graphic Control Extensions", "Comment Extensions",
		"State",
	}, r.Keys())

	ratio, _ := r.Get("Aspect Ratio")
	assert.Equal(t, "unspecified", ratio)

	comments, _ := r.Get("Comment Extensions")
	assert.Equal(t, []any{"Hello World"}, comments)

	apps, _ := r.Get("App Extensions")
	require.Len(t, apps, 1)
	app := apps.([]any)[0].(*Report)
	length, _ := app.Get("data length")
	assert.Equal(t, 3, length)
	loops, _ := app.Get("loop count")
	assert.Equal(t, 0, loops)

	images, _ := r.Get("Images")
	require.Len(t, images, 2)
	img := images.([]any)[1].(*Report)
	delay, _ := img.Get("delay")
	assert.Equal(t, uint16(7), delay)
	width, _ := img.Get("width")
	assert.Equal(t, uint16(10), width)
}

func FuzzDecodeGIF(f *testing.F) {
	f.Add(newGIF("89a", 1, 1, 0, 0).trailer())
	f.Add(newGIF("87a", 2, 2, 0x80, 0).comment("a", "b").image(1, 1, 0x80).trailer())
	f.Add(newGIF("89a", 1, 1, 0, 0).graphicControl(1, 2, 3).plainText("x").application("NETSCAPE2.0", []byte{1, 0, 0}).Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		d := newGIFDecoder(data, GIFOptions{MaxBlocks: 1 << 12})
		g, err := d.decode()
		assert.LessOrEqual(t, d.c.Offset(), len(data))
		if g == nil {
			require.Error(t, err)
			return
		}
		if err == nil {
			assert.Equal(t, StateTerminated, g.State)
		} else {
			assert.Equal(t, StateAborted, g.State)
		}
		_ = g.Report()
	})
}
