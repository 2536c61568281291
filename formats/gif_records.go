package formats

import "github.com/go-andiamo/iccarus"

// DecodeState is the final state of a block-stream walk.
type DecodeState string

const (
	// StateTerminated means the walk stopped at the 0x3B trailer.
	StateTerminated DecodeState = "terminated"
	// StateAborted means the walk stopped early on truncated or runaway input.
	StateAborted DecodeState = "aborted"
)

// GIF is the decoded structure of a GIF file, without pixel data.
type GIF struct {
	Signature string // always "GIF"
	Version   string // "87a" or "89a"
	Screen    ScreenDescriptor

	// Extensions holds every extension block in encounter order.
	Extensions []Extension
	// Images holds the image records in encounter order: one per Image
	// Descriptor plus one per Graphic Control Extension (FromControl set).
	Images []Image

	State    DecodeState
	Warnings []string
}

// ScreenDescriptor is the logical screen descriptor that follows the header.
type ScreenDescriptor struct {
	Width                uint16
	Height               uint16
	GlobalColorTable     bool
	ColorResolution      int // bits per primary color
	Sorted               bool
	GlobalColorTableSize int // number of entries, 2^(N+1)
	BackgroundIndex      uint8
	AspectRatioByte      uint8
}

// AspectRatio returns the pixel aspect ratio (N+15)/64. The second result is
// false when the ratio is unspecified.
func (s ScreenDescriptor) AspectRatio() (float64, bool) {
	if s.AspectRatioByte == 0 {
		return 0, false
	}
	return (float64(s.AspectRatioByte) + 15) / 64, true
}

// Extension is one of GraphicControl, Comment, Application, PlainText or
// UnknownExtension.
type Extension interface {
	Label() byte
	extension()
}

// GraphicControl is a Graphic Control Extension (label 0xF9).
type GraphicControl struct {
	DisposalMethod    uint8
	UserInput         bool
	HasTransparency   bool
	DelayCentiseconds uint16
	TransparentIndex  uint8
}

// Comment is a Comment Extension (label 0xFE); all sub-blocks joined.
type Comment struct {
	Text string
}

// Application is an Application Extension (label 0xFF).
type Application struct {
	Identifier string // 8-byte name plus 3-byte authentication code
	Payload    []byte // concatenated sub-block data
	Kind       PayloadKind

	// ICC is set for ICCRGBG1012 payloads whose profile header parsed.
	ICC *iccarus.Header
}

// LoopCount returns the animation loop count for NETSCAPE2.0 and ANIMEXTS1.0
// payloads (0 means loop forever).
func (a Application) LoopCount() (int, bool) {
	if a.Identifier != "NETSCAPE2.0" && a.Identifier != "ANIMEXTS1.0" {
		return 0, false
	}
	if len(a.Payload) < 3 || a.Payload[0] != 1 {
		return 0, false
	}
	return int(a.Payload[1]) | int(a.Payload[2])<<8, true
}

// PlainText is a Plain Text Extension (label 0x01).
type PlainText struct {
	Left, Top       uint16
	Width, Height   uint16
	CellWidth       uint8
	CellHeight      uint8
	ForegroundIndex uint8
	BackgroundIndex uint8
	Text            string
	Control         *GraphicControl
}

// UnknownExtension is any extension with an unrecognised label, skipped
// through its sub-block chain.
type UnknownExtension struct {
	ID      byte
	Skipped int // payload bytes skipped, excluding length prefixes
	Kind    PayloadKind
}

// Image is one image record. For an Image Descriptor, Control is the
// Graphic Control Extension that preceded it, if any. A Graphic Control
// Extension also appends a record of its own with FromControl set and only
// Control filled in, so Images is not one-to-one with Image Descriptors.
type Image struct {
	Left, Top           uint16
	Width, Height       uint16
	Interlaced          bool
	Sorted              bool
	LocalColorTable     bool
	LocalColorTableSize int
	Control             *GraphicControl
	FromControl         bool
}

// Descriptors returns the image records that came from Image Descriptors.
func (g *GIF) Descriptors() []Image {
	var out []Image
	for _, img := range g.Images {
		if !img.FromControl {
			out = append(out, img)
		}
	}
	return out
}

func (GraphicControl) Label() byte     { return labelGraphicControl }
func (Comment) Label() byte            { return labelComment }
func (Application) Label() byte        { return labelApplication }
func (PlainText) Label() byte          { return labelPlainText }
func (u UnknownExtension) Label() byte { return u.ID }

func (GraphicControl) extension()   {}
func (Comment) extension()          {}
func (Application) extension()      {}
func (PlainText) extension()        {}
func (UnknownExtension) extension() {}

// extensionsOf returns the extensions of g that have type T, in order.
func extensionsOf[T Extension](g *GIF) []T {
	var out []T
	for _, ext := range g.Extensions {
		if v, ok := ext.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
