package formats

import "fmt"

// EXIF tag IDs read from the raw TIFF block
const (
	exifTagExifIFD             = 0x8769
	exifTagGPSIFD              = 0x8825
	exifTagUserComment         = 0x9286
	exifTagGPSProcessingMethod = 0x001B
	exifTagGPSAreaInformation  = 0x001C
)

const exifTypeUndefined = 7

// charsetTags are the UNDEFINED tags whose value starts with an 8-byte
// character code. imagemeta turns them into strings itself and returns ""
// for codes it does not know (JIS among them), so they are read again from
// the TIFF block and decoded with DecodeCharsetPrefixed.
var charsetTags = []struct {
	section string
	pointer uint16 // IFD0 tag that points at the sub-IFD
	tag     uint16
	name    string
}{
	{"Exif", exifTagExifIFD, exifTagUserComment, "UserComment"},
	{"GPS", exifTagGPSIFD, exifTagGPSProcessingMethod, "GPSProcessingMethod"},
	{"GPS", exifTagGPSIFD, exifTagGPSAreaInformation, "GPSAreaInformation"},
}

type ifdEntry struct {
	typ   uint16
	count uint32
	value []byte // the 4-byte value/offset field
}

// tiffReader looks up IFD entries in a TIFF block held in memory. Offsets
// are relative to the start of the block.
type tiffReader struct {
	buf       []byte
	bigEndian bool
}

func newTIFFReader(tiff []byte) (*tiffReader, error) {
	c := NewCursor(tiff)
	order, err := c.ReadBytes(2)
	if err != nil {
		return nil, err
	}
	t := &tiffReader{buf: tiff}
	switch string(order) {
	case "II":
	case "MM":
		t.bigEndian = true
	default:
		return nil, fmt.Errorf("%w: TIFF byte order %q", ErrInvalidSignature, order)
	}
	magic, err := t.u16(c)
	if err != nil {
		return nil, err
	}
	if magic != 42 {
		return nil, fmt.Errorf("%w: TIFF magic number %d", ErrInvalidSignature, magic)
	}
	return t, nil
}

func (t *tiffReader) u16(c *Cursor) (uint16, error) {
	if t.bigEndian {
		return c.ReadUint16BE()
	}
	return c.ReadUint16LE()
}

func (t *tiffReader) u32(c *Cursor) (uint32, error) {
	if t.bigEndian {
		return c.ReadUint32BE()
	}
	return c.ReadUint32LE()
}

// at returns a cursor positioned off bytes into the block.
func (t *tiffReader) at(off uint32) (*Cursor, error) {
	c := NewCursor(t.buf)
	if err := c.Advance(int(off)); err != nil {
		return nil, err
	}
	return c, nil
}

func (t *tiffReader) firstIFD() (uint32, error) {
	c, err := t.at(4)
	if err != nil {
		return 0, err
	}
	return t.u32(c)
}

func (t *tiffReader) readIFD(off uint32) (map[uint16]ifdEntry, error) {
	c, err := t.at(off)
	if err != nil {
		return nil, err
	}
	n, err := t.u16(c)
	if err != nil {
		return nil, err
	}
	if err := c.check(12 * int(n)); err != nil {
		return nil, err
	}
	entries := make(map[uint16]ifdEntry, n)
	for i := 0; i < int(n); i++ {
		tag, _ := t.u16(c)
		typ, _ := t.u16(c)
		count, _ := t.u32(c)
		value, _ := c.ReadBytes(4)
		entries[tag] = ifdEntry{typ: typ, count: count, value: value}
	}
	return entries, nil
}

func (t *tiffReader) offset(e ifdEntry) uint32 {
	v, _ := t.u32(NewCursor(e.value))
	return v
}

// undefined returns the bytes of an UNDEFINED entry, inline when they fit
// in the value field.
func (t *tiffReader) undefined(e ifdEntry) ([]byte, error) {
	if e.count <= 4 {
		return e.value[:e.count], nil
	}
	c, err := t.at(t.offset(e))
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(int(e.count))
}

// withCharsetTags decodes the charset-prefixed tags of a raw TIFF block
// into exif, replacing what the tag library reported for them. exif may be
// nil; the result is nil when neither holds any tag.
func withCharsetTags(exif *Report, tiff []byte) (*Report, error) {
	if len(tiff) == 0 {
		return exif, nil
	}
	t, err := newTIFFReader(tiff)
	if err != nil {
		return exif, err
	}
	root, err := t.firstIFD()
	if err != nil {
		return exif, err
	}
	ifd0, err := t.readIFD(root)
	if err != nil {
		return exif, fmt.Errorf("IFD0: %w", err)
	}

	subs := make(map[uint16]map[uint16]ifdEntry)
	for _, ct := range charsetTags {
		ptr, ok := ifd0[ct.pointer]
		if !ok {
			continue
		}
		sub, ok := subs[ct.pointer]
		if !ok {
			if sub, err = t.readIFD(t.offset(ptr)); err != nil {
				return exif, fmt.Errorf("%s IFD: %w", ct.section, err)
			}
			subs[ct.pointer] = sub
		}
		e, ok := sub[ct.tag]
		if !ok || e.typ != exifTypeUndefined {
			continue
		}
		raw, err := t.undefined(e)
		if err != nil {
			return exif, fmt.Errorf("%s: %w", ct.name, err)
		}
		if exif == nil {
			exif = NewReport()
		}
		exif.Section(ct.section).Set(ct.name, DecodeCharsetPrefixed(raw))
	}
	return exif, nil
}
