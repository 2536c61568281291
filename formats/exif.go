package formats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bep/imagemeta"
)

// ifdNames maps the last segment of an imagemeta namespace to the IFD names
// used in reports.
var ifdNames = map[string]string{
	"IFD0":                "0th",
	"ExifIFDP":            "Exif",
	"GPSInfoIFD":          "GPS",
	"InteroperabilityIFD": "Interop",
	"IFD1":                "1st",
}

// ParseEXIF collects the EXIF tags of a JPEG or PNG buffer, grouped by IFD.
// It returns a nil report when the image carries no EXIF data.
func ParseEXIF(format Format, data []byte) (*Report, error) {
	var imageFormat imagemeta.ImageFormat
	switch format {
	case FormatJPEG:
		imageFormat = imagemeta.JPEG
	case FormatPNG:
		imageFormat = imagemeta.PNG
	default:
		return nil, fmt.Errorf("%w: EXIF in %s", ErrUnsupportedFormat, format)
	}

	exif := NewReport()
	err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(imagemeta.TagInfo) bool {
			return true
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			exif.Section(ifdName(ti.Namespace)).Set(ti.Tag, tagValue(ti.Value))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("exif: %w", err)
	}
	if exif.Len() == 0 {
		return nil, nil
	}
	return exif, nil
}

func ifdName(namespace string) string {
	last := namespace
	if i := strings.LastIndexByte(namespace, '/'); i >= 0 {
		last = namespace[i+1:]
	}
	if name, ok := ifdNames[last]; ok {
		return name
	}
	if last == "" {
		return "0th"
	}
	return last
}

// tagValue normalises a decoded tag value for the report. Byte values go
// through the charset prefix convention.
func tagValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return DecodeCharsetPrefixed(val)
	case string:
		return strings.TrimRight(val, "\x00")
	case fmt.Stringer:
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = tagValue(e)
		}
		return out
	}
	return v
}
