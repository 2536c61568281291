package formats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-andiamo/iccarus"
)

var pngColorTypes = map[byte]string{
	0: "Grayscale",
	2: "RGB",
	3: "Indexed",
	4: "GrayscaleAlpha",
	6: "RGBA",
}

// ExtractPNG reports the IHDR fields, chunk layout, EXIF tags and ICC
// profile header of a PNG buffer. Only a bad signature is an error; damaged
// chunks end the walk with a warning.
func ExtractPNG(data []byte) (*Report, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, &ParseError{Format: FormatPNG, Stage: "signature", Err: ErrInvalidSignature}
	}

	r := NewReport()
	r.Set("Signature", signatureHex(data[:len(pngSignature)]))
	r.Set("Format", string(FormatPNG))

	var (
		warnings []string
		chunks   []string
		hasICC   bool
		tiff     []byte
	)
	c := NewCursor(data)
	_ = c.Advance(len(pngSignature))
	for !c.AtEnd() {
		length, err := c.ReadUint32BE()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("chunk length at offset %d: %v", c.Offset(), err))
			break
		}
		typ, err := c.ReadBytes(4)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("chunk type at offset %d: %v", c.Offset(), err))
			break
		}
		chunkType := string(typ)
		body, err := c.ReadBytes(int(length))
		if err == nil {
			// CRC
			err = c.Advance(4)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s chunk: %v", chunkType, err))
			break
		}
		chunks = append(chunks, chunkType)

		switch chunkType {
		case "IHDR":
			if len(body) >= 13 {
				ihdrReport(r, body)
			}
		case "iCCP":
			hasICC = true
		case "eXIf":
			tiff = body
		}
		if chunkType == "IEND" {
			break
		}
	}
	r.Set("Size (bytes)", len(data))
	r.Set("Chunks", strings.Join(chunks, " "))

	exif, err := ParseEXIF(FormatPNG, data)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	if exif, err = withCharsetTags(exif, tiff); err != nil {
		warnings = append(warnings, fmt.Sprintf("eXIf: %v", err))
	}
	if exif != nil {
		r.Set("EXIF", exif)
	}
	if hasICC {
		if p, err := iccarus.ExtractFromPNG(bytes.NewReader(data), iccHeaderOnly); err != nil {
			warnings = append(warnings, fmt.Sprintf("ICC profile: %v", err))
		} else {
			r.Set("ICC Profile", iccReport(&p.Header))
		}
	}
	setWarnings(r, warnings)
	return r, nil
}

func ihdrReport(r *Report, ihdr []byte) {
	c := NewCursor(ihdr)
	width, _ := c.ReadUint32BE()
	height, _ := c.ReadUint32BE()
	bitDepth, _ := c.ReadUint8()
	colorType, _ := c.ReadUint8()
	_ = c.Advance(2) // compression and filter method
	interlace, _ := c.ReadUint8()

	r.Set("Size (width, height)", []any{width, height})
	r.Set("Bit Depth", bitDepth)
	if name, ok := pngColorTypes[colorType]; ok {
		r.Set("Color Type", name)
	} else {
		r.Set("Color Type", fmt.Sprintf("unknown (%d)", colorType))
	}
	r.Set("Interlaced", interlace == 1)
}

// signatureHex renders magic bytes as "89 50 4E 47 ...".
func signatureHex(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
