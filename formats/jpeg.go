package formats

import (
	"bytes"
	"fmt"

	"github.com/go-andiamo/iccarus"
)

var exifHeader = []byte("Exif\x00\x00")

var jpegComponents = map[byte]string{
	1: "Grayscale",
	3: "YCbCr",
	4: "CMYK",
}

// ExtractJPEG reports the frame header, EXIF tags and ICC profile header of
// a JPEG buffer. Segments are walked up to the start of scan; entropy-coded
// data is never read.
func ExtractJPEG(data []byte) (*Report, error) {
	if !bytes.HasPrefix(data, jpegSignature) {
		return nil, &ParseError{Format: FormatJPEG, Stage: "signature", Err: ErrInvalidSignature}
	}

	r := NewReport()
	r.Set("Signature", signatureHex(data[:len(jpegSignature)]))
	r.Set("Format", string(FormatJPEG))

	var (
		warnings []string
		hasICC   bool
		tiff     []byte
	)
	c := NewCursor(data)
	_ = c.Advance(2) // SOI
walk:
	for !c.AtEnd() {
		b, err := c.ReadUint8()
		if err != nil || b != 0xFF {
			warnings = append(warnings, fmt.Sprintf("expected marker at offset %d", c.Offset()-1))
			break
		}
		marker, err := c.ReadUint8()
		// Fill bytes
		for err == nil && marker == 0xFF {
			marker, err = c.ReadUint8()
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("marker: %v", err))
			break
		}

		switch {
		case marker == 0xD9, marker == 0xDA: // EOI, SOS
			break walk
		case marker >= 0xD0 && marker <= 0xD7, marker == 0x01: // RSTn, TEM
			continue
		}

		length, err := c.ReadUint16BE()
		if err == nil && length < 2 {
			err = fmt.Errorf("segment length %d", length)
		}
		var body []byte
		if err == nil {
			body, err = c.ReadBytes(int(length) - 2)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("segment 0xFF%02X: %v", marker, err))
			break
		}

		switch {
		case marker == 0xE1 && tiff == nil && bytes.HasPrefix(body, exifHeader):
			tiff = body[len(exifHeader):]
		case marker == 0xE2 && bytes.HasPrefix(body, []byte("ICC_PROFILE")):
			hasICC = true
		case isSOF(marker):
			sofReport(r, marker, body)
		}
	}
	r.Set("Size (bytes)", len(data))

	exif, err := ParseEXIF(FormatJPEG, data)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	if exif, err = withCharsetTags(exif, tiff); err != nil {
		warnings = append(warnings, fmt.Sprintf("APP1 Exif: %v", err))
	}
	if exif != nil {
		r.Set("EXIF", exif)
	}
	if hasICC {
		if p, err := iccarus.ExtractFromJPEG(bytes.NewReader(data), iccHeaderOnly); err != nil {
			warnings = append(warnings, fmt.Sprintf("ICC profile: %v", err))
		} else {
			r.Set("ICC Profile", iccReport(&p.Header))
		}
	}
	setWarnings(r, warnings)
	return r, nil
}

// isSOF reports whether marker starts a frame (SOF0-SOF15 except DHT, JPG and DAC).
func isSOF(marker byte) bool {
	return marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

func sofReport(r *Report, marker byte, sof []byte) {
	c := NewCursor(sof)
	if c.check(6) != nil {
		return
	}
	precision, _ := c.ReadUint8()
	height, _ := c.ReadUint16BE()
	width, _ := c.ReadUint16BE()
	components, _ := c.ReadUint8()

	r.Set("Size (width, height)", []any{width, height})
	r.Set("Bits Per Sample", precision)
	r.Set("Components", components)
	if name, ok := jpegComponents[components]; ok {
		r.Set("Color Space", name)
	}
	r.Set("Progressive", marker == 0xC2 || marker == 0xC6 || marker == 0xCA || marker == 0xCE)
}
