package formats

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// iccHeaderBytes returns a 128-byte ICC v4.3 display profile header.
func iccHeaderBytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(128)) // profile size
	buf.WriteString("lcms")
	binary.Write(&buf, binary.BigEndian, uint32(0x04300000))
	buf.WriteString("mntr")
	buf.WriteString("RGB ")
	buf.WriteString("XYZ ")
	binary.Write(&buf, binary.BigEndian, [6]uint16{2024, 1, 2, 3, 4, 5})
	buf.WriteString("acsp")
	buf.WriteString("APPL")
	buf.Write(make([]byte, 128-buf.Len()))
	return buf.Bytes()
}

func TestParseICCHeader(t *testing.T) {
	h, err := parseICCHeader(iccHeaderBytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(128), h.ProfileSize)
	assert.Equal(t, "lcms", h.CMMType)
	assert.Equal(t, "RGB", h.ColorSpace)
	assert.Equal(t, "XYZ", h.PCS)

	r := iccReport(h)
	v, _ := r.Get("Version")
	assert.Equal(t, "4.3.0", v)
	created, _ := r.Get("Created")
	assert.Equal(t, "2024-01-02T03:04:05Z", created)
}

func TestParseICCHeaderErrors(t *testing.T) {
	_, err := parseICCHeader(make([]byte, 20))
	assert.Error(t, err)

	// right size, missing 'acsp'
	_, err = parseICCHeader(make([]byte, 128))
	assert.Error(t, err)
}
