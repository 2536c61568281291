package formats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF, 0xFF})

	b, err := c.PeekByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, 0, c.Offset())

	u8, err := c.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.ReadUint16LE()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.ReadUint32LE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	i32, err := c.ReadInt32LE()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)

	assert.True(t, c.AtEnd())
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, 11, c.Len())
}

func TestCursorBigEndian(t *testing.T) {
	c := NewCursor([]byte{0x12, 0x34, 0x00, 0x00, 0x01, 0x00})

	u16, err := c.ReadUint16BE()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.ReadUint32BE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x100), u32)
}

func TestCursorTruncation(t *testing.T) {
	tests := []struct {
		name string
		op   func(c *Cursor) error
		want int // bytes requested
	}{
		{"advance", func(c *Cursor) error { return c.Advance(3) }, 3},
		{"negative advance", func(c *Cursor) error { return c.Advance(-1) }, -1},
		{"read bytes", func(c *Cursor) error { _, err := c.ReadBytes(4); return err }, 4},
		{"uint16", func(c *Cursor) error { _, err := c.ReadUint16LE(); return err }, 2},
		{"uint32", func(c *Cursor) error { _, err := c.ReadUint32LE(); return err }, 4},
		{"int32", func(c *Cursor) error { _, err := c.ReadInt32LE(); return err }, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor([]byte{0xAA, 0xBB, 0xCC})
			require.NoError(t, c.Advance(2))

			err := tt.op(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTruncatedInput))

			var te *TruncatedError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, 2, te.Offset)
			assert.Equal(t, tt.want, te.Requested)
			assert.Equal(t, 3, te.Length)

			// failed operations leave the cursor where it was
			assert.Equal(t, 2, c.Offset())
		})
	}
}

func TestCursorEmptyBuffer(t *testing.T) {
	c := NewCursor(nil)
	assert.True(t, c.AtEnd())
	_, err := c.PeekByte()
	assert.ErrorIs(t, err, ErrTruncatedInput)
	_, err = c.ReadUint8()
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.NoError(t, c.Advance(0))
}

func TestCursorReadBytesAliasesBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	c := NewCursor(buf)
	b, err := c.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	assert.Equal(t, 2, cap(b))

	buf[0] = 9
	assert.Equal(t, byte(9), b[0])
}
