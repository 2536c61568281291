package formats

import "encoding/binary"

// Cursor is a sequential little-endian reader over an in-memory buffer.
// Every operation checks its bounds before moving; on failure the offset is
// left untouched and a *TruncatedError is returned.
//
// A Cursor belongs to a single parse call and must not be shared.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool { return c.off >= len(c.buf) }

// check is the single place that validates offset+n <= length.
func (c *Cursor) check(n int) error {
	if n < 0 || n > len(c.buf)-c.off {
		return &TruncatedError{Offset: c.off, Requested: n, Length: len(c.buf)}
	}
	return nil
}

// PeekByte returns the byte at the current offset without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if err := c.check(1); err != nil {
		return 0, err
	}
	return c.buf[c.off], nil
}

// Advance skips n bytes.
func (c *Cursor) Advance(n int) error {
	if err := c.check(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// ReadBytes consumes n bytes and returns them. The slice aliases the buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.check(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.check(1); err != nil {
		return 0, err
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

func (c *Cursor) ReadUint16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadUint32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32LE reads a signed 32-bit value (BMP LONG).
func (c *Cursor) ReadInt32LE() (int32, error) {
	v, err := c.ReadUint32LE()
	return int32(v), err
}

// ReadUint16BE reads a big-endian value, for the PNG and JPEG walkers.
func (c *Cursor) ReadUint16BE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) ReadUint32BE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
