package formats

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput indicates a read or skip would cross the end of the buffer.
	ErrTruncatedInput = errors.New("formats: truncated input")

	// ErrInvalidSignature indicates the magic bytes do not match the expected container.
	ErrInvalidSignature = errors.New("formats: invalid signature")

	// ErrUnsupportedHeaderVariant is returned when a BMP DIB header size does not
	// reach a known tier boundary or is out of range.
	ErrUnsupportedHeaderVariant = errors.New("formats: unsupported header variant")

	// ErrDecode marks a text or charset decoding failure. It is always recovered
	// with a lossy fallback and only shows up in warnings.
	ErrDecode = errors.New("formats: decode error")

	// ErrBlockBudget is returned when a GIF block stream exceeds the configured
	// number of blocks.
	ErrBlockBudget = errors.New("formats: block budget exceeded")

	// ErrUnsupportedFormat is returned when a parser is not available.
	ErrUnsupportedFormat = errors.New("formats: unsupported format")
)

// TruncatedError reports a cursor operation that would have read past the end
// of the buffer.
type TruncatedError struct {
	Offset    int // cursor offset when the operation was attempted
	Requested int // number of bytes the operation needed
	Length    int // total buffer length
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("formats: truncated input: need %d bytes at offset %d, buffer has %d",
		e.Requested, e.Offset, e.Length)
}

// Is makes errors.Is(err, ErrTruncatedInput) true for any *TruncatedError.
func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncatedInput
}

// ParseError is a failure in a required fixed structure that aborts the whole parse.
type ParseError struct {
	Format Format
	Stage  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Format, e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TierError attributes a BMP decoding failure to one DIB header tier. Fields of
// earlier tiers stay valid.
type TierError struct {
	Tier Tier
	Err  error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("BMP %s tier: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error { return e.Err }
