package imgmeta

import (
	"errors"
	"fmt"

	"imgmeta/formats"
)

var (
	// ErrUnsupportedFormat is returned when the image format cannot be detected.
	ErrUnsupportedFormat = errors.New("imgmeta: unsupported format")

	// ErrInvalidSource is returned when the provided data source cannot be read.
	ErrInvalidSource = errors.New("imgmeta: invalid source")

	// ErrFileTooLarge is returned before parsing when the input exceeds
	// Options.MaxFileSize.
	ErrFileTooLarge = errors.New("imgmeta: file too large")
)

// Decoder errors, re-exported for errors.Is checks.
var (
	ErrTruncatedInput           = formats.ErrTruncatedInput
	ErrInvalidSignature         = formats.ErrInvalidSignature
	ErrUnsupportedHeaderVariant = formats.ErrUnsupportedHeaderVariant
	ErrBlockBudget              = formats.ErrBlockBudget
)

// FileError tags a failure with the file it came from.
type FileError struct {
	Path   string
	Format Format
	Err    error
}

func (e *FileError) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
