package imgmeta

import "imgmeta/formats"

// Format represents a supported image format.
type Format = formats.Format

const (
	FormatUnknown = formats.FormatUnknown
	FormatJPEG    = formats.FormatJPEG
	FormatPNG     = formats.FormatPNG
	FormatGIF     = formats.FormatGIF
	FormatBMP     = formats.FormatBMP
)

// Report is the ordered metadata report produced for one file. Values are
// scalars, nested *Report sections or []any lists.
type Report = formats.Report
