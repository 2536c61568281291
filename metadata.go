package imgmeta

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"imgmeta/formats"
)

// DefaultMaxFileSize is the input cap used by DefaultOptions.
const DefaultMaxFileSize = 64 << 20

// Options bounds the work done for one file.
type Options struct {
	// MaxFileSize rejects larger inputs with ErrFileTooLarge before parsing.
	// Zero or negative disables the check.
	MaxFileSize int64

	// MaxGIFBlocks caps the GIF block-stream walk. Zero selects the decoder
	// default.
	MaxGIFBlocks int
}

// DefaultOptions returns the options used by Metadata and MetadataFromBytes.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  DefaultMaxFileSize,
		MaxGIFBlocks: formats.DefaultMaxGIFBlocks,
	}
}

const maxPooledBuffer = 1 << 20

var bytePool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 64*1024)
	},
}

func borrowBuffer(size int) []byte {
	if size <= 0 {
		return nil
	}
	buf := bytePool.Get().([]byte)
	if cap(buf) < size {
		bytePool.Put(buf)
		buf = make([]byte, size)
	}
	return buf[:size]
}

func releaseBuffer(buf []byte) {
	if buf == nil || cap(buf) > maxPooledBuffer {
		return
	}
	bytePool.Put(buf[:cap(buf)])
}

// Metadata reads an image file and reports its structural and embedded
// metadata: header fields, GIF blocks, BMP header tiers, EXIF tags and ICC
// profile headers.
//
// The function detects the image format by reading the file's magic bytes,
// then runs the matching decoder over the whole file held in memory.
//
// When a decoder stops part way the partial report is returned together with
// the error.
//
// Example:
//
//	report, err := imgmeta.Metadata("image.gif")
//	if err != nil {
//		log.Fatal(err)
//	}
//	width, _ := report.Get("Width")
func Metadata(path string) (*Report, error) {
	return MetadataWithOptions(path, DefaultOptions())
}

// MetadataWithOptions is Metadata with caller-chosen limits.
func MetadataWithOptions(path string, opts Options) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("failed to get file info: %w", err)}
	}
	size := fileInfo.Size()
	if opts.MaxFileSize > 0 && size > opts.MaxFileSize {
		return nil, &FileError{Path: path, Err: tooLarge(size, opts.MaxFileSize)}
	}

	buf := borrowBuffer(int(size))
	defer releaseBuffer(buf)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	report, format, err := extract(buf, opts)
	if err != nil {
		return report, &FileError{Path: path, Format: format, Err: err}
	}
	return report, nil
}

// MetadataFromBytes reports on an in-memory file using DefaultOptions.
func MetadataFromBytes(data []byte) (*Report, error) {
	return MetadataFromBytesWithOptions(data, DefaultOptions())
}

// MetadataFromBytesWithOptions is MetadataFromBytes with caller-chosen limits.
func MetadataFromBytesWithOptions(data []byte, opts Options) (*Report, error) {
	if opts.MaxFileSize > 0 && int64(len(data)) > opts.MaxFileSize {
		return nil, tooLarge(int64(len(data)), opts.MaxFileSize)
	}
	report, _, err := extract(data, opts)
	return report, err
}

// MetadataFromReader reads r to the end, bounded by DefaultMaxFileSize, and
// reports on the result.
func MetadataFromReader(r io.Reader) (*Report, error) {
	if r == nil {
		return nil, ErrInvalidSource
	}
	opts := DefaultOptions()
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if n > opts.MaxFileSize {
		return nil, tooLarge(n, opts.MaxFileSize)
	}
	return MetadataFromBytesWithOptions(buf.Bytes(), opts)
}

func extract(data []byte, opts Options) (*Report, Format, error) {
	format := formats.Detect(data)
	if format == FormatUnknown {
		return nil, format, ErrUnsupportedFormat
	}
	report, err := formats.ExtractWithOptions(format, data, formats.ExtractOptions{
		MaxGIFBlocks: opts.MaxGIFBlocks,
	})
	return report, format, err
}

func tooLarge(size, limit int64) error {
	return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, limit)
}
