package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeLimit matches every *SizeLimitError via errors.Is.
	ErrSizeLimit = errors.New("file too large")

	// ErrUnsupportedFormat is returned for format tokens and file
	// extensions outside csv, xlsx, xls and xlsb.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSheetRequired is returned when a spreadsheet is loaded without
	// choosing a sheet.
	ErrSheetRequired = errors.New("sheet name required")

	// ErrSheetNotFound is returned when the chosen sheet is not in the
	// workbook.
	ErrSheetNotFound = errors.New("sheet not found")
)

// SizeLimitError reports an input larger than the configured limit. When
// raised while streaming, Size is the number of bytes read before giving up.
type SizeLimitError struct {
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file too large: %s exceeds the %s limit", formatBytes(e.Size), formatBytes(e.Limit))
}

func (e *SizeLimitError) Is(target error) bool {
	return target == ErrSizeLimit
}

// LoadError wraps any failure of a parsing engine. No partial table is
// returned alongside it.
type LoadError struct {
	Format Format
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unreadable %s file: %v", e.Format, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func loadErr(f Format, cause error) error {
	return &LoadError{Format: f, Cause: cause}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
