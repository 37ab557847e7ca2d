package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the parsing engine for an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatXLSB Format = "xlsb"
)

// Formats lists the accepted formats in display order.
var Formats = []Format{FormatCSV, FormatXLSX, FormatXLS, FormatXLSB}

// ParseFormat accepts a format token such as "xlsx" or ".XLSX".
func ParseFormat(token string) (Format, error) {
	t := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(token), "."))
	for _, f := range Formats {
		if string(f) == t {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, token)
}

// FormatFromFileName derives the format from a file name's extension.
func FormatFromFileName(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// IsSpreadsheet reports whether the format holds named sheets.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS || f == FormatXLSB
}

func (f Format) String() string {
	return string(f)
}
