package loader

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		token   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{".xls", FormatXLS, false},
		{" .XLSB ", FormatXLSB, false},
		{"ods", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseFormat(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestFormatFromFileName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"export.csv", FormatCSV, false},
		{"Q3 tickets.XLSX", FormatXLSX, false},
		{"legacy.report.xls", FormatXLS, false},
		{"dump.xlsb", FormatXLSB, false},
		{"notes.txt", "", true},
		{"README", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFileName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatFromFileName(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFromFileName(%q) unexpected error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromFileName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormat_IsSpreadsheet(t *testing.T) {
	if FormatCSV.IsSpreadsheet() {
		t.Error("csv should not be a spreadsheet")
	}
	for _, f := range []Format{FormatXLSX, FormatXLS, FormatXLSB} {
		if !f.IsSpreadsheet() {
			t.Errorf("%s should be a spreadsheet", f)
		}
	}
}
