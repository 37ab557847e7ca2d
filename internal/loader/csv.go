package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

func loadCSV(data []byte) (*table.Table, error) {
	reader := csv.NewReader(decodeText(bytes.NewReader(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loadErr(FormatCSV, err)
		}
		rows = append(rows, record)
	}

	t, err := buildTable(rows, true)
	if err != nil {
		return nil, loadErr(FormatCSV, err)
	}
	return t, nil
}
