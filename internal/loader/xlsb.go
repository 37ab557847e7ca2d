package loader

// xlsb.go reads Excel binary workbooks (BIFF12). An .xlsb file is a zip
// package whose parts are streams of records. Each record starts with a
// type and a size, both little-endian varints carrying 7 bits per byte.
//
// Only what a tabular load needs is decoded: sheet names and part paths
// from the workbook, the shared string table, and cell values of the sheet
// data. Styles are ignored, so date cells stay as serial numbers.

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	brtRowHdr         = 0
	brtCellBlank      = 1
	brtCellRk         = 2
	brtCellError      = 3
	brtCellBool       = 4
	brtCellReal       = 5
	brtCellSt         = 6
	brtCellIsst       = 7
	brtFmlaString     = 8
	brtFmlaNum        = 9
	brtFmlaBool       = 10
	brtFmlaError      = 11
	brtSSTItem        = 19
	brtBeginSheetData = 145
	brtEndSheetData   = 146
	brtBundleSh       = 156
)

const (
	xlsbWorkbookPart = "xl/workbook.bin"
	xlsbRelsPart     = "xl/_rels/workbook.bin.rels"
	xlsbStringsPart  = "xl/sharedStrings.bin"

	xlsbMaxCols = 16384
	xlsbMaxRows = 1048576
)

var errTruncatedRecord = errors.New("truncated record")

var xlsbErrorText = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
	0x2B: "#GETTING_DATA",
}

type xlsbEngine struct{}

type xlsbSheet struct {
	name string
	part string
}

type xlsbWorkbook struct {
	zr     *zip.Reader
	sheets []xlsbSheet
}

func (xlsbEngine) sheets(data []byte) ([]string, error) {
	wb, err := openXLSB(data)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.name
	}
	return names, nil
}

func (xlsbEngine) rows(data []byte, sheet string) ([][]string, error) {
	wb, err := openXLSB(data)
	if err != nil {
		return nil, err
	}

	var part string
	for _, s := range wb.sheets {
		if s.name == sheet {
			part = s.part
			break
		}
	}
	if part == "" {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	sst, err := wb.sharedStrings()
	if err != nil {
		return nil, err
	}

	raw, err := readPart(wb.zr, part)
	if err != nil {
		return nil, err
	}
	return readSheetData(raw, sst)
}

func openXLSB(data []byte) (*xlsbWorkbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not an xlsb package: %w", err)
	}

	targets, err := readRels(zr)
	if err != nil {
		return nil, err
	}

	raw, err := readPart(zr, xlsbWorkbookPart)
	if err != nil {
		return nil, err
	}

	wb := &xlsbWorkbook{zr: zr}
	rr := recordReader{data: raw}
	for {
		id, body, err := rr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("workbook: %w", err)
		}
		if id != brtBundleSh {
			continue
		}

		// hsState (4) + iTabID (4) + strRelID + strName
		relID, off, err := wideString(body, 8)
		if err != nil {
			return nil, fmt.Errorf("workbook sheet entry: %w", err)
		}
		name, _, err := wideString(body, off)
		if err != nil {
			return nil, fmt.Errorf("workbook sheet entry: %w", err)
		}

		target, ok := targets[relID]
		if !ok {
			return nil, fmt.Errorf("sheet %q has no part (relationship %q)", name, relID)
		}
		wb.sheets = append(wb.sheets, xlsbSheet{name: name, part: target})
	}
	return wb, nil
}

func (wb *xlsbWorkbook) sharedStrings() ([]string, error) {
	raw, err := readPart(wb.zr, xlsbStringsPart)
	if errors.Is(err, errMissingPart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sst []string
	rr := recordReader{data: raw}
	for {
		id, body, err := rr.next()
		if errors.Is(err, io.EOF) {
			return sst, nil
		}
		if err != nil {
			return nil, fmt.Errorf("shared strings: %w", err)
		}
		if id != brtSSTItem {
			continue
		}
		// flags byte precedes the string
		s, _, err := wideString(body, 1)
		if err != nil {
			return nil, fmt.Errorf("shared strings: %w", err)
		}
		sst = append(sst, s)
	}
}

func readSheetData(raw []byte, sst []string) ([][]string, error) {
	var rows [][]string
	row := 0
	inData := false

	rr := recordReader{data: raw}
	for {
		id, body, err := rr.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sheet data: %w", err)
		}

		switch id {
		case brtBeginSheetData:
			inData = true
			continue
		case brtEndSheetData:
			return rows, nil
		case brtRowHdr:
			if len(body) < 4 {
				return nil, errTruncatedRecord
			}
			row = int(binary.LittleEndian.Uint32(body))
			if row >= xlsbMaxRows {
				return nil, fmt.Errorf("row index %d out of range", row)
			}
			continue
		}

		if !inData || id < brtCellBlank || id > brtFmlaError {
			continue
		}

		// column (4) + style and flags (4) precede every cell value
		if len(body) < 8 {
			return nil, errTruncatedRecord
		}
		col := int(binary.LittleEndian.Uint32(body))
		if col >= xlsbMaxCols {
			return nil, fmt.Errorf("column index %d out of range", col)
		}

		val, err := cellValue(id, body[8:], sst)
		if err != nil {
			return nil, fmt.Errorf("cell r%dc%d: %w", row, col, err)
		}

		for len(rows) <= row {
			rows = append(rows, nil)
		}
		for len(rows[row]) <= col {
			rows[row] = append(rows[row], "")
		}
		rows[row][col] = val
	}
}

func cellValue(id int, v []byte, sst []string) (string, error) {
	switch id {
	case brtCellBlank:
		return "", nil
	case brtCellRk:
		if len(v) < 4 {
			return "", errTruncatedRecord
		}
		return formatNumber(decodeRK(binary.LittleEndian.Uint32(v))), nil
	case brtCellReal, brtFmlaNum:
		if len(v) < 8 {
			return "", errTruncatedRecord
		}
		return formatNumber(math.Float64frombits(binary.LittleEndian.Uint64(v))), nil
	case brtCellSt, brtFmlaString:
		s, _, err := wideString(v, 0)
		return s, err
	case brtCellIsst:
		if len(v) < 4 {
			return "", errTruncatedRecord
		}
		idx := int(binary.LittleEndian.Uint32(v))
		if idx >= len(sst) {
			return "", fmt.Errorf("shared string %d out of range", idx)
		}
		return sst[idx], nil
	case brtCellBool, brtFmlaBool:
		if len(v) < 1 {
			return "", errTruncatedRecord
		}
		if v[0] != 0 {
			return "TRUE", nil
		}
		return "FALSE", nil
	case brtCellError, brtFmlaError:
		if len(v) < 1 {
			return "", errTruncatedRecord
		}
		if s, ok := xlsbErrorText[v[0]]; ok {
			return s, nil
		}
		return "#ERR", nil
	}
	return "", nil
}

// decodeRK unpacks the compact RK number encoding: bit 1 selects a 30-bit
// integer over the high bits of a float64, bit 0 divides by 100.
func decodeRK(v uint32) float64 {
	var f float64
	if v&0x02 != 0 {
		f = float64(int32(v) >> 2)
	} else {
		f = math.Float64frombits(uint64(v&0xFFFFFFFC) << 32)
	}
	if v&0x01 != 0 {
		f /= 100
	}
	return f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// recordReader walks a BIFF12 record stream.
type recordReader struct {
	data []byte
	pos  int
}

func (r *recordReader) next() (int, []byte, error) {
	if r.pos >= len(r.data) {
		return 0, nil, io.EOF
	}
	id, err := r.varint(2)
	if err != nil {
		return 0, nil, err
	}
	size, err := r.varint(4)
	if err != nil {
		return 0, nil, err
	}
	if size > len(r.data)-r.pos {
		return 0, nil, errTruncatedRecord
	}
	body := r.data[r.pos : r.pos+size]
	r.pos += size
	return id, body, nil
}

func (r *recordReader) varint(maxBytes int) (int, error) {
	v := 0
	for i := 0; i < maxBytes; i++ {
		if r.pos >= len(r.data) {
			return 0, errTruncatedRecord
		}
		b := r.data[r.pos]
		r.pos++
		v |= int(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// wideString decodes an XLWideString at off: a uint32 character count then
// UTF-16LE text. A count of 0xFFFFFFFF is the nullable empty form. It
// returns the offset just past the string.
func wideString(b []byte, off int) (string, int, error) {
	if off+4 > len(b) {
		return "", 0, errTruncatedRecord
	}
	n := binary.LittleEndian.Uint32(b[off:])
	off += 4
	if n == 0xFFFFFFFF {
		return "", off, nil
	}
	if uint64(n)*2 > uint64(len(b)-off) {
		return "", 0, errTruncatedRecord
	}
	end := off + int(n)*2
	s, err := utf16le.NewDecoder().Bytes(b[off:end])
	if err != nil {
		return "", 0, err
	}
	return string(s), end, nil
}

var (
	errMissingPart  = errors.New("missing package part")
	errPartTooLarge = errors.New("package part too large")
)

// maxPartSize caps the decompressed size of a single package part.
var maxPartSize int64 = 1 << 30

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		raw, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if int64(len(raw)) > maxPartSize {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", errPartTooLarge, name, maxPartSize)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", errMissingPart, name)
}

type relationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// readRels maps workbook relationship ids to package part names.
func readRels(zr *zip.Reader) (map[string]string, error) {
	raw, err := readPart(zr, xlsbRelsPart)
	if err != nil {
		return nil, err
	}

	var rels relationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("workbook relationships: %w", err)
	}

	targets := make(map[string]string, len(rels.Items))
	for _, r := range rels.Items {
		if strings.HasPrefix(r.Target, "/") {
			targets[r.ID] = strings.TrimPrefix(r.Target, "/")
		} else {
			targets[r.ID] = path.Join("xl", r.Target)
		}
	}
	return targets, nil
}
