package loader

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// biff12 writes a BIFF12 record stream for test workbooks.
type biff12 struct {
	bytes.Buffer
}

func (b *biff12) varint(v int) {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v > 0 {
			c |= 0x80
		}
		b.WriteByte(c)
		if v == 0 {
			return
		}
	}
}

func (b *biff12) record(id int, body ...[]byte) {
	size := 0
	for _, p := range body {
		size += len(p)
	}
	b.varint(id)
	b.varint(size)
	for _, p := range body {
		b.Write(p)
	}
}

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func wide(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := u32(uint32(len(units)))
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}

func cellHeader(col int) []byte {
	return append(u32(uint32(col)), 0, 0, 0, 0)
}

type xlsbCell struct {
	col   int
	id    int
	value []byte
}

type xlsbTestSheet struct {
	name string
	rows map[int][]xlsbCell
}

func buildXLSB(t *testing.T, sst []string, sheets ...xlsbTestSheet) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	put := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}

	var wb biff12
	wb.record(131) // BrtBeginBook
	rels := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
	for i, s := range sheets {
		rid := "rId" + string(rune('1'+i))
		part := "worksheets/sheet" + string(rune('1'+i)) + ".bin"
		rels += `<Relationship Id="` + rid + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="` + part + `"/>`
		wb.record(brtBundleSh, u32(0), u32(uint32(i+1)), wide(rid), wide(s.name))

		var ws biff12
		ws.record(brtBeginSheetData)
		for r := 0; r < 64; r++ {
			cells, ok := s.rows[r]
			if !ok {
				continue
			}
			ws.record(brtRowHdr, u32(uint32(r)), make([]byte, 8))
			for _, c := range cells {
				ws.record(c.id, cellHeader(c.col), c.value)
			}
		}
		ws.record(brtEndSheetData)
		put("xl/"+part, ws.Bytes())
	}
	rels += `</Relationships>`
	wb.record(132) // BrtEndBook

	put("xl/workbook.bin", wb.Bytes())
	put("xl/_rels/workbook.bin.rels", []byte(rels))

	if sst != nil {
		var ss biff12
		ss.record(159, u32(uint32(len(sst))), u32(uint32(len(sst))))
		for _, s := range sst {
			ss.record(brtSSTItem, []byte{0}, wide(s))
		}
		ss.record(160)
		put("xl/sharedStrings.bin", ss.Bytes())
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func rk(v uint32) []byte { return u32(v) }

func real64(f float64) []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))
}

func TestLoad_XLSB(t *testing.T) {
	data := buildXLSB(t,
		[]string{"incident_id", "status", "INC-1", "Open"},
		xlsbTestSheet{name: "Cover", rows: map[int][]xlsbCell{
			0: {{col: 0, id: brtCellSt, value: wide("cover page")}},
		}},
		xlsbTestSheet{name: "Tickets", rows: map[int][]xlsbCell{
			0: {
				{col: 0, id: brtCellIsst, value: u32(0)},
				{col: 1, id: brtCellIsst, value: u32(1)},
				{col: 2, id: brtCellSt, value: wide("score")},
				{col: 3, id: brtCellSt, value: wide("flag")},
			},
			1: {
				{col: 0, id: brtCellIsst, value: u32(2)},
				{col: 1, id: brtCellIsst, value: u32(3)},
				{col: 2, id: brtCellReal, value: real64(2.5)},
				{col: 3, id: brtCellBool, value: []byte{1}},
			},
			// row 2 left out entirely
			3: {
				{col: 0, id: brtCellSt, value: wide("INC-2")},
				{col: 2, id: brtCellRk, value: rk(7<<2 | 0x02)},
				{col: 3, id: brtCellError, value: []byte{0x2A}},
			},
		}},
	)

	names, err := Sheets(data, FormatXLSB)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cover", "Tickets"}, names)

	tbl, err := Load(data, FormatXLSB, "Tickets")
	require.NoError(t, err)
	assert.Equal(t, []string{"incident_id", "status", "score", "flag"}, tbl.Columns)
	assert.Equal(t, [][]string{
		{"INC-1", "Open", "2.5", "TRUE"},
		{"INC-2", "", "7", "#N/A"},
	}, tbl.Rows)

	_, err = Load(data, FormatXLSB, "Nope")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLoad_XLSBWithoutSharedStrings(t *testing.T) {
	data := buildXLSB(t, nil, xlsbTestSheet{name: "Sheet1", rows: map[int][]xlsbCell{
		0: {{col: 0, id: brtCellSt, value: wide("ünïcode")}},
		1: {{col: 0, id: brtFmlaString, value: append(wide("from formula"), 0, 0)}},
	}})

	tbl, err := Load(data, FormatXLSB, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ünïcode"}, tbl.Columns)
	assert.Equal(t, [][]string{{"from formula"}}, tbl.Rows)
}

func TestLoad_XLSBTruncatedRecord(t *testing.T) {
	data := buildXLSB(t, nil, xlsbTestSheet{name: "Sheet1", rows: map[int][]xlsbCell{
		0: {{col: 0, id: brtCellReal, value: []byte{1, 2}}},
	}})

	_, err := Load(data, FormatXLSB, "Sheet1")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, errTruncatedRecord)
}

func TestLoad_XLSBPartSizeCap(t *testing.T) {
	data := buildXLSB(t, []string{"incident_id"}, xlsbTestSheet{name: "Sheet1", rows: map[int][]xlsbCell{
		0: {{col: 0, id: brtCellIsst, value: u32(0)}},
	}})

	prev := maxPartSize
	maxPartSize = 16
	t.Cleanup(func() { maxPartSize = prev })

	_, err := Sheets(data, FormatXLSB)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, errPartTooLarge)

	_, err = Load(data, FormatXLSB, "Sheet1")
	assert.ErrorIs(t, err, errPartTooLarge)
}

func TestDecodeRK(t *testing.T) {
	negInt := int32(-3)
	neg := uint32(negInt<<2) | 0x02

	tests := []struct {
		name string
		v    uint32
		want float64
	}{
		{"integer", 5<<2 | 0x02, 5},
		{"negative integer", neg, -3},
		{"integer over 100", 1234<<2 | 0x03, 12.34},
		{"float", uint32(math.Float64bits(1.5) >> 32), 1.5},
		{"float over 100", uint32(math.Float64bits(150) >> 32) | 0x01, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, decodeRK(tt.v), 1e-9)
		})
	}
}

func TestRecordReader_Varints(t *testing.T) {
	var b biff12
	b.record(brtBundleSh, make([]byte, 200))

	rr := recordReader{data: b.Bytes()}
	id, body, err := rr.next()
	require.NoError(t, err)
	assert.Equal(t, brtBundleSh, id)
	assert.Len(t, body, 200)
}
