package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	_ "github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core/layers"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

func reopenExport() *table.Table {
	return &table.Table{
		Columns: []string{
			"Incident ID", "Status", "Disposition", "Tier",
			"Incident Date Created", "L1 to L2 Modified Time", "Incident Date Closed",
		},
		Rows: [][]string{
			{"INC2", "Open", "Resolved", "T1", "2024-01-02 08:00", "2024-01-02 09:00", "2024-01-03 10:00"},
			{"INC1", "Closed", "Resolved", "T2", "2024-01-01", "", "2024-01-05"},
			{"INC3", "Closed", "Duplicate Incident", "T1", "2024-01-01", "2024-01-01", "2024-01-01"},
			{"", "Open", "", "T3", "2024-01-04", "", ""},
			{"INC4", "Open", "", "T1", "unknown", "", ""},
		},
	}
}

func artifactNames(res *core.Result) []string {
	names := make([]string, len(res.Artifacts))
	for i, a := range res.Artifacts {
		names[i] = a.Name
	}
	return names
}

func TestRun_LayerNaming(t *testing.T) {
	res, err := core.Run(reopenExport(), core.LayerReopen, core.Options{LongFormat: true, Variants: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Reopen_case_log.csv",
		"Reopen_event_wide.csv",
		"Reopen_event_long.csv",
	}, artifactNames(res))
	assert.Empty(t, res.Warnings)

	assert.Equal(t, []string{"case_id", "disposition", "status", "tier", "variant"}, res.CaseLog.Columns)
	assert.Equal(t, [][]string{
		{"INC2", "Resolved", "Open", "T1", "incident_date_created > l1_to_l2_modified_time > incident_date_closed"},
		{"INC1", "Resolved", "Closed", "T2", "incident_date_created > incident_date_closed"},
		{"INC4", "", "Open", "T1", ""},
	}, res.CaseLog.Rows)

	assert.Equal(t, []string{"case_id", "incident_date_created", "l1_to_l2_modified_time", "incident_date_closed"}, res.EventWide.Columns)
	assert.Equal(t, 4, res.EventWide.Len())

	assert.Equal(t, [][]string{
		{"INC1", "incident_date_created", "2024-01-01 00:00:00"},
		{"INC1", "incident_date_closed", "2024-01-05 00:00:00"},
		{"INC2", "incident_date_created", "2024-01-02 08:00:00"},
		{"INC2", "l1_to_l2_modified_time", "2024-01-02 09:00:00"},
		{"INC2", "incident_date_closed", "2024-01-03 10:00:00"},
	}, res.EventLong.Rows)

	assert.Equal(t, core.Stats{
		RawRows:           5,
		DuplicatesRemoved: 1,
		Cases:             3,
		WideRows:          4,
		LongRows:          5,
		DroppedTimestamps: 6,
	}, res.Stats)
}

func TestRun_FinalNaming(t *testing.T) {
	res, err := core.Run(reopenExport(), core.LayerReopen, core.Options{Naming: core.NamingFinal})
	require.NoError(t, err)

	assert.Equal(t, []string{"final_case_log.csv", "final_event_log.csv"}, artifactNames(res))
	assert.NotContains(t, res.CaseLog.Columns, core.VariantColumn)

	long, ok := res.Artifact(core.ArtifactEventLong)
	require.True(t, ok)
	assert.Equal(t, 5, long.Table.Len())

	_, ok = res.Artifact(core.ArtifactEventWide)
	assert.False(t, ok)
}

func TestRun_WithoutLongFormat(t *testing.T) {
	res, err := core.Run(reopenExport(), core.LayerReopen, core.Options{})
	require.NoError(t, err)

	assert.Nil(t, res.EventLong)
	assert.Equal(t, []string{"Reopen_case_log.csv", "Reopen_event_wide.csv"}, artifactNames(res))
	assert.Equal(t, 6, res.Stats.DroppedTimestamps)
	assert.Zero(t, res.Stats.LongRows)
}

func TestRun_MissingEventColumns(t *testing.T) {
	raw := &table.Table{
		Columns: []string{"Incident ID", "Status"},
		Rows:    [][]string{{"INC1", "Open"}},
	}

	res, err := core.Run(raw, core.LayerSPF, core.Options{LongFormat: true, Variants: true})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, core.WarnMissingEventColumns, res.Warnings[0].Code)
	assert.Equal(t, "Event timestamp columns not found.", res.Warnings[0].Message)
	assert.Nil(t, res.EventWide)
	assert.Nil(t, res.EventLong)
	assert.Equal(t, []string{"case_id", "status"}, res.CaseLog.Columns, "no variant column without events")
	assert.Equal(t, []string{"SPF_case_log.csv"}, artifactNames(res))
}

func TestRun_EventsWithoutIncidentID(t *testing.T) {
	raw := &table.Table{
		Columns: []string{"Status", "Incident Date Created", "Incident Date Closed"},
		Rows:    [][]string{{"Open", "2024-01-01", "2024-01-02"}},
	}

	res, err := core.Run(raw, core.LayerSPF, core.Options{LongFormat: true, Variants: true})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, core.WarnNoEventCaseID, res.Warnings[0].Code)
	require.NotNil(t, res.EventWide)
	assert.Nil(t, res.EventLong)
	assert.Equal(t, []string{"status"}, res.CaseLog.Columns)
}

func TestRun_SchemaMismatch(t *testing.T) {
	raw := &table.Table{
		Columns: []string{"foo", "bar"},
		Rows:    [][]string{{"1", "2"}},
	}

	_, err := core.Run(raw, core.LayerClosed, core.Options{})
	require.Error(t, err)

	var sme *core.SchemaMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, core.LayerClosed, sme.Layer)
	assert.Equal(t, "VAL004", core.MapError(err).Code)
}

func TestRun_UnknownLayer(t *testing.T) {
	_, err := core.Run(reopenExport(), "Weekly", core.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownLayer))
}

func TestRun_HeaderOnlyTable(t *testing.T) {
	raw := table.New([]string{"Incident ID", "Status", "Incident Date Created", "Incident Date Closed"})

	res, err := core.Run(raw, core.LayerSPF, core.Options{LongFormat: true, Variants: true})
	require.NoError(t, err)

	assert.Zero(t, res.CaseLog.Len())
	assert.Equal(t, []string{"case_id", "status", "variant"}, res.CaseLog.Columns)
	assert.Zero(t, res.EventWide.Len())
	assert.Zero(t, res.EventLong.Len())
	assert.Equal(t, []string{"case_id", "activity", "timestamp"}, res.EventLong.Columns)

	for _, a := range res.Artifacts {
		data, err := a.CSV()
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "\n"), "%s should be header only", a.Name)
	}
}

func TestRun_InputUntouchedAndRepeatable(t *testing.T) {
	raw := reopenExport()
	before := raw.Clone()
	opts := core.Options{LongFormat: true, Variants: true}

	first, err := core.Run(raw, core.LayerReopen, opts)
	require.NoError(t, err)
	second, err := core.Run(raw, core.LayerReopen, opts)
	require.NoError(t, err)

	assert.Equal(t, before, raw)
	require.Equal(t, len(first.Artifacts), len(second.Artifacts))
	for i := range first.Artifacts {
		a, err := first.Artifacts[i].CSV()
		require.NoError(t, err)
		b, err := second.Artifacts[i].CSV()
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestArtifactCSV(t *testing.T) {
	res, err := core.Run(reopenExport(), core.LayerReopen, core.Options{LongFormat: true})
	require.NoError(t, err)

	long, ok := res.Artifact(core.ArtifactEventLong)
	require.True(t, ok)

	data, err := long.CSV()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "case_id,activity,timestamp", lines[0])
	assert.Equal(t, "INC1,incident_date_created,2024-01-01 00:00:00", lines[1])
}

func TestSummarize(t *testing.T) {
	res, err := core.Run(reopenExport(), core.LayerReopen, core.Options{LongFormat: true})
	require.NoError(t, err)

	sum := core.Summarize(res, 2)
	assert.Equal(t, core.LayerReopen, sum.Layer)
	assert.NotNil(t, sum.Warnings)
	require.Len(t, sum.Artifacts, 3)

	long := sum.Artifacts[2]
	assert.Equal(t, "Reopen_event_long.csv", long.Name)
	assert.Len(t, long.Rows, 2)
	assert.Equal(t, 5, long.TotalRows)
	assert.True(t, long.Truncated)

	caseLog := core.Summarize(res, 0).Artifacts[0]
	assert.Equal(t, 3, caseLog.TotalRows)
	assert.False(t, caseLog.Truncated)
}

func TestRun_WorkbookNumericIDsStayDistinct(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Incident ID", "Status"}))
	ids := []int64{123456789012, 123456789013, 1234567890123456, 1234567890123457}
	for i, id := range ids {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &[]any{id, "Open"}))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	raw, err := loader.Load(buf.Bytes(), loader.FormatXLSX, "Sheet1")
	require.NoError(t, err)

	res, err := core.Run(raw, core.LayerSPF, core.Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Cases)
	assert.Equal(t, []string{"123456789012", "123456789013", "1234567890123456", "1234567890123457"},
		res.CaseLog.Column(core.CaseIDColumn))
}
