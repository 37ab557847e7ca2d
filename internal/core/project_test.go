package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

var testLayer = LayerDefinition{
	Layer:   "Test",
	Columns: []string{"incident_id", "status", "tier", "domain"},
}

func TestProjectCases(t *testing.T) {
	in := &table.Table{
		Columns: []string{"domain", "extra", "incident_id", "status"},
		Rows: [][]string{
			{"payments", "x", "INC1", "Open"},
			{"payments", "y", "INC1", "Closed"},
			{"ads", "z", "", "Open"},
			{"ads", "w", "INC2", "Closed"},
		},
	}

	out, err := ProjectCases(in, testLayer)
	require.NoError(t, err)

	assert.Equal(t, []string{"case_id", "status", "domain"}, out.Columns)
	assert.Equal(t, [][]string{
		{"INC1", "Open", "payments"},
		{"INC2", "Closed", "ads"},
	}, out.Rows)
}

func TestProjectCases_NoIncidentID(t *testing.T) {
	in := &table.Table{
		Columns: []string{"status"},
		Rows:    [][]string{{"Open"}, {"Open"}, {""}},
	}

	out, err := ProjectCases(in, testLayer)
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, out.Columns)
	assert.Equal(t, 3, out.Len(), "rows are kept when there is no case id")
}

func TestProjectCases_SchemaMismatch(t *testing.T) {
	in := &table.Table{Columns: []string{"foo", "bar"}, Rows: [][]string{}}

	_, err := ProjectCases(in, testLayer)
	require.Error(t, err)

	var sme *SchemaMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, Layer("Test"), sme.Layer)
	assert.Contains(t, err.Error(), "required columns not found")
}

func TestAttachVariants(t *testing.T) {
	caseLog := &table.Table{
		Columns: []string{"case_id", "status"},
		Rows: [][]string{
			{"INC1", "Open"},
			{"INC2", "Closed"},
		},
	}

	out := AttachVariants(caseLog, map[string]string{"INC1": "a > b", "INC9": "c"})

	assert.Equal(t, []string{"case_id", "status", "variant"}, out.Columns)
	assert.Equal(t, [][]string{
		{"INC1", "Open", "a > b"},
		{"INC2", "Closed", ""},
	}, out.Rows)
	assert.Len(t, caseLog.Columns, 2, "input header untouched")
}
