package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
)

const serviceCSV = "Incident ID,Status,Incident Date Created,Incident Date Closed\n" +
	"INC1,Open,2024-01-01,2024-01-02\n" +
	"INC2,Closed,2024-01-03,bad\n"

func processRequest() core.Request {
	return core.Request{
		FileName: "export.csv",
		Layer:    core.LayerSPF,
		Options:  core.Options{LongFormat: true, Variants: true},
	}
}

func TestService_Process(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{})

	res, err := svc.Process(context.Background(), []byte(serviceCSV), processRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, core.LayerSPF, res.Layer)
	assert.Equal(t, 2, res.Stats.Cases)
	assert.Equal(t, 3, res.Stats.LongRows)
	assert.Equal(t, 1, res.Stats.DroppedTimestamps)
	assert.Len(t, res.Artifacts, 3)
	assert.Zero(t, svc.Limiter().ActiveCount(), "slot released")
}

func TestService_ProcessRunContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := core.ContextWithRunID(context.Background(), "run-42")
	ctx = core.ContextWithIPAddress(ctx, "10.0.0.7")
	ctx = core.ContextWithUserAgent(ctx, "processlog-test/1.0")

	svc := core.NewService(core.ServiceConfig{})
	res, err := svc.Process(ctx, []byte(serviceCSV), processRequest())
	require.NoError(t, err)
	assert.Equal(t, "run-42", res.RunID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "run completed", entry["msg"])
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, "10.0.0.7", entry["client_ip"])
	assert.Equal(t, "processlog-test/1.0", entry["user_agent"])
}

func TestService_ProcessErrors(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{MaxFileSize: 64})

	tests := []struct {
		name     string
		data     string
		mutate   func(*core.Request)
		wantCode string
	}{
		{"empty upload", "", nil, "FILE004"},
		{"too large", serviceCSV, nil, "FILE001"},
		{"unsupported extension", "a,b\n", func(r *core.Request) { r.FileName = "export.ods" }, "FILE006"},
		{"unknown layer", "a,b\n", func(r *core.Request) { r.Layer = "Weekly" }, "VAL007"},
		{"schema mismatch", "a,b\n1,2\n", nil, "VAL004"},
		{"ragged csv", "Incident ID\nINC1,extra\n", nil, "FILE002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := processRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := svc.Process(context.Background(), []byte(tt.data), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, core.MapError(err).Code, "error: %v", err)
		})
	}
}

func TestService_ProcessCancelled(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, []byte(serviceCSV), processRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestService_ProcessBusy(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})

	require.True(t, svc.Limiter().TryAcquire())
	defer svc.Limiter().Release()

	_, err := svc.Process(context.Background(), []byte(serviceCSV), processRequest())
	assert.ErrorIs(t, err, core.ErrTooManyRuns)
}

func TestService_ListSheets(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{})

	sheets, err := svc.ListSheets(context.Background(), []byte(serviceCSV), "export.csv", "")
	require.NoError(t, err)
	assert.Nil(t, sheets)

	_, err = svc.ListSheets(context.Background(), []byte("not a zip"), "book.xlsx", "")
	require.Error(t, err)
	assert.Equal(t, "FILE002", core.MapError(err).Code)

	_, err = svc.ListSheets(context.Background(), []byte("x"), "book", loader.FormatXLSX)
	require.Error(t, err, "explicit format overrides the missing extension")
}

func TestService_CacheAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := core.NewService(core.ServiceConfig{
		CacheEnabled: true,
		Registerer:   reg,
	})
	require.NotNil(t, svc.Cache())

	for i := 0; i < 2; i++ {
		_, err := svc.Process(context.Background(), []byte(serviceCSV), processRequest())
		require.NoError(t, err)
	}
	_, err := svc.Process(context.Background(), []byte("a,b\n1,2\n"), processRequest())
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(families, "processlog_runs_total", "outcome", "success"))
	assert.Equal(t, 1.0, counterValue(families, "processlog_runs_total", "outcome", "failed"))
	assert.Equal(t, 1.0, counterValue(families, "processlog_cache_lookups_total", "result", "hit"))
	assert.Equal(t, 2.0, counterValue(families, "processlog_cache_lookups_total", "result", "miss"))
	assert.Equal(t, 2.0, counterValue(families, "processlog_dropped_timestamps_total", "", ""))
	assert.Equal(t, 6.0, counterValue(families, "processlog_rows_total", "artifact", "event_long"))
}

func counterValue(families []*dto.MetricFamily, name, label, value string) float64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			if label != "" && !hasLabel(m, label, value) {
				continue
			}
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
