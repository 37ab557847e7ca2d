package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/logging"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// DefaultRunTimeout bounds a single run, load included.
const DefaultRunTimeout = 10 * time.Minute

// ServiceConfig holds the tunables of a Service. Zero values pick the
// package defaults.
type ServiceConfig struct {
	MaxFileSize     int64
	MaxConcurrent   int
	MaxWait         time.Duration
	RunTimeout      time.Duration
	CacheEnabled    bool
	CacheMaxEntries int
	CacheTTL        time.Duration

	// Registerer receives the pipeline metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// Service runs the pipeline for uploaded files. It is safe for concurrent
// use; runs share nothing but the load cache, which hands out copies.
type Service struct {
	cfg     ServiceConfig
	limiter *RunLimiter
	cache   *LoadCache
	metrics *Metrics
}

// NewService creates a Service from cfg.
func NewService(cfg ServiceConfig) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = loader.DefaultMaxSize
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	s := &Service{
		cfg:     cfg,
		limiter: NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWait),
	}
	if cfg.CacheEnabled {
		s.cache = NewLoadCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	}
	if cfg.Registerer != nil {
		s.metrics = NewMetrics(cfg.Registerer)
	}
	return s
}

// ListLayers returns every registered layer definition.
func (s *Service) ListLayers() []LayerDefinition {
	return Layers()
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Limiter exposes the run limiter for status reporting.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// Cache returns the load cache, or nil when caching is disabled.
func (s *Service) Cache() *LoadCache {
	return s.cache
}

// WaitForDrain blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ListSheets returns the sheet names of a workbook in file order. CSV
// files have no sheets and return nil.
func (s *Service) ListSheets(ctx context.Context, data []byte, fileName string, format loader.Format) ([]string, error) {
	if err := loader.CheckSize(int64(len(data)), s.cfg.MaxFileSize); err != nil {
		return nil, err
	}
	f, err := resolveFormat(fileName, format)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.Sheets(data, f)
}

// Process loads data and runs the pipeline described by req. A run ID
// already on ctx is reused; otherwise a new one is assigned.
func (s *Service) Process(ctx context.Context, data []byte, req Request) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	runID := GetRunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.New().String()
		ctx = ContextWithRunID(ctx, runID)
	}
	logger := logging.WithFields(ctx,
		"run_id", runID,
		"layer", string(req.Layer),
		"file", req.FileName,
	)
	if ip := GetIPAddressFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	if ua := GetUserAgentFromContext(ctx); ua != "" {
		logger = logger.With("user_agent", ua)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.observeRun(req.Layer, outcomeRejected, 0)
		logger.Warn("run rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.process(ctx, data, req)
	if err != nil {
		s.metrics.observeRun(req.Layer, outcomeFailed, time.Since(start))
		logger.Error("run failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	res.RunID = runID
	res.Duration = time.Since(start)
	s.metrics.observeRun(res.Layer, outcomeSuccess, res.Duration)
	s.metrics.observeResult(res)

	logger.Info("run completed",
		"raw_rows", res.Stats.RawRows,
		"cases", res.Stats.Cases,
		"long_rows", res.Stats.LongRows,
		"dropped_timestamps", res.Stats.DroppedTimestamps,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Service) process(ctx context.Context, data []byte, req Request) (*Result, error) {
	if err := loader.CheckSize(int64(len(data)), s.cfg.MaxFileSize); err != nil {
		return nil, err
	}
	if _, ok := GetLayer(req.Layer); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, req.Layer)
	}
	f, err := resolveFormat(req.FileName, req.Format)
	if err != nil {
		return nil, err
	}

	raw, err := s.load(data, req.FileName, f, req.Sheet)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := Run(raw, req.Layer, req.Options)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) load(data []byte, name string, f loader.Format, sheet string) (*table.Table, error) {
	if s.cache == nil {
		return loader.Load(data, f, sheet)
	}
	t, hit, err := s.cache.Load(data, name, f, sheet)
	if err != nil {
		return nil, err
	}
	s.metrics.observeCache(hit)
	s.metrics.setCacheEntries(s.cache.Len())
	return t, nil
}

// resolveFormat prefers an explicit format over the file extension.
func resolveFormat(fileName string, f loader.Format) (loader.Format, error) {
	if f != "" {
		return f, nil
	}
	return loader.FormatFromFileName(fileName)
}
