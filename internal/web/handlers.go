package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/web/middleware"
)

// WarningHeader repeats once per pipeline warning on process responses.
const WarningHeader = "X-Pipeline-Warning"

// SheetsResponse lists the sheets of an uploaded workbook.
type SheetsResponse struct {
	Format loader.Format `json:"format"`
	Sheets []string      `json:"sheets"`
}

// HealthResponse reports liveness and run capacity.
type HealthResponse struct {
	Status       string                `json:"status"`
	Runs         core.RunLimiterStatus `json:"runs"`
	CacheEntries int                   `json:"cacheEntries"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Runs:   s.service.Limiter().Status(),
	}
	if c := s.service.Cache(); c != nil {
		resp.CacheEntries = c.Len()
	}
	render.JSON(w, r, resp)
}

// handleListLayers returns the registered layer schemas.
func (s *Server) handleListLayers(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.service.ListLayers())
}

// handleSheets lists the sheets of an uploaded workbook so the client can
// pick one before processing.
func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format, err := requestFormat(r.FormValue("format"), up.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sheets, err := s.service.ListSheets(r.Context(), up.Data, up.Name, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if sheets == nil {
		sheets = []string{}
	}

	render.JSON(w, r, SheetsResponse{Format: format, Sheets: sheets})
}

// handleProcess runs the pipeline and returns either every artifact as a
// ZIP archive or, when artifact is set, that single CSV.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	res, form, ok := s.run(w, r)
	if !ok {
		return
	}

	var (
		body        []byte
		contentType string
		fileName    string
		err         error
	)
	if form.Artifact != "" {
		a, found := res.Artifact(core.ArtifactKind(form.Artifact))
		if !found {
			s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrArtifactUnavailable, form.Artifact))
			return
		}
		body, err = a.CSV()
		contentType = "text/csv; charset=utf-8"
		fileName = a.Name
	} else {
		var buf bytes.Buffer
		err = writeArchive(&buf, res.Artifacts)
		body = buf.Bytes()
		contentType = "application/zip"
		fileName = archiveName(res)
	}
	if err != nil {
		s.respondError(w, r, fmt.Errorf("render artifacts: %w", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleSummary runs the pipeline and returns stats, warnings and a
// preview of each artifact as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, form, ok := s.run(w, r)
	if !ok {
		return
	}

	limit := core.DefaultPreviewRows
	if form.Rows != "" {
		if n, err := strconv.Atoi(form.Rows); err == nil {
			limit = n
		}
	}
	render.JSON(w, r, core.Summarize(res, limit))
}

// run reads the upload and executes the pipeline. On failure it writes the
// error response and returns false.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*core.Result, processForm, bool) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return nil, processForm{}, false
	}

	req, form, err := s.parseProcessForm(r, up)
	if err != nil {
		s.respondError(w, r, err)
		return nil, form, false
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Process(ctx, up.Data, req)
	if err != nil {
		s.respondError(w, r, err)
		return nil, form, false
	}

	w.Header().Set(middleware.RunIDHeader, res.RunID)
	for _, warn := range res.Warnings {
		w.Header().Add(WarningHeader, warn.Code+": "+warn.Message)
	}
	return res, form, true
}

// requestFormat prefers an explicit format field over the file extension.
func requestFormat(field, fileName string) (loader.Format, error) {
	if field != "" {
		return loader.ParseFormat(field)
	}
	return loader.FormatFromFileName(fileName)
}
