package core

import (
	"strings"
	"time"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// Layer names a schema profile that selects which raw columns form the
// case log.
type Layer string

const (
	LayerSPF    Layer = "SPF"
	LayerClosed Layer = "Closed"
	LayerReopen Layer = "Reopen"
)

// Well-known column identifiers, in normalized form.
const (
	IncidentIDColumn = "incident_id"
	CaseIDColumn     = "case_id"
	VariantColumn    = "variant"
	ActivityColumn   = "activity"
	TimestampColumn  = "timestamp"
)

// LayerDefinition is the ordered list of expected columns for one layer.
type LayerDefinition struct {
	Layer       Layer    `json:"layer"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns"`
}

// Naming selects the artifact file names.
type Naming string

const (
	// NamingLayer prefixes artifacts with the layer: SPF_case_log.csv.
	NamingLayer Naming = "layer"
	// NamingFinal emits final_case_log.csv and final_event_log.csv only.
	NamingFinal Naming = "final"
)

// ParseNaming accepts "layer", "final" or "" (layer).
func ParseNaming(s string) (Naming, bool) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingLayer:
		return NamingLayer, true
	case NamingFinal:
		return NamingFinal, true
	}
	return "", false
}

// Options are the caller's toggles for one run.
type Options struct {
	LongFormat bool   // emit the long event log
	Variants   bool   // append the variant column to the case log
	Naming     Naming // artifact naming mode
}

// Request describes one pipeline invocation over an uploaded file.
type Request struct {
	FileName string
	Format   loader.Format // derived from FileName when empty
	Sheet    string
	Layer    Layer
	Options  Options
}

// Stats are row counts gathered along the pipeline.
type Stats struct {
	RawRows           int `json:"raw_rows"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Cases             int `json:"cases"`
	WideRows          int `json:"wide_rows"`
	LongRows          int `json:"long_rows"`
	DroppedTimestamps int `json:"dropped_timestamps"`
}

// Warning is a non-fatal condition reported alongside a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ArtifactKind identifies one of the downloadable outputs.
type ArtifactKind string

const (
	ArtifactCaseLog   ArtifactKind = "case_log"
	ArtifactEventWide ArtifactKind = "event_wide"
	ArtifactEventLong ArtifactKind = "event_long"
)

// Artifact is a named output table.
type Artifact struct {
	Kind  ArtifactKind
	Name  string
	Table *table.Table
}

// Result holds every output of a run. EventWide and EventLong are nil when
// they were not produced.
type Result struct {
	RunID     string
	Layer     Layer
	CaseLog   *table.Table
	EventWide *table.Table
	EventLong *table.Table
	Variants  map[string]string
	Stats     Stats
	Warnings  []Warning
	Artifacts []Artifact
	Duration  time.Duration
}

// Artifact returns the artifact of the given kind.
func (r *Result) Artifact(kind ArtifactKind) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}
