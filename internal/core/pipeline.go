package core

import (
	"fmt"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// Warning codes.
const (
	WarnMissingEventColumns = "EVT001"
	WarnNoEventCaseID       = "EVT002"
)

// Run executes the whole pipeline over a loaded table. It is a pure
// function of its arguments: raw is never modified and no state survives
// the call. The only errors are an unknown layer and a schema mismatch.
func Run(raw *table.Table, layer Layer, opts Options) (*Result, error) {
	def, ok := GetLayer(layer)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	if opts.Naming == "" {
		opts.Naming = NamingLayer
	}

	norm, nstats := Normalize(raw)

	caseLog, err := ProjectCases(norm, def)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Layer: def.Layer,
		Stats: Stats{
			RawRows:           raw.Len(),
			DuplicatesRemoved: nstats.DuplicatesRemoved,
		},
	}

	var variants map[string]string
	if wide, ok := WideEvents(norm); !ok {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnMissingEventColumns,
			Message: "Event timestamp columns not found.",
		})
	} else {
		res.EventWide = wide
		res.Stats.WideRows = wide.Len()

		if !wide.Has(CaseIDColumn) {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnNoEventCaseID,
				Message: "incident_id column not found; long event log and variants skipped.",
			})
		} else {
			events, dropped := LongEvents(wide)
			res.Stats.DroppedTimestamps = dropped

			if opts.LongFormat || opts.Naming == NamingFinal {
				res.EventLong = EventTable(events)
				res.Stats.LongRows = res.EventLong.Len()
			}
			if opts.Variants {
				variants = Variants(events)
			}
		}
	}

	if variants != nil {
		caseLog = AttachVariants(caseLog, variants)
		res.Variants = variants
	}
	res.CaseLog = caseLog
	res.Stats.Cases = caseLog.Len()
	res.Artifacts = artifacts(def.Layer, opts.Naming, res)

	return res, nil
}

// artifacts names the produced tables for download.
func artifacts(layer Layer, naming Naming, res *Result) []Artifact {
	if naming == NamingFinal {
		out := []Artifact{{Kind: ArtifactCaseLog, Name: "final_case_log.csv", Table: res.CaseLog}}
		if res.EventLong != nil {
			out = append(out, Artifact{Kind: ArtifactEventLong, Name: "final_event_log.csv", Table: res.EventLong})
		}
		return out
	}

	out := []Artifact{{Kind: ArtifactCaseLog, Name: fmt.Sprintf("%s_case_log.csv", layer), Table: res.CaseLog}}
	if res.EventWide != nil {
		out = append(out, Artifact{Kind: ArtifactEventWide, Name: fmt.Sprintf("%s_event_wide.csv", layer), Table: res.EventWide})
	}
	if res.EventLong != nil {
		out = append(out, Artifact{Kind: ArtifactEventLong, Name: fmt.Sprintf("%s_event_long.csv", layer), Table: res.EventLong})
	}
	return out
}

// CSV renders the artifact's table.
func (a Artifact) CSV() ([]byte, error) {
	return a.Table.EncodeCSV()
}
