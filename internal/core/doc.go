// Package core provides the reshaping pipeline that turns incident exports
// into process-mining logs.
//
// This package holds all domain logic independent of any transport. It can
// be used by web handlers, the CLI, or tests without modification.
//
// # Pipeline
//
// A run is a pure function of (table, layer, options):
//
//  1. [Normalize] standardizes headers and drops duplicate incidents
//  2. [ProjectCases] selects the layer's columns and dedups by case_id
//  3. [WideEvents] keeps the recognized timestamp columns
//  4. [LongEvents] unpivots, parses timestamps and sorts
//  5. [Variants] joins each case's activities with " > "
//
// [Run] wires the stages together and returns a [Result] holding every
// artifact. [Service.Process] adds loading, caching, run limiting and
// metrics around it.
//
// # Layer Registry
//
// Layer schemas are data. Each layer is registered at init time using
// [RegisterLayer], typically from the layers subpackage:
//
//	core.RegisterLayer(core.LayerDefinition{
//	    Layer:   core.LayerSPF,
//	    Label:   "SPF",
//	    Columns: []string{"incident_id", "status", "domain"},
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE008: File errors (size, parsing, format, sheets)
//   - VAL004, VAL007-VAL009: Request errors (no matching columns, unknown
//     layer, invalid field, artifact not produced)
//   - UPL002, UPL004-UPL005: Run errors (busy, cancelled, timeout)
//
// Missing event columns are not errors; they are reported as a [Warning]
// on the [Result].
package core
