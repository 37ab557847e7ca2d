package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFile is returned when a run is requested without file content.
	ErrNoFile = errors.New("no file provided")

	// ErrUnknownLayer is returned for layer names missing from the registry.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrArtifactUnavailable is returned when a caller asks for an output
	// the run did not produce, such as the long log of a file without
	// event columns.
	ErrArtifactUnavailable = errors.New("artifact not available for this run")

	// ErrTooManyRuns is returned when every run slot stays busy for longer
	// than the limiter's wait time. Clients should retry after a short delay.
	ErrTooManyRuns = errors.New("too many runs in progress, please try again later")
)

// SchemaMismatchError reports that none of a layer's expected columns are
// present in the upload.
type SchemaMismatchError struct {
	Layer    Layer
	Expected []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("required columns not found in file for layer %s (expected any of: %s)",
		e.Layer, strings.Join(e.Expected, ", "))
}
