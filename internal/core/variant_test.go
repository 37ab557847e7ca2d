package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVariants(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{CaseID: "A", Activity: "incident_date_created", Timestamp: base},
		{CaseID: "A", Activity: "l1_to_l2_modified_time", Timestamp: base.Add(time.Hour)},
		{CaseID: "A", Activity: "incident_date_closed", Timestamp: base.Add(2 * time.Hour)},
		{CaseID: "B", Activity: "incident_date_created", Timestamp: base},
	}

	got := Variants(events)
	assert.Equal(t, map[string]string{
		"A": "incident_date_created > l1_to_l2_modified_time > incident_date_closed",
		"B": "incident_date_created",
	}, got)
}

func TestVariants_Empty(t *testing.T) {
	assert.Empty(t, Variants(nil))
}
