package core

import (
	"sort"
	"time"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// EventColumns are the recognized event columns in their fixed order. The
// first is the case key, the rest are activities.
var EventColumns = []string{
	IncidentIDColumn,
	"incident_date_created",
	"l1_to_l2_modified_time",
	"escalated_to_l3_date",
	"incident_date_closed",
}

// minEventColumns is incident_id plus one activity.
const minEventColumns = 2

// Event is one timestamped activity of a case.
type Event struct {
	CaseID    string
	Activity  string
	Timestamp time.Time
}

// WideEvents keeps the recognized event columns present in t, renaming
// incident_id to case_id. Cells keep their raw text and every row is kept.
// It returns false when fewer than two event columns are present.
func WideEvents(t *table.Table) (*table.Table, bool) {
	var cols []string
	for _, c := range EventColumns {
		if t.Has(c) {
			cols = append(cols, c)
		}
	}
	if len(cols) < minEventColumns {
		return nil, false
	}
	return t.Select(cols).Rename(IncidentIDColumn, CaseIDColumn), true
}

// LongEvents unpivots a wide event table into one event per parsable
// cell. Cells are visited column by column, so ties keep that order after
// the stable sort by (case_id, timestamp). Empty or unparsable cells are
// dropped and counted; rows without a case id are dropped silently.
func LongEvents(wide *table.Table) ([]Event, int) {
	ci := wide.Index(CaseIDColumn)
	if ci < 0 {
		return []Event{}, 0
	}

	events := make([]Event, 0, wide.Len()*(len(wide.Columns)-1))
	dropped := 0
	for c, activity := range wide.Columns {
		if c == ci {
			continue
		}
		for _, row := range wide.Rows {
			ts, ok := ParseTimestamp(row[c])
			if !ok {
				dropped++
				continue
			}
			if row[ci] == "" {
				continue
			}
			events = append(events, Event{CaseID: row[ci], Activity: activity, Timestamp: ts})
		}
	}

	SortEvents(events)
	return events, dropped
}

// SortEvents orders events by case id, then timestamp, keeping the
// relative order of ties.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CaseID != events[j].CaseID {
			return events[i].CaseID < events[j].CaseID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// EventTable renders events as a (case_id, activity, timestamp) table.
// All timestamps share one layout chosen from the whole column.
func EventTable(events []Event) *table.Table {
	out := table.New([]string{CaseIDColumn, ActivityColumn, TimestampColumn})
	if len(events) == 0 {
		return out
	}

	ts := make([]time.Time, len(events))
	for i, e := range events {
		ts[i] = e.Timestamp
	}
	layout := timestampLayout(ts)

	out.Rows = make([][]string, len(events))
	for i, e := range events {
		out.Rows[i] = []string{e.CaseID, e.Activity, e.Timestamp.Format(layout)}
	}
	return out
}
