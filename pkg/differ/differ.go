package differ

import (
	"github.com/agentstation/tablesync/pkg/index"
	"github.com/agentstation/tablesync/pkg/record"
)

// Differ handles change detection between the CSV and remote record sets.
type Differ struct {
	pivotColumn  string
	checkColumns []string
}

// New creates a Differ. The pivot column names the key used to match rows;
// checkColumns is the ordered subset of columns that decide staleness.
func New(pivotColumn string, checkColumns []string) *Differ {
	return &Differ{
		pivotColumn:  pivotColumn,
		checkColumns: append([]string(nil), checkColumns...),
	}
}

// Diff walks the CSV index in input order and cross-references the remote
// index, producing the plan for one run.
//
// For each CSV record: no remote match emits a create; a match with at
// least one stale checked column emits an update addressed by the remote
// identifier; a fully current match is counted as skipped and emits
// nothing. Remote records with no CSV counterpart are counted as orphans
// and never acted on.
func (d *Differ) Diff(csv *index.Index[record.Record], remote *index.Index[record.RemoteRecord]) *Plan {
	plan := &Plan{}

	for _, key := range csv.Keys() {
		rec, _ := csv.Get(key)

		remoteRec, matched := remote.Get(key)
		if !matched {
			plan.actions = append(plan.actions, Action{
				Type:    ActionCreate,
				Pivot:   key,
				Payload: d.createPayload(rec),
			})
			continue
		}

		changes := d.compare(rec, remoteRec.Record)
		if len(changes) == 0 {
			plan.skipped++
			continue
		}

		plan.actions = append(plan.actions, Action{
			Type:     ActionUpdate,
			Pivot:    key,
			RemoteID: remoteRec.ID,
			Payload:  rec.Select(d.checkColumns...),
			Changes:  changes,
		})
	}

	for _, key := range remote.Keys() {
		if !csv.Has(key) {
			plan.orphans++
		}
	}

	return plan
}

// compare returns the checked columns whose CSV value differs from the
// remote value under normalized equality.
func (d *Differ) compare(csv, remote record.Record) []FieldChange {
	var changes []FieldChange
	for _, col := range d.checkColumns {
		csvVal, _ := csv.Value(col)
		remoteVal, _ := remote.Value(col)
		if record.Equivalent(csvVal, remoteVal) {
			continue
		}
		changes = append(changes, FieldChange{
			Column:   col,
			OldValue: record.Display(remoteVal),
			NewValue: record.Display(csvVal),
		})
	}
	return changes
}

// createPayload builds the fields for a new remote record: the checked
// columns plus the pivot column. CSV columns the remote table does not
// track are dropped.
func (d *Differ) createPayload(rec record.Record) record.Record {
	payload := rec.Select(d.checkColumns...)
	if v, ok := rec.Value(d.pivotColumn); ok {
		payload = payload.With(d.pivotColumn, v)
	}
	return payload
}
