// Package differ computes the create/update plan that reconciles a CSV
// record set against the remote store's record set. Records are matched by
// canonical pivot key; a matched record is stale when any checked column
// differs under normalized equality.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/tablesync/pkg/record"
)

// ActionType represents the kind of plan action.
type ActionType string

const (
	// ActionCreate indicates the CSV record has no remote counterpart.
	ActionCreate ActionType = "create"
	// ActionUpdate indicates the remote counterpart has stale checked columns.
	ActionUpdate ActionType = "update"
)

// FieldChange represents a change to a specific checked column.
type FieldChange struct {
	Column   string // Column name
	OldValue string // Remote value (string representation)
	NewValue string // CSV value (string representation)
}

// Action is one planned write against the remote store.
//
// For creates the payload carries the checked columns plus the pivot column.
// For updates it carries only the checked columns, so unchecked remote
// columns are never touched.
type Action struct {
	Type     ActionType
	Pivot    string        // Canonical pivot key of the CSV record
	RemoteID string        // Remote identifier, set on updates only
	Payload  record.Record // Columns to write
	Changes  []FieldChange // Stale columns, set on updates only
}

// Plan is the ordered set of actions produced by one diff. Order follows
// CSV row order and the plan is immutable once built: it is computed once
// per run, consumed once by the applier, and discarded.
type Plan struct {
	actions []Action
	skipped int
	orphans int
}

// Actions returns the planned actions in CSV row order. The returned slice
// is shared; callers must not modify it.
func (p *Plan) Actions() []Action {
	return p.actions
}

// Len returns the total number of planned actions.
func (p *Plan) Len() int {
	return len(p.actions)
}

// Creates returns the number of planned create actions.
func (p *Plan) Creates() int {
	n := 0
	for _, a := range p.actions {
		if a.Type == ActionCreate {
			n++
		}
	}
	return n
}

// Updates returns the number of planned update actions.
func (p *Plan) Updates() int {
	n := 0
	for _, a := range p.actions {
		if a.Type == ActionUpdate {
			n++
		}
	}
	return n
}

// Skipped returns the number of matched CSV records whose checked columns
// were all current. Skips produce no action.
func (p *Plan) Skipped() int {
	return p.skipped
}

// Orphans returns the number of remote records with no CSV counterpart.
// They are reported for visibility only; the plan never deletes.
func (p *Plan) Orphans() int {
	return p.orphans
}

// IsEmpty returns true if the plan contains no actions.
func (p *Plan) IsEmpty() bool {
	return len(p.actions) == 0
}

// String returns a human-readable summary of the plan.
func (p *Plan) String() string {
	if p.IsEmpty() {
		return fmt.Sprintf("No changes planned (%d current, %d remote-only)", p.skipped, p.orphans)
	}

	parts := []string{}
	if n := p.Creates(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d to create", n))
	}
	if n := p.Updates(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d to update", n))
	}
	parts = append(parts, fmt.Sprintf("%d current", p.skipped))
	if p.orphans > 0 {
		parts = append(parts, fmt.Sprintf("%d remote-only", p.orphans))
	}
	return "Plan: " + strings.Join(parts, ", ")
}
