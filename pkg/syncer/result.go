package syncer

import (
	"fmt"

	"github.com/agentstation/tablesync/pkg/applier"
	"github.com/agentstation/tablesync/pkg/differ"
	"github.com/agentstation/tablesync/pkg/index"
)

// Result is the complete outcome of one reconciliation run.
type Result struct {
	// Plan is the computed set of actions, in CSV row order.
	Plan *differ.Plan

	// Report is the per-action outcome of applying the plan. Nil on dry
	// runs.
	Report *applier.Report

	// Record counts observed on each side.
	CSVRecords    int
	RemoteRecords int

	// Data-quality warnings accumulated while indexing each side.
	CSVWarnings    index.Warnings
	RemoteWarnings index.Warnings

	// DryRun records whether writes were withheld.
	DryRun bool
}

// HasWarnings returns true if either side had data-quality issues.
func (r *Result) HasWarnings() bool {
	return r.CSVWarnings.HasIssues() || r.RemoteWarnings.HasIssues()
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run: %s", r.Plan)
	}
	if r.Report == nil {
		return r.Plan.String()
	}
	return r.Report.Summary()
}
