package applier

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/tablesync/pkg/differ"
)

// Outcome classifies what happened to one planned action.
type Outcome string

const (
	// OutcomeSucceeded indicates the write was accepted by the store.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed indicates the write was rejected or retries were exhausted.
	OutcomeFailed Outcome = "failed"
	// OutcomeNotAttempted indicates the run was canceled before the action's
	// batch started.
	OutcomeNotAttempted Outcome = "not-attempted"
)

// ActionResult pairs one planned action with its outcome.
type ActionResult struct {
	Action  differ.Action
	Outcome Outcome
	// Reason carries the terminal error text for failed actions.
	Reason string
}

// Report is the complete result of applying one plan. Results are in plan
// order regardless of how batches were scheduled.
type Report struct {
	// RunID identifies the run for log correlation.
	RunID uuid.UUID

	// Results holds the outcome of every planned action, in plan order.
	Results []ActionResult

	// Aggregate counts. Skipped is carried over from the plan: matched
	// records that needed no write.
	Created      int
	Updated      int
	Skipped      int
	Failed       int
	NotAttempted int
}

// HasFailures returns true if any action failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Complete returns true if every planned action was attempted.
func (r *Report) Complete() bool {
	return r.NotAttempted == 0
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	parts := []string{
		fmt.Sprintf("%d created", r.Created),
		fmt.Sprintf("%d updated", r.Updated),
		fmt.Sprintf("%d skipped", r.Skipped),
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if r.NotAttempted > 0 {
		parts = append(parts, fmt.Sprintf("%d not attempted", r.NotAttempted))
	}
	return strings.Join(parts, ", ")
}

// tally recomputes the aggregate counts from the per-action results.
func (r *Report) tally() {
	r.Created, r.Updated, r.Failed, r.NotAttempted = 0, 0, 0, 0
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSucceeded:
			if res.Action.Type == differ.ActionCreate {
				r.Created++
			} else {
				r.Updated++
			}
		case OutcomeFailed:
			r.Failed++
		case OutcomeNotAttempted:
			r.NotAttempted++
		}
	}
}
