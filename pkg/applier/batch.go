package applier

import (
	"github.com/agentstation/tablesync/pkg/differ"
)

// batch is a contiguous run of same-type actions sized to one write call.
// offset is the position of the batch's first action within the plan, which
// is how results land in plan order no matter when the batch executes.
type batch struct {
	offset  int
	actions []differ.Action
}

// splitBatches groups consecutive same-type actions and chunks each group
// to the store's maximum batch size. Action order is never changed.
func splitBatches(actions []differ.Action, size int) []batch {
	if size < 1 {
		size = 1
	}

	var batches []batch
	start := 0
	for start < len(actions) {
		end := start + 1
		for end < len(actions) &&
			actions[end].Type == actions[start].Type &&
			end-start < size {
			end++
		}
		batches = append(batches, batch{offset: start, actions: actions[start:end]})
		start = end
	}
	return batches
}
