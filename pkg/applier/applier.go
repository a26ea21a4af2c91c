package applier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/differ"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/record"
)

// Applier executes plans against a Store.
type Applier struct {
	store       Store
	maxRetries  int
	backoff     time.Duration
	maxBackoff  time.Duration
	concurrency int
	logger      *zerolog.Logger
}

// New creates an Applier for the given store with default retry settings.
func New(store Store, opts ...Option) *Applier {
	a := &Applier{
		store:       store,
		maxRetries:  constants.MaxRetries,
		backoff:     constants.RetryBackoff,
		maxBackoff:  constants.MaxRetryBackoff,
		concurrency: constants.DefaultConcurrency,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply executes every action in the plan and returns the report.
//
// Actions are never reordered. Batches run sequentially unless a
// concurrency limit above one was configured; either way the report is
// assembled in plan order, with each batch writing only its own disjoint
// region of the results.
//
// On cancellation, in-flight batches finish their current call, no new
// batches start, and the remaining actions are reported not-attempted.
func (a *Applier) Apply(ctx context.Context, plan *differ.Plan) *Report {
	actions := plan.Actions()

	// Reuse the run ID already on the context so the report correlates
	// with the caller's log lines; otherwise establish one here.
	runID := uuid.New()
	if s := logging.RunID(ctx); s != "" {
		if parsed, err := uuid.Parse(s); err == nil {
			runID = parsed
		}
	} else {
		ctx = logging.WithRunID(logging.WithLogger(ctx, a.logger), runID.String())
	}

	report := &Report{
		RunID:   runID,
		Results: make([]ActionResult, len(actions)),
		Skipped: plan.Skipped(),
	}
	for i := range report.Results {
		report.Results[i] = ActionResult{Action: actions[i], Outcome: OutcomeNotAttempted}
	}

	batches := splitBatches(actions, a.store.MaxBatchSize())

	if a.concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(a.concurrency)
		for _, b := range batches {
			b := b
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				a.applyBatch(ctx, b, report.Results[b.offset:b.offset+len(b.actions)])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, b := range batches {
			if ctx.Err() != nil {
				break
			}
			a.applyBatch(ctx, b, report.Results[b.offset:b.offset+len(b.actions)])
		}
	}

	report.tally()

	logging.Ctx(ctx).Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("not_attempted", report.NotAttempted).
		Msg("Plan applied")

	return report
}

// applyBatch submits one batch, retrying transient failures with
// exponential backoff, and writes the per-action outcomes into out.
func (a *Applier) applyBatch(ctx context.Context, b batch, out []ActionResult) {
	var items []ItemResult
	var err error

	for attempt := 0; ; attempt++ {
		items, err = a.submit(ctx, b)
		if err == nil {
			break
		}

		if !errors.IsRetryable(err) {
			logging.Ctx(ctx).Warn().Err(err).
				Int("batch_offset", b.offset).
				Int("batch_size", len(b.actions)).
				Msg("Batch rejected permanently")
			markFailed(out, err)
			return
		}

		if attempt >= a.maxRetries {
			logging.Ctx(ctx).Warn().Err(err).
				Int("batch_offset", b.offset).
				Int("attempts", attempt+1).
				Msg("Batch retries exhausted")
			markFailed(out, err)
			return
		}

		delay := a.delay(attempt)
		logging.Ctx(ctx).Debug().Err(err).
			Int("batch_offset", b.offset).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Transient batch failure, backing off")

		if !sleep(ctx, delay) {
			// Canceled mid-backoff: the batch never got its retry.
			markFailed(out, err)
			return
		}
	}

	for i := range out {
		if i < len(items) && items[i].Err != nil {
			out[i].Outcome = OutcomeFailed
			out[i].Reason = items[i].Err.Error()
			continue
		}
		out[i].Outcome = OutcomeSucceeded
	}
}

// submit issues the single create or update call for a batch.
//
// The store call gets a detached context: a batch already in flight must
// finish rather than be torn down mid-write, which could leave the remote
// store holding a write the report counts as failed. The transport's client
// timeout keeps the call bounded; the run context is consulted only between
// batches and during backoff.
func (a *Applier) submit(ctx context.Context, b batch) ([]ItemResult, error) {
	ctx = context.WithoutCancel(ctx)

	if b.actions[0].Type == differ.ActionCreate {
		payloads := make([]record.Record, len(b.actions))
		for i, action := range b.actions {
			payloads[i] = action.Payload
		}
		return a.store.Create(ctx, payloads)
	}

	updates := make([]Update, len(b.actions))
	for i, action := range b.actions {
		updates[i] = Update{RemoteID: action.RemoteID, Fields: action.Payload}
	}
	return a.store.Update(ctx, updates)
}

// delay computes the exponential backoff for the given attempt, capped at
// the configured maximum.
func (a *Applier) delay(attempt int) time.Duration {
	d := a.backoff << attempt
	if d > a.maxBackoff || d <= 0 {
		return a.maxBackoff
	}
	return d
}

// markFailed records the terminal error for every action in a batch.
func markFailed(out []ActionResult, err error) {
	for i := range out {
		out[i].Outcome = OutcomeFailed
		out[i].Reason = err.Error()
	}
}

// sleep waits for d or until the context is done, reporting whether the
// full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
