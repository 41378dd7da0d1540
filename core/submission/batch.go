package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/darasa/core"
)

// RelayEntry is the submission context forwarded to the external collector.
type RelayEntry struct {
	SubmissionID int
	AssignmentID int
	Content      string
	SubmittedAt  time.Time
	StudentID    int
}

// Relayer forwards one submission to the external collector.
// Relay returns the decoded collector response, or an error describing why the call failed.
type Relayer interface {
	Relay(ctx context.Context, entry RelayEntry) (interface{}, error)
}

// SubmitBatch validates, stores then relays a batch of submissions on behalf of callerID.
//
// Validation failures return a *core.ValidationError before anything is stored.
// Records are created one by one in input order; the first failure aborts the batch with a *PersistenceError.
// Relay calls then run concurrently and every one of them settles before the result is built:
// relay failures are reported per item and never undo stored records.
func (svc *Service) SubmitBatch(ctx context.Context, callerID int, items []Request) (BatchResult, error) {
	if err := svc.validateBatch(ctx, items); err != nil {
		return BatchResult{}, err
	}

	records, err := svc.persistBatch(ctx, callerID, items)
	if err != nil {
		return BatchResult{}, err
	}

	group := newRelayGroup(len(records), svc.maxConcurrency)
	submittedAt := NowFunc().UTC() // one timestamp for the whole batch, shared by every relay entry
	for i, rec := range records {
		group.launch(ctx, i, svc.relayer, RelayEntry{
			SubmissionID: rec.ID,
			AssignmentID: items[i].AssignmentID,
			Content:      items[i].Content,
			SubmittedAt:  submittedAt,
			StudentID:    callerID,
		})
	}
	settled := group.wait()

	return BatchResult{DBResults: records, LogResults: AggregateOutcomes(settled)}, nil
}

func (svc *Service) validateBatch(ctx context.Context, items []Request) error {
	if fe, ok := batchSizeRule(items); !ok {
		return core.NewValidationError(nil, fe)
	}
	known, err := svc.repo.ExistingAssignmentIDs(ctx, referencedAssignments(items))
	if err != nil {
		return errors.Wrap(err, "checking assignments")
	}
	if flds := ValidateBatch(items, known); len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *Service) persistBatch(ctx context.Context, callerID int, items []Request) ([]Submission, error) {
	records := make([]Submission, 0, len(items))
	for i, item := range items {
		rec, err := svc.repo.CreateSubmission(ctx, svc.newRecord(callerID, item.AssignmentID, item.Content))
		if err != nil {
			return nil, &PersistenceError{Index: i, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// relayGroup runs one relay task per batch item with bounded concurrency.
// Each task writes its own slot of settled, so no locking is needed.
type relayGroup struct {
	g       errgroup.Group
	settled []Settled
}

func newRelayGroup(size, limit int) *relayGroup {
	rg := &relayGroup{settled: make([]Settled, size)}
	rg.g.SetLimit(limit)
	return rg
}

func (rg *relayGroup) launch(ctx context.Context, idx int, relayer Relayer, entry RelayEntry) {
	rg.g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				rg.settled[idx] = Settled{Err: fmt.Errorf("relay panicked: %v", r)}
			}
		}()
		val, err := relayer.Relay(ctx, entry)
		rg.settled[idx] = Settled{Value: val, Err: err}
		return nil // never cancel siblings
	})
}

// wait is the join step: it returns once every launched task has settled.
func (rg *relayGroup) wait() []Settled {
	_ = rg.g.Wait()
	return rg.settled
}
