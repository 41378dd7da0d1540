package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("submission not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		QuerySubmissions(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Submission, error)
		GetSubmissionByID(ctx context.Context, id int) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		DeleteSubmission(ctx context.Context, id int) error

		// ExistingAssignmentIDs returns the subset of ids that reference an existing assignment.
		ExistingAssignmentIDs(ctx context.Context, ids []int) (map[int]bool, error)
		HasSubmitted(ctx context.Context, userID, assignmentID int) (bool, error)
	}

	Service struct {
		repo           Repository
		relayer        Relayer
		maxConcurrency int
	}
)

// PersistenceError aborts a batch when the submission at Index could not be stored.
type PersistenceError struct {
	Index int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting submission #%d: %v", e.Index, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewService creates a submission Service relaying batch submissions through relayer,
// with at most maxConcurrency calls in flight (MaxBatchSize if <= 0).
func NewService(repo Repository, relayer Relayer, maxConcurrency int) *Service {
	if maxConcurrency <= 0 || maxConcurrency > MaxBatchSize {
		maxConcurrency = MaxBatchSize
	}
	return &Service{repo: repo, relayer: relayer, maxConcurrency: maxConcurrency}
}

// Create stores a single submission for callerID.
// A student may only submit once per assignment.
func (svc *Service) Create(ctx context.Context, callerID int, ns NewSubmission) (Submission, error) {
	known, err := svc.repo.ExistingAssignmentIDs(ctx, []int{ns.AssignmentID})
	if err != nil {
		return Submission{}, errors.Wrap(err, "checking assignment")
	}
	if !known[ns.AssignmentID] {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "assignment_id", Error: msgAssignmentMissing})
	}

	submitted, err := svc.repo.HasSubmitted(ctx, callerID, ns.AssignmentID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "checking previous submissions")
	}
	if submitted {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "assignment_id", Error: msgAlreadySubmitted})
	}

	return svc.repo.CreateSubmission(ctx, svc.newRecord(callerID, ns.AssignmentID, ns.Content))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, filter, orderings)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	sub.Content = us.Content
	sub.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubmission(ctx, id)
}

func (svc *Service) newRecord(callerID, assignmentID int, content string) Submission {
	now := NowFunc().UTC()
	return Submission{
		AssignmentID: assignmentID,
		UserID:       callerID,
		Content:      content,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
