package submission

import "github.com/trezcool/darasa/core"

const (
	MaxBatchSize = 5

	fieldSubmissions  = "submissions"
	fieldAssignmentID = "submissions.*.assignment_id"
	fieldContent      = "submissions.*.content"

	msgSubmissionsRequired = "Submissions array is required."
	msgTooManySubmissions  = "You can only submit up to 5 assignments at a time."
	msgAssignmentRequired  = "Assignment ID is required for each submission."
	msgAssignmentMissing   = "The selected assignment does not exist."
	msgContentRequired     = "Content is required for each submission."
	msgAlreadySubmitted    = "You have already submitted for this assignment."

	msgSubmissionsNotArray  = "Submissions must be an array."
	msgAssignmentNotInteger = "Assignment ID must be an integer."
	msgContentNotString     = "Content must be a string."
)

// itemRule checks one field of a batch item. known holds the assignment IDs that exist.
type itemRule func(item Request, known map[int]bool) (core.FieldError, bool)

var itemRules = []itemRule{assignmentIDRule, contentRule}

func batchSizeRule(items []Request) (core.FieldError, bool) {
	switch {
	case len(items) == 0:
		return core.FieldError{Field: fieldSubmissions, Error: msgSubmissionsRequired}, false
	case len(items) > MaxBatchSize:
		return core.FieldError{Field: fieldSubmissions, Error: msgTooManySubmissions}, false
	}
	return core.FieldError{}, true
}

func assignmentIDRule(item Request, known map[int]bool) (core.FieldError, bool) {
	if item.AssignmentID <= 0 {
		return core.FieldError{Field: fieldAssignmentID, Error: msgAssignmentRequired}, false
	}
	if !known[item.AssignmentID] {
		return core.FieldError{Field: fieldAssignmentID, Error: msgAssignmentMissing}, false
	}
	return core.FieldError{}, true
}

func contentRule(item Request, _ map[int]bool) (core.FieldError, bool) {
	if core.CleanString(item.Content) == "" {
		return core.FieldError{Field: fieldContent, Error: msgContentRequired}, false
	}
	return core.FieldError{}, true
}

// ValidateBatch runs every rule over the batch and returns all violations.
// Item rules only run once the batch size is acceptable.
func ValidateBatch(items []Request, known map[int]bool) []core.FieldError {
	if fe, ok := batchSizeRule(items); !ok {
		return []core.FieldError{fe}
	}
	var flds []core.FieldError
	for _, item := range items {
		for _, rule := range itemRules {
			if fe, ok := rule(item, known); !ok {
				flds = append(flds, fe)
			}
		}
	}
	return flds
}

// referencedAssignments lists the distinct positive assignment IDs of the batch.
func referencedAssignments(items []Request) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if item.AssignmentID > 0 {
			ids = append(ids, item.AssignmentID)
		}
	}
	return core.UniqueInts(ids)
}
