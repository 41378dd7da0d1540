// Package inmemdb keeps every table in process memory.
// It backs the API tests and `ENV=TEST` runs where no database is available.
package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/submission"
	"github.com/trezcool/darasa/core/user"
)

type (
	// DB guards all tables with a single lock so cross-table checks (foreign keys, cascades) stay consistent.
	DB struct {
		sync.RWMutex

		users         *table[user.User]
		revokedTokens map[string]time.Time
		courses       *table[course.Course]
		enrolments    map[enrolment]time.Time
		assignments   *table[assignment.Assignment]
		submissions   *table[submission.Submission]
	}

	table[T any] struct {
		pkCount int
		rows    map[int]*T
	}

	enrolment struct {
		courseID int
		userID   int
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int]*T)}
}

func (t *table[T]) insert(row T) int {
	t.pkCount++
	t.rows[t.pkCount] = &row
	return t.pkCount
}

func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, *r)
	}
	return rows
}

func Open() *DB {
	return &DB{
		users:         newTable[user.User](),
		revokedTokens: make(map[string]time.Time),
		courses:       newTable[course.Course](),
		enrolments:    make(map[enrolment]time.Time),
		assignments:   newTable[assignment.Assignment](),
		submissions:   newTable[submission.Submission](),
	}
}

// Reset empties every table; handy between tests.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	fresh := Open()
	db.users = fresh.users
	db.revokedTokens = fresh.revokedTokens
	db.courses = fresh.courses
	db.enrolments = fresh.enrolments
	db.assignments = fresh.assignments
	db.submissions = fresh.submissions
}

// cascade deletes, mirroring the ON DELETE CASCADE of the SQL schema

func (db *DB) deleteAssignment(id int) {
	delete(db.assignments.rows, id)
	for subID, sub := range db.submissions.rows {
		if sub.AssignmentID == id {
			delete(db.submissions.rows, subID)
		}
	}
}

func (db *DB) deleteCourse(id int) {
	delete(db.courses.rows, id)
	for e := range db.enrolments {
		if e.courseID == id {
			delete(db.enrolments, e)
		}
	}
	for asgmtID, asgmt := range db.assignments.rows {
		if asgmt.CourseID == id {
			db.deleteAssignment(asgmtID)
		}
	}
}

// fieldValue returns the sortable value of a column, if the column is sortable.
type fieldValue[T any] func(row T, field string) (interface{}, bool)

// sortRows sorts like `ORDER BY <orderings>`, falling back to `created_at DESC, id DESC`.
func sortRows[T any](rows []T, orderings []core.DBOrdering, value fieldValue[T]) {
	var valid []core.DBOrdering
	if len(rows) > 0 {
		for _, ord := range orderings {
			if _, ok := value(rows[0], ord.Field); ok {
				valid = append(valid, ord)
			}
		}
	}
	if len(valid) == 0 {
		valid = []core.DBOrdering{{Field: "created_at"}, {Field: "id"}}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range valid {
			a, _ := value(rows[i], ord.Field)
			b, _ := value(rows[j], ord.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case time.Time:
		return av.Compare(b.(time.Time))
	case *time.Time:
		bv := b.(*time.Time)
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return -1
		case bv == nil:
			return 1
		}
		return av.Compare(*bv)
	}
	return 0
}
