package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

func isForeignKeyViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == pqForeignKeyViolation
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == pqUniqueViolation
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// notFound maps sql.ErrNoRows to the domain error.
func notFound(err, domainErr error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return domainErr
	}
	return err
}

// orderBy only lets known columns through.
func orderBy(orderings []core.DBOrdering, columns ...string) string {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return core.OrderBy(orderings, allowed, "created_at DESC, id DESC")
}
