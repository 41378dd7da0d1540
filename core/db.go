package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy builds an ORDER BY clause from the orderings whose field is in allowed.
// fallback is used when nothing usable was requested.
func OrderBy(orderings []DBOrdering, allowed map[string]bool, fallback string) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			parts = append(parts, ord.String())
		}
	}
	if len(parts) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
