package storage

import (
	"fmt"
	"strings"
)

// setClause accumulates SET assignments for a partial UPDATE statement.
// Column names are fixed in code; client-supplied values only ever travel as
// positional parameters.
type setClause struct {
	assignments []string
	args        []any
}

func newSetClause() *setClause {
	return &setClause{}
}

// add appends `column = $n` when the pointed-to value is present. The value
// must be a pointer; nil pointers are skipped.
func (s *setClause) add(column string, value any) {
	switch v := value.(type) {
	case *string:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	case *int:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	case *int64:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	case *float64:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	case *bool:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	default:
		return
	}
	s.assignments = append(s.assignments, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

// addRaw appends a literal assignment that takes no parameter, such as
// `updated_at = NOW()`.
func (s *setClause) addRaw(assignment string) {
	s.assignments = append(s.assignments, assignment)
}

func (s *setClause) empty() bool {
	return len(s.assignments) == 0
}

// query renders the UPDATE statement for the given table, keyed by id.
func (s *setClause) query(table string, id int64) string {
	s.args = append(s.args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		table, strings.Join(s.assignments, ", "), len(s.args))
}
