package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type placeholder func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// where renders the filter as a SQL WHERE clause (with a leading space) and
// its arguments. An empty filter renders as the empty string.
func (f Filter) where(ph placeholder) (string, []any) {
	var clauses []string
	var args []any

	add := func(expr, value string) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, ph(len(args))))
	}

	if f.Tab != "" {
		add("tab = %s", f.Tab)
	}
	if f.Filename != "" {
		add("filename = %s", f.Filename)
	}
	if f.StartDate != "" {
		add(`"timestamp" >= %s`, f.StartDate)
	}
	if f.EndDate != "" {
		add(`"timestamp" <= %s`, f.EndDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
