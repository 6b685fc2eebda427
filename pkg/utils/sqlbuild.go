package utils

import (
	"fmt"
	"strings"
)

// UpdateBuilder assembles a parameterized UPDATE touching only the columns set on it.
// Column names come from code, never from input.
type UpdateBuilder struct {
	table string
	sets  []string
	args  []any
}

func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set adds "col = $n".
func (b *UpdateBuilder) Set(col string, v any) *UpdateBuilder {
	b.args = append(b.args, v)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", col, len(b.args)))
	return b
}

// Empty reports whether no column has been set.
func (b *UpdateBuilder) Empty() bool { return len(b.sets) == 0 }

// Where finishes the statement with "WHERE col = $n".
func (b *UpdateBuilder) Where(col string, v any) (string, []any) {
	args := append(append([]any(nil), b.args...), v)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", b.table, strings.Join(b.sets, ", "), col, len(args))
	return q, args
}
