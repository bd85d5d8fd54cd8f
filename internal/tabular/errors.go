package tabular

import (
	"fmt"
	"strings"
)

// MalformedTableError reports a structurally unusable input: no data rows at
// all, or a declared delimiter that does not occur in the first line.
type MalformedTableError struct {
	Delimiter string // the declared delimiter that was not found, if any
	Empty     bool   // true when the input held no data rows
}

func (e *MalformedTableError) Error() string {
	if e.Empty {
		return "malformed table: no data rows in input"
	}
	return fmt.Sprintf("malformed table: did not find delimiter %q in first line", e.Delimiter)
}

// RowWidthMismatchError reports a data row whose field count disagrees with
// the inferred schema.
type RowWidthMismatchError struct {
	First     int // field count of the first data row
	Offending int // field count of the row that disagrees
	Row       int // zero-based index of the offending row
}

func (e *RowWidthMismatchError) Error() string {
	return fmt.Sprintf("row %d has %d fields, first row has %d", e.Row, e.Offending, e.First)
}

// ColumnNotFoundError reports observation-only or index column names that do
// not exist in the inferred schema. All unmatched names are reported at once.
type ColumnNotFoundError struct {
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column(s) not found in table: %s", strings.Join(e.Columns, ", "))
}
