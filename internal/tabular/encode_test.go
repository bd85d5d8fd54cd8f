package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func reparse(t *testing.T, table *Table, delimiter string) *Table {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeDelimited(&buf, table, delimiter); err != nil {
		t.Fatalf("encode: %v", err)
	}
	schema, rows, err := Parse(&buf, delimiter, nil)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	out, err := Assemble(schema, rows, AssembleOptions{})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	return out
}

func TestEncodeDelimited_RoundTrip(t *testing.T) {
	schema, rows := mustParse(t, "patient_id,age,status\n1,34,sick\n2,,healthy\n", ",")
	table, err := Assemble(schema, rows, AssembleOptions{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	got := reparse(t, table, ",")
	opts := cmpopts.EquateNaNs()
	if diff := cmp.Diff(table.Matrix, got.Matrix, opts); diff != "" {
		t.Errorf("matrix not preserved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(table.RowLabels, got.RowLabels); diff != "" {
		t.Errorf("row labels not preserved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(table.ColLabels, got.ColLabels); diff != "" {
		t.Errorf("column labels not preserved (-want +got):\n%s", diff)
	}
}

func TestEncodeDelimited_NumericColumnNames(t *testing.T) {
	// Synthetic (all-numeric) column names would be mistaken for a data row,
	// so the header goes out as a comment line and comes back via the
	// comment fallback.
	schema, rows := mustParse(t, "1 2 3\n4 5 6\n", "")
	table, err := Assemble(schema, rows, AssembleOptions{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeDelimited(&buf, table, ""); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# 0 1 2\n") {
		t.Fatalf("expected comment header, got %q", buf.String())
	}

	got := reparse(t, table, "")
	if diff := cmp.Diff(table.ColLabels, got.ColLabels); diff != "" {
		t.Errorf("column labels not preserved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(table.Matrix, got.Matrix); diff != "" {
		t.Errorf("matrix not preserved (-want +got):\n%s", diff)
	}
}

func TestEncodeDelimited_DefaultTabDelimiter(t *testing.T) {
	schema, rows := mustParse(t, "patient_id,a\n1,10\n", ",")
	table, err := Assemble(schema, rows, AssembleOptions{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeDelimited(&buf, table, ""); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "patient_id\ta\n1\t10\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
