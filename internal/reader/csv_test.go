package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/clinvec/tabgest/internal/tabular"
)

func TestDelimitedReader_CSV(t *testing.T) {
	input := "patient_id,age,status\n1,34,sick\n2,29,healthy\n"
	p := &DelimitedReader{Delimiter: ","}
	results, err := p.Read(strings.NewReader(input), "cohort.csv", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "cohort" {
		t.Fatalf("results = %+v", results)
	}

	f := results[0].Frame
	if diff := cmp.Diff([]string{"age", "status"}, f.VarNames); diff != "" {
		t.Errorf("var names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2"}, f.ObsNames); diff != "" {
		t.Errorf("obs names mismatch (-want +got):\n%s", diff)
	}
	if f.X[0][0].Num != 34 || f.X[1][1].Str != "healthy" {
		t.Errorf("unexpected matrix: %+v", f.X)
	}
	if f.Layer("original") == nil {
		t.Error("expected an original layer")
	}
}

func TestDelimitedReader_DelimiterOverride(t *testing.T) {
	input := "patient_id;age\n1;34\n"
	p := &DelimitedReader{Delimiter: ","}
	results, err := p.Read(strings.NewReader(input), "cohort.csv", Options{Delimiter: ";"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"age"}, results[0].Frame.VarNames); diff != "" {
		t.Errorf("var names mismatch (-want +got):\n%s", diff)
	}
}

func TestDelimitedReader_WrongDelimiter(t *testing.T) {
	p := &DelimitedReader{Delimiter: ","}
	_, err := p.Read(strings.NewReader("a\tb\n1\t2\n"), "cohort.csv", Options{})
	var malformed *tabular.MalformedTableError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedTableError, got %v", err)
	}
}

func TestDelimitedReader_ObsOnly(t *testing.T) {
	input := "patient_id,a,b\n1,10,x\n2,20,y\n"
	p := &DelimitedReader{Delimiter: ","}
	results, err := p.Read(strings.NewReader(input), "t.csv", Options{ColumnsObsOnly: []string{"b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := results[0].Frame
	rows, cols := f.Shape()
	if rows != 2 || cols != 1 {
		t.Errorf("shape = (%d, %d), want (2, 1)", rows, cols)
	}
	if diff := cmp.Diff([]string{"b"}, f.ObsColumns); diff != "" {
		t.Errorf("obs columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, f.Obs["b"].Strs); diff != "" {
		t.Errorf("obs values mismatch (-want +got):\n%s", diff)
	}
}

func TestTextReader_Whitespace(t *testing.T) {
	input := "# height weight\n170 65\n182   80\n"
	p := &TextReader{}
	results, err := p.Read(strings.NewReader(input), "anthro.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := results[0].Frame
	if diff := cmp.Diff([]string{"height", "weight"}, f.VarNames); diff != "" {
		t.Errorf("var names mismatch (-want +got):\n%s", diff)
	}
	if f.X[1][0].Num != 182 || f.X[1][1].Num != 80 {
		t.Errorf("unexpected matrix: %+v", f.X)
	}
}

func TestTextReader_IndexColumn(t *testing.T) {
	input := "visit,age\nv1,34\nv2,29\n"
	p := &TextReader{}
	results, err := p.Read(strings.NewReader(input), "visits.tab", Options{
		Delimiter: ",",
		Index:     &tabular.IndexSpec{Name: "visit"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"v1", "v2"}, results[0].Frame.ObsNames); diff != "" {
		t.Errorf("obs names mismatch (-want +got):\n%s", diff)
	}
}
