package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/clinvec/tabgest/internal/tabular"
)

func TestHTMLReader_SingleTable(t *testing.T) {
	input := `<html><body>
<p>cohort summary</p>
<table>
  <tr><th>patient_id</th><th>age</th><th>status</th></tr>
  <tr><td>1</td><td>34</td><td>sick</td></tr>
  <tr><td>2</td><td>29</td><td>healthy</td></tr>
</table>
</body></html>`

	p := &HTMLReader{}
	results, err := p.Read(strings.NewReader(input), "cohort.html", Options{})
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
	if f.X[0][0].Num != 34 {
		t.Errorf("X[0][0] = %+v", f.X[0][0])
	}
}

func TestHTMLReader_MultipleTables(t *testing.T) {
	input := `<html><body>
<table><tr><th>a</th></tr><tr><td>x</td></tr></table>
<table><tr><th>b</th></tr><tr><td>y</td></tr></table>
</body></html>`

	p := &HTMLReader{}
	results, err := p.Read(strings.NewReader(input), "multi.html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "multi_0" || results[1].Name != "multi_1" {
		t.Errorf("names = %q, %q", results[0].Name, results[1].Name)
	}
}

func TestHTMLReader_NoTables(t *testing.T) {
	p := &HTMLReader{}
	_, err := p.Read(strings.NewReader("<html><body><p>no data here</p></body></html>"), "empty.html", Options{})
	var malformed *tabular.MalformedTableError
	if !errors.As(err, &malformed) || !malformed.Empty {
		t.Fatalf("expected empty-table error, got %v", err)
	}
}

func TestHTMLReader_NestedMarkupInCells(t *testing.T) {
	input := `<table>
<tr><th>patient_id</th><th>status</th></tr>
<tr><td><b>1</b></td><td><span>sick</span></td></tr>
</table>`

	p := &HTMLReader{}
	results, err := p.Read(strings.NewReader(input), "markup.html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := results[0].Frame
	if f.ObsNames[0] != "1" || f.X[0][0].Str != "sick" {
		t.Errorf("cells not flattened: obs=%v x=%+v", f.ObsNames, f.X)
	}
}
