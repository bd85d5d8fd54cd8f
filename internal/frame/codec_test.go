package frame

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/clinvec/tabgest/internal/tabular"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	f, err := FromTable(MemBuilder{}, sampleTable(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, f); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if diff := cmp.Diff(f, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("frame not preserved (-want +got):\n%s", diff)
	}
}

func TestSnapshot_PreservesNonFiniteNumbers(t *testing.T) {
	f := &Frame{
		X: [][]tabular.CellValue{
			{tabular.Missing(), tabular.Number(math.Inf(1))},
			{tabular.Number(math.Inf(-1)), tabular.Number(math.NaN())},
		},
		ObsNames: []string{"0", "1"},
		VarNames: []string{"a", "b"},
		Obs:      map[string]tabular.MetadataColumn{},
		Layers:   map[string][][]tabular.CellValue{},
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, f); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !got.X[0][0].IsMissing() {
		t.Error("missing cell lost")
	}
	if !math.IsInf(got.X[0][1].Num, 1) || !math.IsInf(got.X[1][0].Num, -1) {
		t.Error("infinities lost")
	}
	if !math.IsNaN(got.X[1][1].Num) {
		t.Error("NaN lost")
	}
}

func TestSnapshot_PreservesIntFloatDistinction(t *testing.T) {
	f := &Frame{
		X:        [][]tabular.CellValue{{tabular.Cast("42"), tabular.Cast("42.0")}},
		ObsNames: []string{"0"},
		VarNames: []string{"a", "b"},
		Obs:      map[string]tabular.MetadataColumn{},
		Layers:   map[string][][]tabular.CellValue{},
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, f); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got.X[0][0].Kind != tabular.KindInt {
		t.Errorf("int cell came back as %v", got.X[0][0].Kind)
	}
	if got.X[0][1].Kind != tabular.KindFloat {
		t.Errorf("float cell came back as %v", got.X[0][1].Kind)
	}
}

func TestSnapshot_RejectsUnknownVersion(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader(`{"version":99,"obs_names":[],"var_names":[],"x":[],"layers":{}}`))
	if err == nil {
		t.Fatal("expected version error")
	}
}

func TestSnapshot_RejectsGarbage(t *testing.T) {
	if _, err := ReadSnapshot(strings.NewReader("not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ReadSnapshot(strings.NewReader(`{"version":1,"obs_names":[],"var_names":[],"x":[[{"k":"z"}]],"layers":{}}`)); err == nil {
		t.Fatal("expected unknown cell kind error")
	}
}
