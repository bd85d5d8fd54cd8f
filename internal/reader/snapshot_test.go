package reader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/clinvec/tabgest/internal/frame"
)

func TestSnapshotReader_RoundTrip(t *testing.T) {
	// Build a frame from CSV, snapshot it, and read the snapshot back in.
	p := &DelimitedReader{Delimiter: ","}
	results, err := p.Read(strings.NewReader("patient_id,age\n1,34\n2,29\n"), "cohort.csv", Options{})
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	want := results[0].Frame

	var buf bytes.Buffer
	if err := frame.WriteSnapshot(&buf, want); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	sp := &SnapshotReader{}
	snapResults, err := sp.Read(&buf, "cohort.tgf", Options{})
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if len(snapResults) != 1 || snapResults[0].Name != "cohort" {
		t.Fatalf("results = %+v", snapResults)
	}

	if diff := cmp.Diff(want, snapResults[0].Frame, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("frame not preserved (-want +got):\n%s", diff)
	}
}

func TestSnapshotReader_Garbage(t *testing.T) {
	p := &SnapshotReader{}
	if _, err := p.Read(strings.NewReader("not a snapshot"), "bad.tgf", Options{}); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}
