package pipeline

import (
	"testing"
	"time"
)

func TestParseStats_Empty(t *testing.T) {
	s := NewParseStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 || snap.AvgMs != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestParseStats_Aggregates(t *testing.T) {
	s := NewParseStats(time.Hour)
	for _, ms := range []int64{10, 20, 30, 40, 50} {
		s.Record(ms)
	}

	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("count = %d, want 5", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 50 {
		t.Errorf("min/max = %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 30 {
		t.Errorf("avg = %v, want 30", snap.AvgMs)
	}
	if snap.P50Ms != 30 {
		t.Errorf("p50 = %v, want 30", snap.P50Ms)
	}
}

func TestParseStats_NegativeClamped(t *testing.T) {
	s := NewParseStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("min = %d, want 0", snap.MinMs)
	}
}

func TestParseStats_PrunesOldSamples(t *testing.T) {
	s := NewParseStats(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(20 * time.Millisecond)
	s.Record(200)

	snap := s.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Errorf("snapshot = %+v, want only the fresh sample", snap)
	}
}

func TestPercentile_Interpolates(t *testing.T) {
	vals := []int64{0, 100}
	if got := percentile(vals, 50); got != 50 {
		t.Errorf("p50 = %v, want 50", got)
	}
	if got := percentile(vals, 0); got != 0 {
		t.Errorf("p0 = %v, want 0", got)
	}
	if got := percentile(vals, 100); got != 100 {
		t.Errorf("p100 = %v, want 100", got)
	}
}
