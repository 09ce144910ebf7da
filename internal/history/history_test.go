package history

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sysmetryd/internal/model"
)

func snap(ts int64) model.Snapshot {
	return model.Snapshot{TimestampMS: ts}
}

func TestScenarioS5QueryReturnsLastNInAscendingOrder(t *testing.T) {
	s := New(t.TempDir(), nil)
	for _, ts := range []int64{1, 2, 3, 4, 5} {
		s.Push(snap(ts))
	}

	got := s.Query(0, 100, 3)
	want := []int64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, ts := range want {
		if got[i].TimestampMS != ts {
			t.Errorf("index %d: expected ts %d, got %d", i, ts, got[i].TimestampMS)
		}
	}
}

func TestQueryNeverReturnsMoreThanLimit(t *testing.T) {
	s := New(t.TempDir(), nil)
	for i := int64(0); i < 50; i++ {
		s.Push(snap(i))
	}
	got := s.Query(0, 1000, 7)
	if len(got) != 7 {
		t.Fatalf("expected exactly 7 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].TimestampMS <= got[i-1].TimestampMS {
			t.Errorf("expected strictly ascending timestamps, got %v", got)
		}
	}
}

func TestQueryDefaultAndHardCapLimits(t *testing.T) {
	s := New(t.TempDir(), nil)
	for i := int64(0); i < 10; i++ {
		s.Push(snap(i))
	}
	if got := s.Query(0, 1000, 0); len(got) != 10 {
		t.Errorf("expected default-limit query to return all 10 records, got %d", len(got))
	}
	if got := s.Query(0, 1000, HardCapLimit+500); len(got) != 10 {
		t.Errorf("expected over-cap limit to still just return what's available, got %d", len(got))
	}
}

func TestQueryFiltersByTimeRange(t *testing.T) {
	s := New(t.TempDir(), nil)
	for _, ts := range []int64{10, 20, 30, 40, 50} {
		s.Push(snap(ts))
	}
	got := s.Query(15, 35, 10)
	want := []int64{20, 30}
	if len(got) != len(want) {
		t.Fatalf("expected %d records in range, got %d (%v)", len(want), len(got), got)
	}
	for i, ts := range want {
		if got[i].TimestampMS != ts {
			t.Errorf("index %d: expected ts %d, got %d", i, ts, got[i].TimestampMS)
		}
	}
}

func TestPropertyPublishedCountEqualsStoredCountAcrossFlush(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	const n = 20
	pushed := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		ts := i + 1
		pushed = append(pushed, ts)
		s.Push(snap(ts))
	}
	// Force a flush mid-stream to exercise the disk path, then push more.
	s.flush()
	for i := int64(n); i < n+5; i++ {
		ts := i + 1
		pushed = append(pushed, ts)
		s.Push(snap(ts))
	}

	got := s.Query(0, 1000, HardCapLimit)
	if len(got) != len(pushed) {
		t.Fatalf("expected total stored %d to equal total published %d", len(got), len(pushed))
	}
	for i, ts := range pushed {
		if got[i].TimestampMS != ts {
			t.Errorf("index %d: expected ts %d, got %d", i, ts, got[i].TimestampMS)
		}
	}
}

func TestFlushWritesOneJSONLinePerRecordToTodaysFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)
	for _, ts := range []int64{1, 2, 3} {
		s.Push(snap(ts))
	}
	s.flush()

	path := filepath.Join(dir, "history", s.clock().Format("20060102")+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected flushed file to exist: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 JSON lines, got %d", lines)
	}
}

func TestQueryFallsBackToDiskWhenBufferExhausted(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)
	for _, ts := range []int64{1, 2, 3} {
		s.Push(snap(ts))
	}
	s.flush()
	s.Push(snap(4))

	got := s.Query(0, 1000, 10)
	want := []int64{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d records spanning disk and memory, got %d (%v)", len(want), len(got), got)
	}
	for i, ts := range want {
		if got[i].TimestampMS != ts {
			t.Errorf("index %d: expected ts %d, got %d", i, ts, got[i].TimestampMS)
		}
	}
}

func TestFlushFailureRetainsRecordsInMemory(t *testing.T) {
	// Point dataDir at a path that can't be created as a directory
	// (a regular file occupies the name) so appendToFile fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "history")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := New(dir, nil)
	s.Push(snap(1))
	s.Push(snap(2))
	s.flush()

	got := s.Query(0, 1000, 10)
	if len(got) != 2 {
		t.Fatalf("expected records to remain queryable in memory after a failed flush, got %d", len(got))
	}
}

func TestClockControlsFlushFileName(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)
	fixed := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return fixed }

	s.Push(snap(1))
	s.flush()

	path := filepath.Join(dir, "history", "20260115.jsonl")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file named by clock date: %v", err)
	}
}
