package analytics

import (
	"context"
	"testing"

	"sysmetryd/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{}, "test-run")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndQueryRangeRoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, ts := range []int64{100, 200, 300} {
		snap := model.Snapshot{TimestampMS: ts, CPU: model.CPU{UsagePercent: 42}}
		if err := s.Insert(ctx, snap); err != nil {
			t.Fatalf("Insert(%d): %v", ts, err)
		}
	}

	rows, err := s.QueryRange(ctx, 0, 1000, 10)
	if err != nil {
		t.Fatalf("QueryRange: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].TimestampMS <= rows[i-1].TimestampMS {
			t.Errorf("expected ascending timestamps, got %v", rows)
		}
	}
	if rows[0].Snapshot.CPU.UsagePercent != 42 {
		t.Errorf("expected round-tripped CPU usage 42, got %v", rows[0].Snapshot.CPU.UsagePercent)
	}
}

func TestQueryRangeRespectsHardCap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := int64(0); i < 20; i++ {
		if err := s.Insert(ctx, model.Snapshot{TimestampMS: i}); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	rows, err := s.QueryRange(ctx, 0, 1000, 5)
	if err != nil {
		t.Fatalf("QueryRange: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	if err := s.Insert(context.Background(), model.Snapshot{}); err != nil {
		t.Fatalf("nil store Insert should be a no-op, got %v", err)
	}
	rows, err := s.QueryRange(context.Background(), 0, 1, 10)
	if err != nil || rows != nil {
		t.Fatalf("nil store QueryRange should return (nil, nil), got (%v, %v)", rows, err)
	}
}
