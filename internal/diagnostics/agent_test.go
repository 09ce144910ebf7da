package diagnostics

import (
	"context"
	"testing"
	"time"

	"sysmetryd/internal/history"
	"sysmetryd/internal/model"
)

func TestExplainIncidentFallsBackToHistorySummaryWithoutGemini(t *testing.T) {
	h := history.New(t.TempDir(), nil)
	now := time.Now().UnixMilli()
	h.Push(model.Snapshot{TimestampMS: now - 1000, CPU: model.CPU{UsagePercent: 55}})
	h.Push(model.Snapshot{TimestampMS: now, CPU: model.CPU{UsagePercent: 95, ThrottleActive: true}})

	a := New(Options{History: h})

	answer, err := a.ExplainIncident(context.Background(), "is the cpu hot?")
	if err != nil {
		t.Fatalf("ExplainIncident: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected a non-empty fallback summary")
	}
}

func TestQueryRecentDelegatesToHistoryStore(t *testing.T) {
	h := history.New(t.TempDir(), nil)
	h.Push(model.Snapshot{TimestampMS: 10})
	h.Push(model.Snapshot{TimestampMS: 20})

	a := New(Options{History: h})
	got := a.QueryRecent(0, 100, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
}

func TestNilAgentIsSafe(t *testing.T) {
	var a *Agent
	a.IngestSnapshot(context.Background(), model.Snapshot{})
	if got := a.QueryRecent(0, 1, 1); got != nil {
		t.Fatalf("expected nil result from nil agent, got %v", got)
	}
	a.Close(context.Background())
}
