package bridgesup

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"sysmetryd/internal/model"
)

func TestIngestStdoutPublishesValidLinesAndSkipsMalformed(t *testing.T) {
	var rec model.SharedBridgeRecord
	s := New(LocateOptions{}, &rec, log.New(io.Discard, "", 0))

	temp := 42.5
	input := `{"cpuTempC": 42.5}` + "\n" +
		"not json at all\n" +
		"\n" +
		`{"uptimeSec": 100}` + "\n"

	s.ingestStdout(io.NopCloser(strings.NewReader(input)))

	got, fresh, ever := rec.Snapshot(time.Now())
	if !ever {
		t.Fatalf("expected at least one record to have been published")
	}
	if !fresh {
		t.Errorf("expected freshly-published record to be fresh")
	}
	if got.CPUTempC != nil {
		t.Errorf("expected last valid line to win, want cpuTempC cleared by later line, got %v", got.CPUTempC)
	}
	if got.UptimeSec == nil || *got.UptimeSec != 100 {
		t.Errorf("expected last published record's uptimeSec=100, got %+v", got.UptimeSec)
	}
	_ = temp
}

func TestIngestStdoutKeepsLastGoodRecordOnMalformedLine(t *testing.T) {
	var rec model.SharedBridgeRecord
	s := New(LocateOptions{}, &rec, log.New(io.Discard, "", 0))

	input := `{"uptimeSec": 5}` + "\n" + "{broken\n"
	s.ingestStdout(io.NopCloser(strings.NewReader(input)))

	got, _, ever := rec.Snapshot(time.Now())
	if !ever {
		t.Fatalf("expected the well-formed line to have been published")
	}
	if got.UptimeSec == nil || *got.UptimeSec != 5 {
		t.Errorf("expected malformed line to be discarded without clobbering last good record, got %+v", got.UptimeSec)
	}
}

func TestDrainStderrDoesNotPanicOnEmptyOrMultilineInput(t *testing.T) {
	s := New(LocateOptions{}, &model.SharedBridgeRecord{}, log.New(io.Discard, "", 0))
	s.drainStderr(io.NopCloser(strings.NewReader("")))
	s.drainStderr(io.NopCloser(strings.NewReader("warning: sensor unavailable\nretrying\n")))
}

func TestPIDIsZeroBeforeAnyChildSpawned(t *testing.T) {
	s := New(LocateOptions{}, &model.SharedBridgeRecord{}, nil)
	if s.PID() != 0 {
		t.Errorf("expected PID 0 before any child has spawned, got %d", s.PID())
	}
}

func TestSpawnAndIngestFailsFastWithNoCandidate(t *testing.T) {
	s := New(LocateOptions{}, &model.SharedBridgeRecord{}, log.New(io.Discard, "", 0))
	err := s.spawnAndIngest(nil)
	if err != errNoCandidate {
		t.Errorf("expected errNoCandidate when nothing resolves, got %v", err)
	}
}
