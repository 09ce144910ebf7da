// Package history implements the History Store (§4.H): an in-memory ring
// of Snapshots with an approximate byte counter, flushed to an
// append-only daily JSON-lines file once the counter crosses a soft
// threshold, and queryable by time range with a buffer-then-disk
// fallback.
package history

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sysmetryd/internal/model"
)

// flushThreshold is the soft size bound that triggers a flush (§4.H).
const flushThreshold = 50 * 1024 * 1024

// DefaultLimit and HardCapLimit bound Query's result size (§4.H).
const (
	DefaultLimit = 2000
	HardCapLimit = 50000
)

// Store holds the in-memory buffer and its approximate byte counter.
// Per §5's shared-resource policy the buffer and counter use two
// independent mutexes, always acquired buffer-then-counter.
type Store struct {
	dataDir string
	logger  *log.Logger
	clock   func() time.Time

	bufMu  sync.Mutex
	buffer []model.Snapshot

	counterMu sync.Mutex
	bytes     int
}

// New creates a Store that flushes under dataDir/history/.
func New(dataDir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dataDir: dataDir, logger: logger, clock: time.Now}
}

// Push appends rec to the buffer and its serialized length (+1 for the
// newline) to the approximate byte counter; once the counter reaches
// flushThreshold the whole buffer is drained to today's file (§4.H).
func (s *Store) Push(rec model.Snapshot) {
	data, err := json.Marshal(rec)
	size := len(data) + 1
	if err != nil {
		size = 1
	}

	s.bufMu.Lock()
	s.buffer = append(s.buffer, rec)
	s.bufMu.Unlock()

	s.counterMu.Lock()
	s.bytes += size
	due := s.bytes >= flushThreshold
	s.counterMu.Unlock()

	if due {
		s.flush()
	}
}

// flush drains the in-memory buffer, serializes every record as one JSON
// line, and appends to today's file; the triggering Push's record is
// part of the drained batch, so it is never written more than once
// (§4.H); writing it a second time would make the stored count exceed
// the published count. A write failure is
// logged and the records are put back at the front of the buffer so
// nothing is silently lost (§7 History-io-failure).
func (s *Store) flush() {
	s.bufMu.Lock()
	drained := s.buffer
	s.buffer = nil
	s.bufMu.Unlock()

	if err := s.appendToFile(drained); err != nil {
		s.logger.Printf("history: flush failed, retaining %d records in memory: %v", len(drained), err)
		s.bufMu.Lock()
		s.buffer = append(drained, s.buffer...)
		s.bufMu.Unlock()
		return
	}

	s.counterMu.Lock()
	s.bytes = 0
	s.counterMu.Unlock()
}

func (s *Store) appendToFile(records []model.Snapshot) error {
	if len(records) == 0 {
		return nil
	}
	dir := filepath.Join(s.dataDir, "history")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, s.clock().Format("20060102")+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Query returns up to limit Snapshots with TimestampMS in [fromMS, toMS],
// in ascending timestamp order: the in-memory buffer is scanned first
// (newest data), then today's on-disk file if more are needed (§4.H,
// §8 properties 5/6, scenario S5).
func (s *Store) Query(fromMS, toMS int64, limit int) []model.Snapshot {
	limit = clampLimit(limit)

	s.bufMu.Lock()
	buf := append([]model.Snapshot(nil), s.buffer...)
	s.bufMu.Unlock()

	var memMatches []model.Snapshot
	for i := len(buf) - 1; i >= 0 && len(memMatches) < limit; i-- {
		r := buf[i]
		if r.TimestampMS >= fromMS && r.TimestampMS <= toMS {
			memMatches = append(memMatches, r)
		}
	}
	reverseSnapshots(memMatches)

	if len(memMatches) >= limit {
		return memMatches
	}

	diskMatches := s.queryDisk(fromMS, toMS, limit-len(memMatches))
	return append(diskMatches, memMatches...)
}

func (s *Store) queryDisk(fromMS, toMS int64, limit int) []model.Snapshot {
	path := filepath.Join(s.dataDir, "history", s.clock().Format("20060102")+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	var matches []model.Snapshot
	for i := len(lines) - 1; i >= 0 && len(matches) < limit; i-- {
		var rec model.Snapshot
		if err := json.Unmarshal([]byte(lines[i]), &rec); err != nil {
			continue
		}
		if rec.TimestampMS >= fromMS && rec.TimestampMS <= toMS {
			matches = append(matches, rec)
		}
	}
	reverseSnapshots(matches)
	return matches
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > HardCapLimit {
		return HardCapLimit
	}
	return limit
}

func reverseSnapshots(s []model.Snapshot) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
