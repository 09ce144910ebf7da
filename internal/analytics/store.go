// Package analytics is a query-side sink parallel to the mandatory
// JSONL history file (§4.H): a DuckDB-backed columnar store that the
// diagnostics agent and any ad-hoc trend query can hit without parsing
// daily .jsonl files. It is adapted from the teacher's
// internal/database/relational package, collapsed from that package's
// multi-table star schema down to one append-only, denormalized
// "snapshots" table — DuckDB is columnar and the history this engine
// produces has no natural dimension tables (no container/process
// identities worth normalizing), so the wide-table half of the
// teacher's own doc comment is what carries over.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"sysmetryd/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
  run_id            VARCHAR NOT NULL,
  timestamp_ms      BIGINT NOT NULL,
  cpu_usage_pct     DOUBLE,
  mem_used_gb       DOUBLE,
  mem_total_gb      DOUBLE,
  mem_used_pct      DOUBLE,
  net_rx_bps        DOUBLE,
  net_tx_bps        DOUBLE,
  disk_read_bps     DOUBLE,
  disk_write_bps    DOUBLE,
  cpu_temp_c        DOUBLE,
  throttle_active   BOOLEAN,
  bridge_connected  BOOLEAN,
  battery_charge_pct DOUBLE,
  raw_json          VARCHAR NOT NULL,
  PRIMARY KEY (run_id, timestamp_ms)
);
`

// Options configures the DuckDB-backed analytics store.
type Options struct {
	// Path is the DuckDB file path. Empty means in-memory (tests only —
	// production always persists, since the whole point is durable
	// trend queries across process restarts).
	Path string
	// Threads sets DuckDB's PRAGMA threads, mirroring the teacher's
	// DatabaseConfig.Threads knob. 0 keeps DuckDB's own default.
	Threads int
}

// Store is the analytics sink. A Store with a nil *sql.DB is valid and
// every method becomes a no-op, matching the teacher's nil-safe
// graphClient convention in data_worker.go so a caller that never wires
// one up doesn't need to branch on it.
type Store struct {
	db    *sql.DB
	runID string
}

// Open creates (or attaches to) the DuckDB file at opts.Path and ensures
// the schema exists. runID scopes every row written this process run,
// since Snapshot timestamps are only monotonic within a single run (§3
// invariants) and a restart must not collide with stale rows.
func Open(opts Options, runID string) (*Store, error) {
	dsn := opts.Path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("analytics: open duckdb: %w", err)
	}
	// DuckDB is an embedded single-writer engine; serialize access the
	// same way the teacher's DuckDBClient does.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analytics: ping duckdb: %w", err)
	}

	if opts.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", opts.Threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("analytics: set threads: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analytics: create schema: %w", err)
	}

	return &Store{db: db, runID: runID}, nil
}

// Close releases the underlying DuckDB connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert appends one Snapshot row. It never returns an error the caller
// is expected to act on beyond logging — analytics is a best-effort
// side sink, never the record of truth (the JSONL history file is, per
// §7 History-io-failure: "no record leaves the in-memory buffer
// unpublished" refers to the history store, not this supplementary one).
func (s *Store) Insert(ctx context.Context, snap model.Snapshot) error {
	if s == nil || s.db == nil {
		return nil
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("analytics: marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO snapshots (
			run_id, timestamp_ms, cpu_usage_pct, mem_used_gb, mem_total_gb,
			mem_used_pct, net_rx_bps, net_tx_bps, disk_read_bps, disk_write_bps,
			cpu_temp_c, throttle_active, bridge_connected, battery_charge_pct, raw_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.runID, snap.TimestampMS, snap.CPU.UsagePercent, snap.Memory.UsedGB, snap.Memory.TotalGB,
		snap.Memory.UsedPct, nullableFloat(snap.Network.RxBytesPerSec), nullableFloat(snap.Network.TxBytesPerSec),
		nullableFloat(snap.Disk.ReadBytesPerSec), nullableFloat(snap.Disk.WriteBytesPerSec),
		nullableFloat(snap.CPU.TempC), snap.CPU.ThrottleActive, snap.Bridge.Connected, batteryPct(snap.Battery),
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("analytics: insert snapshot: %w", err)
	}
	return nil
}

// Row is one queried record: the scalar columns used for filtering plus
// the full Snapshot reconstructed from raw_json.
type Row struct {
	TimestampMS int64
	Snapshot    model.Snapshot
}

// QueryRange returns snapshots in [fromMS, toMS] ordered by ascending
// timestamp, capped at limit (mirroring HistoryStore.Query's hard cap —
// §4.H — so a caller can't accidentally pull an unbounded table scan).
func (s *Store) QueryRange(ctx context.Context, fromMS, toMS int64, limit int) ([]Row, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 2000
	} else if limit > 50000 {
		limit = 50000
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp_ms, raw_json FROM snapshots
		WHERE run_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
		LIMIT ?
	`, s.runID, fromMS, toMS, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: query range: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var ts int64
		var raw string
		if err := rows.Scan(&ts, &raw); err != nil {
			return nil, fmt.Errorf("analytics: scan row: %w", err)
		}
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return nil, fmt.Errorf("analytics: unmarshal row: %w", err)
		}
		out = append(out, Row{TimestampMS: ts, Snapshot: snap})
	}
	return out, rows.Err()
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func batteryPct(b *model.Battery) any {
	if b == nil {
		return nil
	}
	return b.ChargePct
}
