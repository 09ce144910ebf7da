// Package diagnostics is the optional, nil-safe incident-explanation
// surface described in SPEC_FULL.md §4: a Neo4j-backed "what fired
// together" relationship store, a Gemini-backed natural-language
// summarizer over it, and an MCP tool surface exposing both to an
// external AI assistant. None of it sits on the 1 Hz sampling loop's
// critical path — every dependency here is optional exactly like the
// teacher's graphClient field in internal/database/data_worker.go, and
// every exported Agent method is safe on a nil receiver or nil client.
package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"sysmetryd/internal/model"
)

// GraphClient is the subset of graph operations the diagnostics agent
// needs, mirroring the teacher's graph.GraphClient interface shape so a
// test fake can stand in for a live Neo4j instance.
type GraphClient interface {
	Close(ctx context.Context) error
	IngestSnapshot(ctx context.Context, runID string, snap model.Snapshot) error
	ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error)
}

// Neo4jClient implements GraphClient against a real Neo4j instance.
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewNeo4jClient opens and verifies a Neo4j connection, following the
// teacher's graph.NewNeo4jClient shape (basic auth, connectivity check
// up front rather than on first use).
func NewNeo4jClient(uri, username, password, dbName string) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("diagnostics: create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("diagnostics: connect to neo4j: %w", err)
	}

	return &Neo4jClient{driver: driver, dbName: dbName}, nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// IngestSnapshot merges a Process node for runID and attaches a
// Snapshot node carrying the handful of scalar fields worth graph
// queries (CPU/memory load, throttle, bridge connectivity), plus Flag
// nodes (battery appears only as the battery_low flag) for whichever conditions this tick tripped — the
// graph's purpose is "what fired together", not full-fidelity storage
// (that's analytics.Store and the JSONL history file).
func (c *Neo4jClient) IngestSnapshot(ctx context.Context, runID string, snap model.Snapshot) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `MERGE (p:Process {run_id: $run_id})`, map[string]any{"run_id": runID}); err != nil {
			return nil, err
		}

		snapParams := map[string]any{
			"run_id":           runID,
			"timestamp_ms":     snap.TimestampMS,
			"cpu_usage_pct":    snap.CPU.UsagePercent,
			"mem_used_pct":     snap.Memory.UsedPct,
			"throttle_active":  snap.CPU.ThrottleActive,
			"bridge_connected": snap.Bridge.Connected,
		}
		if _, err := tx.Run(ctx, `
			MATCH (p:Process {run_id: $run_id})
			CREATE (s:Snapshot {
				timestamp_ms: $timestamp_ms,
				cpu_usage_pct: $cpu_usage_pct,
				mem_used_pct: $mem_used_pct,
				throttle_active: $throttle_active,
				bridge_connected: $bridge_connected
			})
			CREATE (p)-[:HAS_SNAPSHOT]->(s)
		`, snapParams); err != nil {
			return nil, err
		}

		for _, flag := range flagsFor(snap) {
			if _, err := tx.Run(ctx, `
				MATCH (p:Process {run_id: $run_id})-[:HAS_SNAPSHOT]->(s:Snapshot {timestamp_ms: $timestamp_ms})
				MERGE (f:Flag {name: $flag})
				CREATE (s)-[:TRIGGERED]->(f)
			`, map[string]any{"run_id": runID, "timestamp_ms": snap.TimestampMS, "flag": flag}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// flagsFor names the conditions worth a graph relationship, grounded on
// the teacher's flagger thresholds (70/90% CPU and memory warn/crit).
func flagsFor(snap model.Snapshot) []string {
	var flags []string
	if snap.CPU.UsagePercent > 90 {
		flags = append(flags, "cpu_overloaded")
	}
	if snap.Memory.UsedPct > 90 {
		flags = append(flags, "memory_pressure")
	}
	if snap.CPU.ThrottleActive {
		flags = append(flags, "cpu_throttled")
	}
	if !snap.Bridge.Connected {
		flags = append(flags, "bridge_disconnected")
	}
	if snap.Battery != nil && snap.Battery.ChargePct < 15 && !snap.Battery.Charging {
		flags = append(flags, "battery_low")
	}
	return flags
}

// ExecuteCypher runs a raw read-only Cypher query for the RAG engine's
// retrieval step.
func (c *Neo4jClient) ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, record := range records {
			row := make(map[string]any, len(record.Keys))
			for i, key := range record.Keys {
				row[key] = convertNeo4jValue(record.Values[i])
			}
			rows = append(rows, row)
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("diagnostics: cypher query: %w", err)
	}
	return result.([]map[string]any), nil
}

func convertNeo4jValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return map[string]any{"labels": v.Labels, "properties": v.Props}
	case neo4j.Relationship:
		return map[string]any{"type": v.Type, "properties": v.Props}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertNeo4jValue(item)
		}
		return out
	default:
		return v
	}
}
