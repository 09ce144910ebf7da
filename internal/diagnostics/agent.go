package diagnostics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"sysmetryd/internal/history"
	"sysmetryd/internal/model"
)

// Options configures an Agent. Every field is optional: an Agent built
// from a zero Options is fully functional, it just answers every
// question from the history store alone instead of Neo4j/Gemini.
type Options struct {
	RunID  string
	Logger *log.Logger

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	GeminiAPIKey string
	GeminiModel  string

	History *history.Store
}

// Agent is the optional incident-explanation surface (SPEC_FULL.md §4).
// Every exported method tolerates a nil graph/gemini client and falls
// back to a canned summary built directly from the history store, the
// same nil-safe shape as the teacher's data_worker.graphClient field.
type Agent struct {
	runID   string
	logger  *log.Logger
	graph   GraphClient
	gemini  *genai.Client
	rag     *ragEngine
	history *history.Store
}

// New constructs an Agent. Neo4j/Gemini connection failures are logged
// and degrade to a nil client rather than failing startup — diagnostics
// is explicitly off the sampling loop's critical path.
func New(opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	a := &Agent{runID: opts.RunID, logger: logger, history: opts.History}

	if opts.Neo4jURI != "" {
		client, err := NewNeo4jClient(opts.Neo4jURI, opts.Neo4jUser, opts.Neo4jPassword, opts.Neo4jDatabase)
		if err != nil {
			logger.Printf("diagnostics: neo4j unavailable, graph ingestion disabled: %v", err)
		} else {
			a.graph = client
		}
	}

	if opts.GeminiAPIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := genai.NewClient(ctx, option.WithAPIKey(opts.GeminiAPIKey))
		if err != nil {
			logger.Printf("diagnostics: gemini unavailable, NL summaries disabled: %v", err)
		} else {
			a.gemini = client
			if a.graph != nil {
				a.rag = newRAGEngine(a.graph, a.gemini, opts.GeminiModel)
			}
		}
	}

	return a
}

// Close releases the Neo4j/Gemini clients, if any were created.
func (a *Agent) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.graph != nil {
		if err := a.graph.Close(ctx); err != nil {
			a.logger.Printf("diagnostics: neo4j close: %v", err)
		}
	}
	if a.gemini != nil {
		a.gemini.Close()
	}
}

// IngestSnapshot pushes one Snapshot into the graph, best-effort. It is
// meant to be called from the same onSnapshot hook the orchestrator
// uses for the history store and UI bus (§4.F step 11), but never on
// the hot path — call it from a goroutine if ingestion latency matters.
func (a *Agent) IngestSnapshot(ctx context.Context, snap model.Snapshot) {
	if a == nil || a.graph == nil {
		return
	}
	if err := a.graph.IngestSnapshot(ctx, a.runID, snap); err != nil {
		a.logger.Printf("diagnostics: snapshot ingest failed: %v", err)
	}
}

// QueryRecent delegates to the history store — the diagnostics agent
// never holds its own copy of snapshot history.
func (a *Agent) QueryRecent(fromMS, toMS int64, limit int) []model.Snapshot {
	if a == nil || a.history == nil {
		return nil
	}
	return a.history.Query(fromMS, toMS, limit)
}

// ExplainIncident answers a free-form question about recent telemetry.
// With Gemini+Neo4j configured it runs the full GraphRAG pass; without
// them it falls back to a terse, deterministic summary of the last
// hour's history so the tool still returns something useful offline.
func (a *Agent) ExplainIncident(ctx context.Context, question string) (string, error) {
	if a == nil {
		return "", fmt.Errorf("diagnostics: agent not configured")
	}
	if a.rag != nil {
		return a.rag.query(ctx, question)
	}
	return a.fallbackSummary(), nil
}

func (a *Agent) fallbackSummary() string {
	if a.history == nil {
		return "No history store configured; nothing to summarize."
	}
	now := time.Now().UnixMilli()
	recent := a.history.Query(now-time.Hour.Milliseconds(), now, 200)
	if len(recent) == 0 {
		return "No snapshots recorded in the last hour."
	}

	var maxCPU, maxMem float64
	throttled, disconnected := 0, 0
	for _, s := range recent {
		if s.CPU.UsagePercent > maxCPU {
			maxCPU = s.CPU.UsagePercent
		}
		if s.Memory.UsedPct > maxMem {
			maxMem = s.Memory.UsedPct
		}
		if s.CPU.ThrottleActive {
			throttled++
		}
		if !s.Bridge.Connected {
			disconnected++
		}
	}
	return fmt.Sprintf(
		"Last hour (%d snapshots): peak CPU %.1f%%, peak memory %.1f%%, throttled %d ticks, bridge disconnected %d ticks. "+
			"Configure Neo4j + Gemini for causal root-cause analysis.",
		len(recent), maxCPU, maxMem, throttled, disconnected,
	)
}
