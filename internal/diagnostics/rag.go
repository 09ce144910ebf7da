package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// modelConfig mirrors the teacher's rag.ModelConfig: a named Gemini
// model plus its sampling parameters.
type modelConfig struct {
	name        string
	temperature float32
	topP        float32
	topK        int32
}

var availableModels = map[string]modelConfig{
	"flash": {name: "gemini-flash-latest", temperature: 0.7, topP: 0.95, topK: 40},
	"pro":   {name: "gemini-pro-latest", temperature: 0.7, topP: 0.95, topK: 40},
}

// ragEngine answers natural-language questions about recent Snapshot
// history by asking Gemini to draft a Cypher query, running it against
// the graph, and asking Gemini again to turn the result into prose —
// the same two-pass GraphRAG shape as the teacher's
// internal/database/rag.GraphRAGEngine, retargeted at this engine's
// Process/Snapshot/Flag schema (graph.go) instead of the teacher's
// Host/Snapshot/Cause/Container one.
type ragEngine struct {
	graph  GraphClient
	gemini *genai.Client
	cfg    modelConfig
}

func newRAGEngine(graph GraphClient, gemini *genai.Client, modelKey string) *ragEngine {
	cfg, ok := availableModels[modelKey]
	if !ok {
		cfg = availableModels["pro"]
	}
	return &ragEngine{graph: graph, gemini: gemini, cfg: cfg}
}

func (e *ragEngine) model() *genai.GenerativeModel {
	m := e.gemini.GenerativeModel(e.cfg.name)
	m.SetTemperature(e.cfg.temperature)
	m.SetTopP(e.cfg.topP)
	m.SetTopK(e.cfg.topK)
	return m
}

const graphSchemaPrompt = `Graph schema:
- Nodes: Process {run_id}, Snapshot {timestamp_ms, cpu_usage_pct, mem_used_pct, throttle_active, bridge_connected}, Flag {name}
- Relationships: (Process)-[:HAS_SNAPSHOT]->(Snapshot), (Snapshot)-[:TRIGGERED]->(Flag)
- Known flag names: cpu_overloaded, memory_pressure, cpu_throttled, bridge_disconnected, battery_low`

func (e *ragEngine) query(ctx context.Context, question string) (string, error) {
	cypher, err := e.generateCypher(ctx, question)
	if err != nil {
		return "", fmt.Errorf("generate cypher: %w", err)
	}

	data, err := e.graph.ExecuteCypher(ctx, cypher)
	if err != nil || len(data) == 0 {
		data, err = e.graph.ExecuteCypher(ctx, fallbackCypher)
		if err != nil {
			return "", fmt.Errorf("execute fallback query: %w", err)
		}
	}

	return e.synthesize(ctx, question, data)
}

const fallbackCypher = `
MATCH (p:Process)-[:HAS_SNAPSHOT]->(s:Snapshot)
OPTIONAL MATCH (s)-[:TRIGGERED]->(f:Flag)
WITH p, s, collect(DISTINCT f.name) AS flags
RETURN p.run_id AS run_id, s.timestamp_ms AS timestamp_ms,
       s.cpu_usage_pct AS cpu_usage_pct, s.mem_used_pct AS mem_used_pct, flags
ORDER BY s.timestamp_ms DESC
LIMIT 10
`

func (e *ragEngine) generateCypher(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf("You are a Neo4j Cypher expert for a system-telemetry graph.\n%s\n\nQuestion: %s\n\nReturn ONLY the Cypher query, no explanation. Limit results to 10.",
		graphSchemaPrompt, question)

	resp, err := e.model().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return cleanCypher(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

func (e *ragEngine) synthesize(ctx context.Context, question string, data []map[string]any) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are a system-monitoring assistant. Answer the question using only the graph data below.

Question: %s

Graph data:
%s

Explain what the data shows, the likely cause if a flag fired, and whether it's still ongoing. Say so plainly if the data is empty.`, question, string(raw))

	resp, err := e.model().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "No answer available from the current snapshot history.", nil
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func cleanCypher(q string) string {
	q = strings.TrimSpace(q)
	q = strings.TrimPrefix(q, "```cypher")
	q = strings.TrimPrefix(q, "```")
	q = strings.TrimSuffix(q, "```")
	return strings.TrimSpace(q)
}
