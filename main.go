package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"sysmetryd/internal/analytics"
	"sysmetryd/internal/bridgesup"
	"sysmetryd/internal/bus"
	"sysmetryd/internal/config"
	"sysmetryd/internal/diagnostics"
	"sysmetryd/internal/model"
	"sysmetryd/internal/orchestrator"
	"sysmetryd/internal/privilege"
	"sysmetryd/ui/tui"
)

const appName = "sysmetryd"

func main() {
	mcpMode := flag.Bool("mcp", false, "run the diagnostics MCP server on stdio instead of the TUI")
	flag.Parse()

	if err := privilege.EnsureElevated(); err != nil {
		if errors.Is(err, privilege.ErrRelaunched) {
			os.Exit(0)
		}
		log.Fatalf("sysmetryd: elevation required: %v", err)
	}

	logger := log.Default()

	cfgPath, err := config.DefaultPath(appName)
	if err != nil {
		log.Fatalf("sysmetryd: resolve config path: %v", err)
	}
	cfgStore, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("sysmetryd: load config: %v", err)
	}

	dataDir, err := orchestrator.DefaultDataDir(appName)
	if err != nil {
		log.Fatalf("sysmetryd: resolve data dir: %v", err)
	}

	runID := appName + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)

	orch := orchestrator.New(orchestrator.Options{
		Config:       cfgStore,
		Logger:       logger,
		DataDir:      dataDir,
		BridgeLocate: bridgeLocateOptions(),
	})

	store, err := analytics.Open(analytics.Options{
		Path:    filepath.Join(dataDir, "analytics.duckdb"),
		Threads: 4,
	}, runID)
	if err != nil {
		logger.Printf("sysmetryd: analytics disabled, continuing without it: %v", err)
	}
	defer store.Close()

	diag := diagnostics.New(diagnostics.Options{
		RunID:         runID,
		Logger:        logger,
		Neo4jURI:      os.Getenv("SYSMETRYD_NEO4J_URI"),
		Neo4jUser:     os.Getenv("SYSMETRYD_NEO4J_USER"),
		Neo4jPassword: os.Getenv("SYSMETRYD_NEO4J_PASSWORD"),
		Neo4jDatabase: os.Getenv("SYSMETRYD_NEO4J_DATABASE"),
		GeminiAPIKey:  os.Getenv("SYSMETRYD_GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("SYSMETRYD_GEMINI_MODEL"),
		History:       orch.History(),
	})
	defer diag.Close(context.Background())

	ingestCh := orch.Bus().Subscribe(bus.TopicSnapshot)
	go runIngest(store, diag, ingestCh)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *mcpMode {
		runMCP(ctx, diag)
		return
	}

	go orch.Run(ctx)

	if err := tui.Start(orch.Bus(), orch.Config()); err != nil {
		fmt.Fprintf(os.Stderr, "sysmetryd: tui error: %v\n", err)
		cancel()
		os.Exit(1)
	}
	cancel()
}

// runIngest drains the Snapshot bus into the analytics store and the
// diagnostics graph off the sampling loop's own goroutine, since both
// sinks are best-effort and neither may block a 1 Hz tick (§5, §6).
func runIngest(store *analytics.Store, diag *diagnostics.Agent, ch <-chan any) {
	for payload := range ch {
		snap, ok := payload.(model.Snapshot)
		if !ok {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Insert(ctx, snap); err != nil {
			log.Printf("sysmetryd: analytics insert failed: %v", err)
		}
		diag.IngestSnapshot(ctx, snap)
		cancel()
	}
}

func runMCP(ctx context.Context, diag *diagnostics.Agent) {
	srv := diagnostics.NewServer(appName, "1.0.0", diag)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("sysmetryd: mcp server: %v", err)
	}
}

// bridgeLocateOptions resolves the hardware-sensor bridge child's search
// path relative to the running host executable (§4.B step 1). The bridge
// itself ships as a separate native helper binary, not a package in this
// module — it is invoked, never built, by sysmetryd.
func bridgeLocateOptions() bridgesup.LocateOptions {
	const bridgeEnv = "SYSMETRYD_BRIDGE_PATH"
	exe, err := os.Executable()
	if err != nil {
		return bridgesup.LocateOptions{
			HostSuppliedPath: os.Getenv(bridgeEnv),
		}
	}
	dir := filepath.Dir(exe)
	return bridgesup.LocateOptions{
		HostSuppliedPath:     os.Getenv(bridgeEnv),
		ExecutableDir:        dir,
		PortableRelativePath: "sysmetryd-bridge.exe",
		DevBuildOutputs:      []string{"bin/sysmetryd-bridge.exe"},
	}
}
