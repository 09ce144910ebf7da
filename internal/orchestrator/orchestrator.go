// Package orchestrator wires every component's lifetime together (§4.K):
// it owns the bridge supervisor, the SMART worker, the public-net
// poller, the snapshot assembler, and the history store, starts each on
// its own goroutine, and tears all of them down on shutdown — including
// force-terminating the bridge child by PID, since the supervisor's own
// retry loop cannot be trusted to exit promptly on its own.
package orchestrator

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"sysmetryd/internal/assembler"
	"sysmetryd/internal/bridgesup"
	"sysmetryd/internal/bus"
	"sysmetryd/internal/config"
	"sysmetryd/internal/history"
	"sysmetryd/internal/model"
	"sysmetryd/internal/publicnet"
	"sysmetryd/internal/smart"
)

// DefaultDataDir returns the per-user application data directory used
// for the history store, distinct from the config directory (§3 AppConfig,
// §6 history file format).
func DefaultDataDir(appName string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// Options configures an Orchestrator.
type Options struct {
	Config       *config.Store
	Logger       *log.Logger
	DataDir      string
	BridgeLocate bridgesup.LocateOptions
}

// Orchestrator owns every long-lived component and its goroutine.
type Orchestrator struct {
	cfg     *config.Store
	logger  *log.Logger
	dataDir string

	bridgeRecord *model.SharedBridgeRecord
	bridgeSup    *bridgesup.Supervisor
	smartWorker  *smart.Worker
	netPoller    *publicnet.Poller
	historyStore *history.Store
	asm          *assembler.Assembler
	bus          *bus.Bus

	shuttingDown atomic.Bool
	reopenCount  atomic.Int64

	wg sync.WaitGroup
}

// New constructs every component but starts nothing; call Run to start.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	o := &Orchestrator{
		cfg:          opts.Config,
		logger:       logger,
		dataDir:      opts.DataDir,
		bridgeRecord: &model.SharedBridgeRecord{},
		bus:          bus.New(),
	}

	o.bridgeSup = bridgesup.New(opts.BridgeLocate, o.bridgeRecord, logger)
	o.historyStore = history.New(opts.DataDir, logger)
	o.smartWorker = smart.New(logger, o.onSmartUpdate)
	o.netPoller = publicnet.New(opts.Config, logger)

	o.asm = assembler.New(assembler.Options{
		Bridge:            o.bridgeRecord,
		Config:            opts.Config,
		SmartSource:       o.smartWorker,
		PublicNet:         o.netPoller,
		Logger:            logger,
		OnReopenRequested: o.requestReopen,
	})
	o.asm.Subscribe(o.onSnapshot)

	return o
}

// Subscribe registers an additional Snapshot consumer (tray, console),
// delivered in the same emission order as the history/bus subscriber.
func (o *Orchestrator) Subscribe(s assembler.Subscriber) {
	o.asm.Subscribe(s)
}

// Bus exposes the UI event bus for command/subscriber wiring.
func (o *Orchestrator) Bus() *bus.Bus { return o.bus }

// Config exposes the shared AppConfig store for the get_config/set_config
// commands.
func (o *Orchestrator) Config() *config.Store { return o.cfg }

// History exposes the history store for the history_query command.
func (o *Orchestrator) History() *history.Store { return o.historyStore }

// SmartWorker exposes the SMART worker so a run_bridge_tests-adjacent
// command surface can request an immediate Refresh.
func (o *Orchestrator) SmartWorker() *smart.Worker { return o.smartWorker }

// BridgePID reports the live bridge child's PID, or 0 if none.
func (o *Orchestrator) BridgePID() int { return o.bridgeSup.PID() }

// ReopenCount reports how many times a vendor-handle reopen has been
// requested, exposed for diagnostics and tests.
func (o *Orchestrator) ReopenCount() int64 { return o.reopenCount.Load() }

// Run starts every component and blocks until ctx is cancelled, then
// tears everything down, force-killing the bridge child by PID (§4.K).
func (o *Orchestrator) Run(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.bridgeSup.Run(bgCtx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.smartWorker.Run(bgCtx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.netPoller.Run(bgCtx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.asm.Run(bgCtx)
	}()

	<-ctx.Done()
	o.shuttingDown.Store(true)
	cancel()
	o.smartWorker.Shutdown()

	o.wg.Wait()

	if pid := o.bridgeSup.PID(); pid > 0 {
		if err := killByPID(pid); err != nil {
			o.logger.Printf("orchestrator: force-kill of bridge PID %d failed: %v", pid, err)
		}
	}
}

// onSnapshot is the Assembler's own subscriber hook (§4.F step 10): it
// pushes every emitted Snapshot into the history store and republishes
// it on the UI bus, in the same emission order subscribers see it (§5).
func (o *Orchestrator) onSnapshot(snap model.Snapshot) {
	o.historyStore.Push(snap)
	o.bus.Publish(bus.TopicSnapshot, snap)
}

func (o *Orchestrator) onSmartUpdate(health []model.SmartHealth, lastErr string) {
	o.bus.Publish(bus.TopicSmart, bus.SmartEvent{
		Smart:       health,
		TimestampMS: model.NowMS(time.Now()),
		LastError:   lastErr,
	})
}

// requestReopen is the assembler's vendor-handle-reopen hook (§4.C,
// §4.F step 5, §4.K). It covers both in-process WMI handles the
// assembler tracks independently: the performance-counter sensor and the
// CPU thermal/fan sensor (logical-disk enumeration goes through gopsutil
// in this port rather than WMI, so it has no separate handle to reopen).
// Both WMI-backed sensors reconstruct their query path on every call, so
// reopening here reduces to bookkeeping and a diagnostic log entry rather
// than tearing down and recreating a live connection.
func (o *Orchestrator) requestReopen() {
	o.reopenCount.Add(1)
	o.logger.Printf("orchestrator: vendor-handle reopen requested (count=%d)", o.reopenCount.Load())
}
