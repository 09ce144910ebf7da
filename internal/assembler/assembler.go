// Package assembler implements the per-tick Snapshot Assembler (§4.F): it
// drives the 1 Hz sampling loop, pulls every counter source, resolves
// priority between overlapping bridge/vendor sources, and publishes one
// immutable Snapshot to its subscribers each tick.
package assembler

import (
	"context"
	"log"
	"strings"
	"time"

	"sysmetryd/internal/config"
	"sysmetryd/internal/model"
	"sysmetryd/internal/rate"
	"sysmetryd/internal/runner"
	"sysmetryd/internal/scheduler"
	"sysmetryd/internal/sensors"
)

// tickPeriod is the sampling loop's sleep between ticks (§4.F step 12).
const tickPeriod = 1 * time.Second

// perfCounterReopenEvery bounds how long the assembler goes without
// forcing a vendor-handle reopen even absent consecutive failures (§4.F
// step 5).
const perfCounterReopenEvery = 1800 * time.Second

// SmartSource is the SMART Worker's read side: the assembler copies
// whatever is cached there into Storage.Smart on the "smart" paced
// cadence (§4.F step 8, §4.I). Defined here rather than imported from
// package smart to avoid a dependency cycle; smart.Worker satisfies it.
type SmartSource interface {
	Latest() ([]model.SmartHealth, string)
}

// PublicNetSource is the Public-Net Poller's read side (§4.J).
type PublicNetSource interface {
	Snapshot() model.PublicNet
}

// Subscriber receives one Snapshot per tick, in emission order (§5).
type Subscriber func(model.Snapshot)

// Options configures an Assembler. Sensor fields default to their
// standard constructor when nil, so tests can substitute fakes.
type Options struct {
	Bridge      *model.SharedBridgeRecord
	Config      *config.Store
	SmartSource SmartSource
	PublicNet   PublicNetSource
	Logger      *log.Logger

	// OnReopenRequested is invoked when a long gap, a vendor-counter
	// failure streak, or the 1800s ceiling requires the orchestrator to
	// recreate its thermal/fan/perf-counter handles (§4.C, §4.F step 5,
	// §4.K).
	OnReopenRequested func()

	CPU         *sensors.CPUSensor
	Mem         *sensors.MemSensor
	NetIO       *sensors.NetIOSensor
	Process     *sensors.ProcessSensor
	Conns       *sensors.ConnectionCountSensor
	PerfCounter *sensors.PerfCounterSensor
	ThermalFan  *sensors.ThermalFanSensor
	NetIf       *sensors.NetIfSensor
	LogicalDisk *sensors.LogicalDiskSensor
	Wifi        *sensors.WifiSensor
}

// Assembler owns per-counter accumulator state and drives the 1 Hz loop.
// It is not safe for concurrent use; it runs on a single goroutine, per
// §5's scheduling model.
type Assembler struct {
	bridge      *model.SharedBridgeRecord
	cfg         *config.Store
	smart       SmartSource
	publicNet   PublicNetSource
	logger      *log.Logger
	onReopen    func()

	cpuSensor     *sensors.CPUSensor
	memSensor     *sensors.MemSensor
	netioSensor   *sensors.NetIOSensor
	processSensor *sensors.ProcessSensor
	connSensor    *sensors.ConnectionCountSensor
	perfSensor    *sensors.PerfCounterSensor
	thermalSensor *sensors.ThermalFanSensor
	netifSensor   *sensors.NetIfSensor
	diskSensor    *sensors.LogicalDiskSensor
	wifiSensor    *sensors.WifiSensor

	// wifiRunner, netifRunner, and diskRunner push the three paced,
	// blocking command/enumeration probes (§9's "blocking probe inside a
	// 1 Hz loop" warning) onto the Runner framework's own worker thread
	// per trigger (§4.D, §4.E) instead of calling them inline on the
	// sampling goroutine.
	wifiRunner  *runner.Runner
	netifRunner *runner.Runner
	diskRunner  *runner.Runner

	sched *scheduler.Scheduler

	netRx, netTx           rate.Accumulator
	diskRead, diskWrite    rate.Accumulator

	hasLastTick         bool
	lastTick            time.Time
	lastPerfReopenAt    time.Time
	lastThermalReopenAt time.Time

	bridgeFreshKnown bool
	bridgeWasFresh   bool

	lastWifi     model.WifiState
	haveWifi     bool
	lastNetIfs   []model.NetIf
	lastLogical  []model.LogicalDisk
	lastSmart    []model.SmartHealth

	subscribers []Subscriber
}

// New builds an Assembler, defaulting unset sensor fields.
func New(opts Options) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	a := &Assembler{
		bridge:    opts.Bridge,
		cfg:       opts.Config,
		smart:     opts.SmartSource,
		publicNet: opts.PublicNet,
		logger:    logger,
		onReopen:  opts.OnReopenRequested,

		cpuSensor:     opts.CPU,
		memSensor:     opts.Mem,
		netioSensor:   opts.NetIO,
		processSensor: opts.Process,
		connSensor:    opts.Conns,
		perfSensor:    opts.PerfCounter,
		thermalSensor: opts.ThermalFan,
		netifSensor:   opts.NetIf,
		diskSensor:    opts.LogicalDisk,
		wifiSensor:    opts.Wifi,

		sched: scheduler.New(map[string]int{
			"wifi":         5,
			"netif":        10,
			"logicaldisk":  10,
			"smart":        10,
		}),
	}
	if a.cpuSensor == nil {
		a.cpuSensor = sensors.NewCPUSensor()
	}
	if a.memSensor == nil {
		a.memSensor = sensors.NewMemSensor()
	}
	if a.netioSensor == nil {
		a.netioSensor = sensors.NewNetIOSensor()
	}
	if a.connSensor == nil {
		a.connSensor = sensors.NewConnectionCountSensor()
	}
	if a.perfSensor == nil {
		a.perfSensor = sensors.NewPerfCounterSensor()
	}
	if a.thermalSensor == nil {
		a.thermalSensor = sensors.NewThermalFanSensor()
	}
	if a.netifSensor == nil {
		a.netifSensor = sensors.NewNetIfSensor()
	}
	if a.diskSensor == nil {
		a.diskSensor = sensors.NewLogicalDiskSensor()
	}
	if a.wifiSensor == nil {
		a.wifiSensor = sensors.NewWifiSensor()
	}
	if a.processSensor == nil {
		topN := 5
		if a.cfg != nil {
			topN = a.cfg.Get().TopN
		}
		a.processSensor = sensors.NewProcessSensor(topN)
	}

	a.wifiRunner = runner.New("wifi", a.wifiWork)
	a.netifRunner = runner.New("netif", a.netifWork)
	a.diskRunner = runner.New("logicaldisk", a.diskWork)

	return a
}

// wifiResult is the Runner-cached result of a wifi poll: ok mirrors
// WifiSensor.Collect's second return value, since "no link" is absence,
// not a Work error (§4.A probes never raise).
type wifiResult struct {
	info model.WifiState
	ok   bool
}

// wifiWork, netifWork, and diskWork are the three paced probes' Runner
// Work functions (§4.E): each is triggered fire-and-forget on its
// scheduler cadence and runs on its own worker goroutine, so a slow
// `netsh` shell-out or disk enumeration never stalls the 1 Hz tick.
func (a *Assembler) wifiWork() (any, error) {
	info, ok := a.wifiSensor.Collect()
	return wifiResult{info: model.WifiState{
		SSID:      info.SSID,
		SignalPct: clampInt(info.SignalPct),
		LinkMbps:  info.LinkMbps,
		RSSIdBm:   info.RSSIdBm,
	}, ok: ok}, nil
}

func (a *Assembler) netifWork() (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reading, err := a.netifSensor.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.NetIf, 0, len(reading.Interfaces))
	for _, in := range reading.Interfaces {
		out = append(out, model.NetIf{
			Name: in.Name, MAC: in.MAC, IPs: in.IPs,
			SpeedMbps: in.SpeedMbps, Media: in.Media,
		})
	}
	return out, nil
}

func (a *Assembler) diskWork() (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reading, err := a.diskSensor.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.LogicalDisk, 0, len(reading.Disks))
	for _, d := range reading.Disks {
		out = append(out, model.LogicalDisk{
			DriveID: d.DriveID, TotalBytes: d.TotalBytes, FreeBytes: d.FreeBytes,
		})
	}
	return out, nil
}

// Subscribe registers a Snapshot consumer (tray, UI bus, history store).
func (a *Assembler) Subscribe(s Subscriber) {
	a.subscribers = append(a.subscribers, s)
}

// Run drives the 1 Hz sampling loop until ctx is cancelled (§4.F, §4.K).
func (a *Assembler) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		snap := a.Tick(ctx)
		for _, sub := range a.subscribers {
			sub(snap)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(tickPeriod):
		}
	}
}

// Tick performs exactly one assembly pass and returns the resulting
// Snapshot (§4.F steps 1-10); Run handles publication and sleep.
func (a *Assembler) Tick(ctx context.Context) model.Snapshot {
	return a.tickAt(ctx, time.Now())
}

// tickAt is Tick with an injectable clock, so tests can drive exact dt
// values (§8 scenarios S1-S4) without real sleeps.
func (a *Assembler) tickAt(ctx context.Context, now time.Time) model.Snapshot {
	a.sched.Tick()

	cfg := config.Default()
	if a.cfg != nil {
		cfg = a.cfg.Get()
	}

	// Step 3: compute the global dt and trigger a reopen on a long gap
	// even though each Accumulator also self-resets on its own dt.
	if a.hasLastTick {
		if now.Sub(a.lastTick) > 5*time.Second {
			a.requestReopen()
		}
	}
	a.hasLastTick = true
	a.lastTick = now

	// Step 1: refresh OS-global counters.
	cpuReading, _ := a.cpuSensor.Collect(ctx)
	memReading, _ := a.memSensor.Collect(ctx)
	netioReading, _ := a.netioSensor.Collect(ctx)
	processReading, _ := a.processSensor.Collect(ctx)
	connCount, connErr := a.connSensor.Collect(ctx)

	// Step 2: aggregate cumulative counters honoring the interface allow-list.
	rxCum, txCum := sensors.Aggregate(netioReading.Interfaces, cfg.NetInterfaces)

	// Step 4: rates + EMAs.
	rxRate, _ := a.netRx.Sample(float64(rxCum), now)
	txRate, _ := a.netTx.Sample(float64(txCum), now)
	readRate, _ := a.diskRead.Sample(float64(processReading.TotalDiskReadBytes), now)
	writeRate, _ := a.diskWrite.Sample(float64(processReading.TotalDiskWriteBytes), now)

	// Step 5: vendor performance counters, with its own reopen trigger.
	perf := a.perfSensor.Collect()
	if a.perfSensor.ConsecutiveFailures() >= 3 || now.Sub(a.lastPerfReopenAt) >= perfCounterReopenEvery {
		a.requestReopen()
		a.perfSensor.ResetFailures()
		a.lastPerfReopenAt = now
	}

	// Vendor CPU-temperature/fan fallback, paced by the same reopen rule
	// as the other vendor counters; its handle is the second one the
	// orchestrator's §4.K reopen model tracks (thermal/fan), distinct from
	// the perf-counter handle above.
	thermal := a.thermalSensor.Collect()
	if a.thermalSensor.ConsecutiveFailures() >= 3 || now.Sub(a.lastThermalReopenAt) >= perfCounterReopenEvery {
		a.requestReopen()
		a.thermalSensor.ResetFailures()
		a.lastThermalReopenAt = now
	}

	// Step 6-7: bridge record, freshness, fan aggregation, tie-breaks.
	var bridgeHealth model.BridgeHealth
	var cpuTempC, cpuFanRPM, caseFanRPM, moboTempC *float64
	var perCoreTemps []float64
	var packagePowerW, avgFreqMHz *float64
	var throttleActive bool
	var throttleReasons []string
	var storageTemps []model.StorageTemp
	var gpus []model.Gpu

	if a.bridge != nil {
		rec, fresh, ever := a.bridge.Snapshot(now)
		bridgeHealth.IdleSeconds = a.bridge.IdleSeconds(now)
		bridgeHealth.Connected = fresh

		if !a.bridgeFreshKnown || a.bridgeWasFresh != fresh {
			a.logger.Printf("bridge: freshness transitioned to fresh=%v", fresh)
			a.bridgeFreshKnown = true
			a.bridgeWasFresh = fresh
		}

		if ever {
			if rec.HBTick != nil {
				bridgeHealth.HeartbeatTick = *rec.HBTick
			}
			if rec.ExcCount != nil {
				bridgeHealth.ExceptionCount = *rec.ExcCount
			}
			if rec.UptimeSec != nil {
				bridgeHealth.UptimeSeconds = *rec.UptimeSec
			}
			if rec.SinceReopenSec != nil {
				bridgeHealth.SinceReopenSeconds = *rec.SinceReopenSec
			}
		}

		if fresh {
			cpuTempC = validTempPtr(rec.CPUTempC)
			moboTempC = validTempPtr(rec.MoboTempC)
			packagePowerW = rec.CPUPkgPowerW
			avgFreqMHz = rec.CPUAvgFreqMHz
			if rec.CPUThrottleActive != nil {
				throttleActive = *rec.CPUThrottleActive
			}
			throttleReasons = rec.CPUThrottleReasons
			perCoreTemps = filterValidTemps(rec.CPUCoreTempsC)

			cpuFanRPM, caseFanRPM = aggregateFans(rec.Fans)

			for _, t := range rec.StorageTemps {
				if model.ValidTemp(t.TempC) {
					storageTemps = append(storageTemps, model.StorageTemp{Name: t.Name, TempC: t.TempC})
				}
			}
			for _, g := range rec.GPUs {
				gpus = append(gpus, model.Gpu{
					Name:    g.Name,
					TempC:   validTempPtr(g.TempC),
					LoadPct: clampPtr(g.LoadPct),
					CoreMHz: g.CoreMHz,
					FanRPM:  g.FanRPM,
					VRAMMB:  g.VRAMUsedMB,
					PowerW:  g.PowerW,
				})
			}
		}
	}

	// Step 7 (cont'd): CPU temperature and CPU fan RPM resolve with
	// priority bridge -> vendor-counter; the bridge value wins whenever
	// it's fresh, and the in-process WMI reading (Step 5) fills in
	// whatever the bridge didn't provide.
	if cpuTempC == nil {
		cpuTempC = validTempPtr(thermal.CPUTempC)
	}
	if cpuFanRPM == nil {
		cpuFanRPM = thermal.FanRPM
	}

	// Step 8: paced probes, triggered fire-and-forget on the Runner
	// framework (§4.D, §4.E) so a slow `netsh` shell-out or disk
	// enumeration never blocks this tick's goroutine; results surface on
	// whichever later tick finds the Runner's snapshot updated.
	nowMS := model.NowMS(now)
	if a.sched.Due("wifi") {
		a.wifiRunner.Trigger(nowMS)
	}
	if snap, err := a.wifiRunner.Snapshot(); err == nil && snap != nil {
		if wr, ok := snap.(wifiResult); ok {
			a.lastWifi = wr.info
			a.haveWifi = wr.ok
		}
	}

	if a.sched.Due("netif") {
		a.netifRunner.Trigger(nowMS)
	}
	if snap, err := a.netifRunner.Snapshot(); err == nil && snap != nil {
		if ifs, ok := snap.([]model.NetIf); ok {
			a.lastNetIfs = ifs
		}
	}

	if a.sched.Due("logicaldisk") {
		a.diskRunner.Trigger(nowMS)
	}
	if snap, err := a.diskRunner.Snapshot(); err == nil && snap != nil {
		if disks, ok := snap.([]model.LogicalDisk); ok {
			a.lastLogical = disks
		}
	}

	if a.sched.Due("smart") && a.smart != nil {
		a.lastSmart, _ = a.smart.Latest()
	}

	// Step 9: single-target TCP reachability.
	var reachMS *float64
	target := "1.1.1.1:443"
	timeout := 300 * time.Millisecond
	if len(cfg.RTTTargets) > 0 {
		target = cfg.RTTTargets[0]
	}
	if cfg.RTTTimeoutMS > 0 {
		timeout = time.Duration(cfg.RTTTimeoutMS) * time.Millisecond
	}
	if ms, ok := sensors.Reachability(ctx, target, timeout); ok {
		reachMS = &ms
	}

	var activeConns *int
	if connErr == nil {
		c := connCount
		activeConns = &c
	}

	var publicNet model.PublicNet
	if a.publicNet != nil {
		publicNet = a.publicNet.Snapshot()
	}

	// Step 10: build the Snapshot.
	snap := model.Snapshot{
		TimestampMS: model.NowMS(now),
		CPU: model.CPU{
			UsagePercent:    model.ClampPercent(cpuReading.TotalPercent),
			PerCorePercent:  clampAll(cpuReading.PerCore),
			PerCoreMHz:      cpuReading.PerCoreMHz,
			PerCoreTempC:    perCoreTemps,
			TempC:           cpuTempC,
			FanRPM:          cpuFanRPM,
			PackagePowerW:   packagePowerW,
			AvgFrequencyMHz: avgFreqMHz,
			ThrottleActive:  throttleActive,
			ThrottleReasons: throttleReasons,
		},
		Memory: model.Memory{
			UsedGB:  bytesToGB(memReading.UsedBytes),
			TotalGB: bytesToGB(memReading.TotalBytes),
			UsedPct: model.ClampPercent(memReading.UsedPercent),
			CommittedGB: nonZeroGB(perf.MemCommittedBytes),
			CacheGB:     nonZeroGB(perf.MemCacheBytes),
			PoolPagedGB: nonZeroGB(perf.MemPoolPagedBytes),
			PoolNonPagedGB: nonZeroGB(perf.MemPoolNonPagedBytes),
			PagesPerSec: nonZero(perf.MemPagesPerSec),
		},
		Network: model.Network{
			RxBytesPerSec:  &rxRate,
			TxBytesPerSec:  &txRate,
			RxErrorsPerSec: nonZero(perf.NetErrorsInPerSec),
			TxErrorsPerSec: nonZero(perf.NetErrorsOutPerSec),
			Interfaces:     append([]model.NetIf(nil), a.lastNetIfs...),
			ActiveTCPConns: activeConns,
			ReachabilityMS: reachMS,
		},
		Disk: model.Disk{
			ReadBytesPerSec:  &readRate,
			WriteBytesPerSec: &writeRate,
			ReadIOPS:         nonZero(perf.DiskReadsPerSec),
			WriteIOPS:        nonZero(perf.DiskWritesPerSec),
			AvgQueueLength:   nonZero(perf.DiskQueueLength),
		},
		Storage: model.Storage{
			Temps:        storageTemps,
			LogicalDisks: append([]model.LogicalDisk(nil), a.lastLogical...),
			Smart:        append([]model.SmartHealth(nil), a.lastSmart...),
		},
		ThermalsFans: model.ThermalsFans{
			MoboTempC:  moboTempC,
			CPUFanRPM:  cpuFanRPM,
			CaseFanRPM: caseFanRPM,
		},
		GPUs:      gpus,
		Bridge:    bridgeHealth,
		PublicNet: publicNet,
	}
	if a.haveWifi {
		w := a.lastWifi
		snap.Network.Wifi = &w
	}

	return snap
}

// requestReopen notifies the orchestrator that a vendor handle needs
// reopening. Per-handle timestamps (lastPerfReopenAt, lastThermalReopenAt)
// are tracked by the caller, since each of the §4.K handles reopens on
// its own schedule rather than a single shared one.
func (a *Assembler) requestReopen() {
	if a.onReopen != nil {
		a.onReopen()
	}
}

// aggregateFans groups bridge fan entries into CPU-named vs. case fans
// (case-insensitive substring "cpu") and takes the maximum within each
// group, preferring RPM over duty-percent per fan (§4.F tie-breaks).
func aggregateFans(fans []model.BridgeFan) (cpuFan, caseFan *float64) {
	var cpuMax, caseMax float64
	var haveCPU, haveCase bool
	for _, f := range fans {
		v, ok := fanValue(f)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), "cpu") {
			if !haveCPU || v > cpuMax {
				cpuMax = v
				haveCPU = true
			}
		} else {
			if !haveCase || v > caseMax {
				caseMax = v
				haveCase = true
			}
		}
	}
	if haveCPU {
		cpuFan = &cpuMax
	}
	if haveCase {
		caseFan = &caseMax
	}
	return cpuFan, caseFan
}

func fanValue(f model.BridgeFan) (float64, bool) {
	if f.RPM != nil {
		return *f.RPM, true
	}
	if f.Pct != nil {
		return *f.Pct, true
	}
	return 0, false
}

func validTempPtr(c *float64) *float64 {
	if c == nil || !model.ValidTemp(*c) {
		return nil
	}
	v := *c
	return &v
}

func filterValidTemps(cs []float64) []float64 {
	if len(cs) == 0 {
		return nil
	}
	out := make([]float64, 0, len(cs))
	for _, c := range cs {
		if model.ValidTemp(c) {
			out = append(out, c)
		}
	}
	return out
}

func clampPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := model.ClampPercent(*v)
	return &c
}

func clampAll(vs []float64) []float64 {
	if len(vs) == 0 {
		return nil
	}
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = model.ClampPercent(v)
	}
	return out
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func bytesToGB(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nonZeroGB(bytesVal float64) *float64 {
	if bytesVal == 0 {
		return nil
	}
	v := bytesVal / (1024 * 1024 * 1024)
	return &v
}
