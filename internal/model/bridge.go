package model

import (
	"sync"
	"time"
)

// BridgeRecord is the parsed form of one JSON line emitted by the external
// hardware bridge process. Every field is optional; unknown JSON keys are
// ignored by the decoder and additive evolution is expected (§9).
type BridgeRecord struct {
	CPUTempC      *float64 `json:"cpuTempC,omitempty"`
	MoboTempC     *float64 `json:"moboTempC,omitempty"`
	Fans          []BridgeFan    `json:"fans,omitempty"`
	StorageTemps  []BridgeStorageTemp `json:"storageTemps,omitempty"`
	GPUs          []BridgeGpu `json:"gpus,omitempty"`

	IsAdmin       *bool `json:"isAdmin,omitempty"`
	HasTemp       *bool `json:"hasTemp,omitempty"`
	HasTempValue  *bool `json:"hasTempValue,omitempty"`
	HasFan        *bool `json:"hasFan,omitempty"`
	HasFanValue   *bool `json:"hasFanValue,omitempty"`

	CPUPkgPowerW      *float64 `json:"cpuPkgPowerW,omitempty"`
	CPUAvgFreqMHz     *float64 `json:"cpuAvgFreqMhz,omitempty"`
	CPUThrottleActive *bool    `json:"cpuThrottleActive,omitempty"`
	CPUThrottleReasons []string `json:"cpuThrottleReasons,omitempty"`
	SinceReopenSec    *float64 `json:"sinceReopenSec,omitempty"`

	CPUCoreLoadsPct  []float64 `json:"cpuCoreLoadsPct,omitempty"`
	CPUCoreClocksMHz []float64 `json:"cpuCoreClocksMhz,omitempty"`
	CPUCoreTempsC    []float64 `json:"cpuCoreTempsC,omitempty"`

	HBTick    *int64 `json:"hbTick,omitempty"`
	IdleSec   *float64 `json:"idleSec,omitempty"`
	ExcCount  *int64 `json:"excCount,omitempty"`
	UptimeSec *int64 `json:"uptimeSec,omitempty"`
}

// BridgeFan is one fan entry from the bridge's "fans" array.
type BridgeFan struct {
	Name string   `json:"name"`
	RPM  *float64 `json:"rpm,omitempty"`
	Pct  *float64 `json:"pct,omitempty"`
}

// BridgeStorageTemp is one drive temperature entry from "storageTemps".
type BridgeStorageTemp struct {
	Name  string  `json:"name"`
	TempC float64 `json:"tempC"`
}

// BridgeGpu is one GPU entry from the bridge's "gpus" array.
type BridgeGpu struct {
	Name       string   `json:"name"`
	TempC      *float64 `json:"tempC,omitempty"`
	LoadPct    *float64 `json:"loadPct,omitempty"`
	CoreMHz    *float64 `json:"coreMhz,omitempty"`
	FanRPM     *float64 `json:"fanRpm,omitempty"`
	VRAMUsedMB *float64 `json:"vramUsedMb,omitempty"`
	PowerW     *float64 `json:"powerW,omitempty"`
}

// BridgeStale is the freshness window (§3 invariants): a record older
// than this is reported as absent, never as stale data.
const BridgeStale = 30 * time.Second

// SharedBridgeRecord is the single-mutex pair the supervisor writes to and
// the assembler reads from, per §5's shared-resource policy: one lock,
// held only for field-sized copies.
type SharedBridgeRecord struct {
	mu         sync.Mutex
	record     BridgeRecord
	lastRecv   time.Time
	hasRecord  bool
}

// Set atomically replaces the record and its receive timestamp.
func (s *SharedBridgeRecord) Set(rec BridgeRecord, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec
	s.lastRecv = at
	s.hasRecord = true
}

// Snapshot returns a copy of the record along with whether it is fresh as
// of `now` (within BridgeStale) and whether any record has ever arrived.
func (s *SharedBridgeRecord) Snapshot(now time.Time) (rec BridgeRecord, fresh bool, ever bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasRecord {
		return BridgeRecord{}, false, false
	}
	fresh = now.Sub(s.lastRecv) <= BridgeStale
	return s.record, fresh, true
}

// IdleSeconds returns how long it has been since the last line arrived.
func (s *SharedBridgeRecord) IdleSeconds(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasRecord {
		return 0
	}
	return now.Sub(s.lastRecv).Seconds()
}

// WifiInfoExt is the rich wireless descriptor the command scraper
// produces; the assembler folds the subset it needs into model.WifiState.
type WifiInfoExt struct {
	SSID            string
	SignalPct       int
	LinkMbps        float64
	BSSID           string
	Channel         int
	Radio           string
	Band            string
	RxMbps          float64
	TxMbps          float64
	RSSIdBm         int
	EstimatedRSSI   bool
}

// EstimateRSSI derives an RSSI estimate from signal percentage using the
// documented approximation (§4.A): round(signal/2 - 100).
func EstimateRSSI(signalPct int) int {
	v := float64(signalPct)/2.0 - 100.0
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
