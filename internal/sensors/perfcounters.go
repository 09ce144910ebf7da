package sensors

import "time"

// PerfCounters is the vendor performance-counter result set (§4.A):
// disk reads/s, writes/s, queue length; network error/discard rates;
// memory cache/committed/pool/paging counters. On query failure every
// field is zero rather than absent, so downstream rates stay continuous
// (§4.A contract for vendor counters).
type PerfCounters struct {
	DiskReadsPerSec  float64
	DiskWritesPerSec float64
	DiskQueueLength  float64

	NetErrorsInPerSec  float64
	NetErrorsOutPerSec float64
	NetDiscardsPerSec  float64

	MemCacheBytes        float64
	MemCommittedBytes    float64
	MemCommitLimitBytes  float64
	MemPoolPagedBytes    float64
	MemPoolNonPagedBytes float64
	MemPagesPerSec       float64
	MemPageReadsPerSec   float64
	MemPageWritesPerSec  float64
	MemPageFaultsPerSec  float64
}

// PerfCounterSensor queries Windows performance-counter classes via WMI.
// The actual query is platform-specific (perfcounters_windows.go);
// perfcounters_other.go returns the zero value for the cross-platform
// Non-goal.
type PerfCounterSensor struct {
	query func() (PerfCounters, error)

	consecutiveFailures int
}

func NewPerfCounterSensor() *PerfCounterSensor {
	return &PerfCounterSensor{query: queryPerfCounters}
}

func (s *PerfCounterSensor) Name() string { return "perf_counters" }

// Collect queries the counters, retrying twice with a 50ms back-off on
// failure (§7 Probe-transient-failure) before giving up and returning
// zeros. It tracks consecutive failures for the caller to act on the
// "3 consecutive failures or every 1800s" vendor-handle-reopen rule
// (§4.F step 5); ConsecutiveFailures reports the current streak.
func (s *PerfCounterSensor) Collect() PerfCounters {
	const retries = 2
	const backoff = 50 * time.Millisecond

	var pc PerfCounters
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		pc, err = s.query()
		if err == nil {
			s.consecutiveFailures = 0
			return pc
		}
		if attempt < retries {
			time.Sleep(backoff)
		}
	}
	s.consecutiveFailures++
	return PerfCounters{}
}

// ConsecutiveFailures returns the current failure streak.
func (s *PerfCounterSensor) ConsecutiveFailures() int {
	return s.consecutiveFailures
}

// ResetFailures clears the failure streak, called after a successful
// vendor-handle reopen.
func (s *PerfCounterSensor) ResetFailures() {
	s.consecutiveFailures = 0
}
