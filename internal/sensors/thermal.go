package sensors

import (
	"errors"
	"time"
)

// errNoThermalData is returned by queryThermalFan when neither a CPU
// temperature nor a fan speed could be read, letting Collect distinguish
// "no handle available" from "zero reading" (§4.F step 7).
var errNoThermalData = errors.New("sensors: no thermal/fan data available")

// ThermalFan is the vendor-counter CPU-temperature/fan-RPM fallback used
// when the bridge is absent or stale (§4.F step 7: "resolve CPU
// temperature with priority bridge -> vendor-counter; resolve CPU fan
// RPM with priority bridge -> vendor-counter"). Unlike PerfCounters, a
// failed query here means absence, not zero: a temperature/fan reading
// of exactly zero is not a meaningful vendor value, so each field is
// independently optional.
type ThermalFan struct {
	CPUTempC *float64
	FanRPM   *float64
}

// ThermalFanSensor queries the CPU thermal-zone and fan WMI classes
// (MSAcpi_ThermalZoneTemperature, Win32_Fan.DesiredSpeed), the same
// classes the original implementation falls back to when its bridge
// process hasn't reported a reading yet. thermal_windows.go backs the
// real query; thermal_other.go stubs it out for the cross-platform
// Non-goal (§1).
type ThermalFanSensor struct {
	query func() (ThermalFan, error)

	consecutiveFailures int
}

func NewThermalFanSensor() *ThermalFanSensor {
	return &ThermalFanSensor{query: queryThermalFan}
}

func (s *ThermalFanSensor) Name() string { return "thermal_fan" }

// Collect queries with the same two-retry/50ms-backoff policy the other
// vendor counters use (§7 Probe-transient-failure) before giving up and
// returning an empty reading. A failure contributes to
// ConsecutiveFailures for the reopen rule §4.F step 5/§4.K describes.
func (s *ThermalFanSensor) Collect() ThermalFan {
	const retries = 2
	const backoff = 50 * time.Millisecond

	var tf ThermalFan
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		tf, err = s.query()
		if err == nil {
			s.consecutiveFailures = 0
			return tf
		}
		if attempt < retries {
			time.Sleep(backoff)
		}
	}
	s.consecutiveFailures++
	return ThermalFan{}
}

// ConsecutiveFailures returns the current failure streak.
func (s *ThermalFanSensor) ConsecutiveFailures() int {
	return s.consecutiveFailures
}

// ResetFailures clears the failure streak, called after a successful
// vendor-handle reopen.
func (s *ThermalFanSensor) ResetFailures() {
	s.consecutiveFailures = 0
}
