// Package engine evaluates one Snapshot against fixed thresholds and
// produces a flat list of named, categorized CheckResults, the same
// shape the teacher's checker.Evaluate produced from collector.RawStats —
// retargeted at the orchestrator's Snapshot (§4.F/§4.K) instead of a
// single pull-based metrics struct.
package engine

import (
	"fmt"

	"sysmetryd/internal/model"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"

	CPUWarningThreshold   = 70.0
	CPUCriticalThreshold  = 90.0
	RAMWarningThreshold   = 70.0
	RAMCriticalThreshold  = 90.0
	DiskWarningThreshold  = 80.0
	DiskCriticalThreshold = 90.0
	NetWarningMS          = 150.0
	NetCriticalMS         = 500.0
	ActiveTCPWarning      = 200.0
	ActiveTCPCritical     = 500.0
)

// Category groups a CheckResult for the dashboard's four columns.
type Category int

const (
	CategoryCPU Category = iota
	CategoryRAM
	CategoryDisk
	CategoryNetwork
)

// CheckResult is one named metric, its value, and its derived status.
type CheckResult struct {
	Name     string
	Category Category
	Value    float64
	Status   string
}

func getStatus(value, warning, critical float64) string {
	if value > critical {
		return StatusCritical
	}
	if value > warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate runs every threshold check against one Snapshot (§4.F step 10,
// §7 operator-facing severity).
func Evaluate(snap model.Snapshot) []CheckResult {
	var result []CheckResult

	result = append(result, CheckResult{
		Name:     "CPU Usage",
		Category: CategoryCPU,
		Value:    snap.CPU.UsagePercent,
		Status:   getStatus(snap.CPU.UsagePercent, CPUWarningThreshold, CPUCriticalThreshold),
	})
	if snap.CPU.ThrottleActive {
		result = append(result, CheckResult{Name: "CPU Throttle", Category: CategoryCPU, Value: 1, Status: StatusWarning})
	}

	result = append(result, CheckResult{
		Name:     "RAM Usage",
		Category: CategoryRAM,
		Value:    snap.Memory.UsedPct,
		Status:   getStatus(snap.Memory.UsedPct, RAMWarningThreshold, RAMCriticalThreshold),
	})

	for _, d := range snap.Storage.LogicalDisks {
		pct := 0.0
		if d.TotalBytes > 0 {
			pct = 100 * float64(d.TotalBytes-d.FreeBytes) / float64(d.TotalBytes)
		}
		status := getStatus(pct, DiskWarningThreshold, DiskCriticalThreshold)
		const fiveGB = 5 * 1024 * 1024 * 1024
		if d.FreeBytes < fiveGB && status == StatusHealthy {
			status = StatusWarning
		}
		result = append(result, CheckResult{
			Name:     fmt.Sprintf("Disk %s Usage", d.DriveID),
			Category: CategoryDisk,
			Value:    pct,
			Status:   status,
		})
	}

	for _, h := range snap.Storage.Smart {
		status := StatusHealthy
		value := 0.0
		if h.PredictFail {
			status = StatusCritical
			value = 1
		}
		result = append(result, CheckResult{
			Name:     fmt.Sprintf("SMART %s", h.Device),
			Category: CategoryDisk,
			Value:    value,
			Status:   status,
		})
	}

	netStatus := StatusHealthy
	if snap.Network.ReachabilityMS != nil {
		netStatus = getStatus(*snap.Network.ReachabilityMS, NetWarningMS, NetCriticalMS)
	}
	if !snap.Bridge.Connected {
		netStatus = StatusCritical
	}
	netValue := 0.0
	if snap.Network.ReachabilityMS != nil {
		netValue = *snap.Network.ReachabilityMS
	}
	result = append(result, CheckResult{
		Name:     "Net Latency",
		Category: CategoryNetwork,
		Value:    netValue,
		Status:   netStatus,
	})

	if snap.Network.PacketLossPct != nil && *snap.Network.PacketLossPct > 0 {
		result = append(result, CheckResult{
			Name:     "Packet Loss",
			Category: CategoryNetwork,
			Value:    *snap.Network.PacketLossPct,
			Status:   StatusWarning,
		})
	}

	if snap.Network.ActiveTCPConns != nil {
		result = append(result, CheckResult{
			Name:     "Active TCP",
			Category: CategoryNetwork,
			Value:    float64(*snap.Network.ActiveTCPConns),
			Status:   getStatus(float64(*snap.Network.ActiveTCPConns), ActiveTCPWarning, ActiveTCPCritical),
		})
	}

	return result
}
