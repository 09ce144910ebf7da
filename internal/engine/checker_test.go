package engine

import (
	"testing"

	"sysmetryd/internal/model"
)

func statusFor(t *testing.T, results []CheckResult, name string) string {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r.Status
		}
	}
	t.Fatalf("no CheckResult named %q in %v", name, results)
	return ""
}

func TestEvaluateHealthy(t *testing.T) {
	snap := model.Snapshot{
		CPU:    model.CPU{UsagePercent: 10},
		Memory: model.Memory{UsedPct: 20},
		Bridge: model.BridgeHealth{Connected: true},
	}
	results := Evaluate(snap)
	if got := statusFor(t, results, "CPU Usage"); got != StatusHealthy {
		t.Errorf("CPU Usage: want %s, got %s", StatusHealthy, got)
	}
	if got := statusFor(t, results, "RAM Usage"); got != StatusHealthy {
		t.Errorf("RAM Usage: want %s, got %s", StatusHealthy, got)
	}
}

func TestEvaluateCPUCritical(t *testing.T) {
	snap := model.Snapshot{CPU: model.CPU{UsagePercent: 95}, Bridge: model.BridgeHealth{Connected: true}}
	results := Evaluate(snap)
	if got := statusFor(t, results, "CPU Usage"); got != StatusCritical {
		t.Errorf("want %s, got %s", StatusCritical, got)
	}
}

func TestEvaluateThrottleAddsWarning(t *testing.T) {
	snap := model.Snapshot{CPU: model.CPU{UsagePercent: 10, ThrottleActive: true}, Bridge: model.BridgeHealth{Connected: true}}
	results := Evaluate(snap)
	if got := statusFor(t, results, "CPU Throttle"); got != StatusWarning {
		t.Errorf("want %s, got %s", StatusWarning, got)
	}
}

func TestEvaluateDiskLowFreeSpaceDowngradesToWarning(t *testing.T) {
	snap := model.Snapshot{
		Bridge: model.BridgeHealth{Connected: true},
		Storage: model.Storage{
			LogicalDisks: []model.LogicalDisk{
				{DriveID: "C:", TotalBytes: 100 * 1024 * 1024 * 1024, FreeBytes: 3 * 1024 * 1024 * 1024},
			},
		},
	}
	results := Evaluate(snap)
	if got := statusFor(t, results, "Disk C: Usage"); got != StatusWarning {
		t.Errorf("want %s, got %s", StatusWarning, got)
	}
}

func TestEvaluateBridgeDisconnectedIsCriticalNetwork(t *testing.T) {
	snap := model.Snapshot{Bridge: model.BridgeHealth{Connected: false}}
	results := Evaluate(snap)
	if got := statusFor(t, results, "Net Latency"); got != StatusCritical {
		t.Errorf("want %s, got %s", StatusCritical, got)
	}
}

func TestEvaluateSmartPredictFailIsCritical(t *testing.T) {
	snap := model.Snapshot{
		Bridge:  model.BridgeHealth{Connected: true},
		Storage: model.Storage{Smart: []model.SmartHealth{{Device: "nvme0", PredictFail: true}}},
	}
	results := Evaluate(snap)
	if got := statusFor(t, results, "SMART nvme0"); got != StatusCritical {
		t.Errorf("want %s, got %s", StatusCritical, got)
	}
}
