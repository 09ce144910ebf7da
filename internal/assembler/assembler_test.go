package assembler

import (
	"context"
	"testing"
	"time"

	"sysmetryd/internal/model"
)

func f(v float64) *float64 { return &v }

func TestAggregateFansSeparatesCPUAndCaseGroupsAndTakesMax(t *testing.T) {
	fans := []model.BridgeFan{
		{Name: "CPU Fan", RPM: f(1200)},
		{Name: "cpu_opt", RPM: f(1500)},
		{Name: "Case", RPM: f(900)},
		{Name: "Rear Case", RPM: f(1100)},
	}
	cpuFan, caseFan := aggregateFans(fans)
	if cpuFan == nil || *cpuFan != 1500 {
		t.Errorf("expected cpu fan max 1500, got %v", cpuFan)
	}
	if caseFan == nil || *caseFan != 1100 {
		t.Errorf("expected case fan max 1100, got %v", caseFan)
	}
}

func TestAggregateFansPrefersRPMOverDutyPercent(t *testing.T) {
	fans := []model.BridgeFan{
		{Name: "CPU", RPM: f(1000), Pct: f(50)},
	}
	cpuFan, _ := aggregateFans(fans)
	if cpuFan == nil || *cpuFan != 1000 {
		t.Errorf("expected RPM to win over duty percent, got %v", cpuFan)
	}
}

func TestAggregateFansFallsBackToDutyPercentWhenNoRPM(t *testing.T) {
	fans := []model.BridgeFan{
		{Name: "Case", Pct: f(42)},
	}
	_, caseFan := aggregateFans(fans)
	if caseFan == nil || *caseFan != 42 {
		t.Errorf("expected duty percent fallback, got %v", caseFan)
	}
}

func TestScenarioS4BridgeFreshThenStale(t *testing.T) {
	var bridge model.SharedBridgeRecord
	base := time.Now()

	rec := model.BridgeRecord{
		CPUTempC: f(55.0),
		Fans: []model.BridgeFan{
			{Name: "CPU Fan", RPM: f(1200)},
			{Name: "Case", RPM: f(900)},
		},
	}
	bridge.Set(rec, base)

	asm := New(Options{Bridge: &bridge})
	asm.hasLastTick = true
	asm.lastTick = base

	// t=10s: still fresh.
	snap := asm.tickAt(context.Background(), base.Add(10 * time.Second))
	if snap.CPU.TempC == nil || *snap.CPU.TempC != 55.0 {
		t.Fatalf("expected fresh CPU temp 55.0, got %v", snap.CPU.TempC)
	}
	if snap.ThermalsFans.CPUFanRPM == nil || *snap.ThermalsFans.CPUFanRPM != 1200 {
		t.Errorf("expected fresh cpu fan 1200, got %v", snap.ThermalsFans.CPUFanRPM)
	}
	if snap.ThermalsFans.CaseFanRPM == nil || *snap.ThermalsFans.CaseFanRPM != 900 {
		t.Errorf("expected fresh case fan 900, got %v", snap.ThermalsFans.CaseFanRPM)
	}

	// t=35s: no new line, now stale -- all three bridge-sourced fields absent.
	snap = asm.tickAt(context.Background(), base.Add(35 * time.Second))
	if snap.CPU.TempC != nil {
		t.Errorf("expected CPU temp absent once stale, got %v", *snap.CPU.TempC)
	}
	if snap.ThermalsFans.CPUFanRPM != nil {
		t.Errorf("expected cpu fan absent once stale, got %v", *snap.ThermalsFans.CPUFanRPM)
	}
	if snap.ThermalsFans.CaseFanRPM != nil {
		t.Errorf("expected case fan absent once stale, got %v", *snap.ThermalsFans.CaseFanRPM)
	}
}

func TestInvalidBridgeTemperatureIsDiscardedNotClamped(t *testing.T) {
	var bridge model.SharedBridgeRecord
	now := time.Now()
	bridge.Set(model.BridgeRecord{CPUTempC: f(200)}, now)

	asm := New(Options{Bridge: &bridge})
	snap := asm.tickAt(context.Background(), now)
	if snap.CPU.TempC != nil {
		t.Errorf("expected implausible temperature to be discarded, got %v", *snap.CPU.TempC)
	}
}

func TestReopenRequestedOnLongGap(t *testing.T) {
	called := 0
	asm := New(Options{OnReopenRequested: func() { called++ }})
	base := time.Now()
	asm.tickAt(context.Background(), base)
	asm.tickAt(context.Background(), base.Add(10 * time.Second))
	if called == 0 {
		t.Errorf("expected a reopen request after a >5s gap between ticks")
	}
}

func TestBridgeHealthReportsIdleSecondsEvenWhenStale(t *testing.T) {
	var bridge model.SharedBridgeRecord
	base := time.Now()
	bridge.Set(model.BridgeRecord{}, base)

	asm := New(Options{Bridge: &bridge})
	snap := asm.tickAt(context.Background(), base.Add(60 * time.Second))
	if snap.Bridge.Connected {
		t.Errorf("expected Connected=false once stale")
	}
	if snap.Bridge.IdleSeconds < 59 {
		t.Errorf("expected idle seconds to reflect staleness regardless of freshness, got %v", snap.Bridge.IdleSeconds)
	}
}
