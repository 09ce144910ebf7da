package sensors

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUReading is the OS-global CPU counter result (§4.A): overall percent,
// per-core percent, and per-core clock speed where the platform exposes
// it. Refresh is explicit and cheap, per the OS-global-counters contract.
type CPUReading struct {
	TotalPercent float64
	PerCore      []float64
	PerCoreMHz   []float64
	Cores        int
}

// CPUSensor wraps gopsutil's CPU probes.
type CPUSensor struct{}

func NewCPUSensor() *CPUSensor { return &CPUSensor{} }

func (s *CPUSensor) Name() string { return "cpu" }

func (s *CPUSensor) Collect(ctx context.Context) (CPUReading, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(total) == 0 {
		return CPUReading{}, fmt.Errorf("cpu total percent: %w", err)
	}
	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		perCore = nil
	}

	infos, err := cpu.InfoWithContext(ctx)
	var mhz []float64
	if err == nil {
		for _, in := range infos {
			mhz = append(mhz, in.Mhz)
		}
	}

	cores, _ := cpu.CountsWithContext(ctx, true)

	return CPUReading{
		TotalPercent: total[0],
		PerCore:      perCore,
		PerCoreMHz:   mhz,
		Cores:        cores,
	}, nil
}
