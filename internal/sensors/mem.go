package sensors

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// MemReading is the OS-global memory counter result.
type MemReading struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// MemSensor wraps gopsutil's virtual memory probe.
type MemSensor struct{}

func NewMemSensor() *MemSensor { return &MemSensor{} }

func (s *MemSensor) Name() string { return "memory" }

func (s *MemSensor) Collect(ctx context.Context) (MemReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemReading{}, fmt.Errorf("virtual memory: %w", err)
	}
	return MemReading{
		TotalBytes:     vm.Total,
		UsedBytes:      vm.Used,
		AvailableBytes: vm.Available,
		UsedPercent:    vm.UsedPercent,
	}, nil
}
