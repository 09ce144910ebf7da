package sensors

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessReading aggregates per-process disk I/O and returns the top-N
// processes by CPU usage, honoring the configured TopN (§4 supplement:
// spec.md marks top_n reserved; this wires it).
type ProcessReading struct {
	TotalDiskReadBytes  uint64
	TotalDiskWriteBytes uint64
	Top                 []ProcessInfo
}

// ProcessInfo is one process's identity and load for the top-N list.
type ProcessInfo struct {
	PID    int32
	Name   string
	CPU    float64
	MemPct float32
}

// ProcessSensor wraps gopsutil's process enumeration.
type ProcessSensor struct {
	TopN int
}

func NewProcessSensor(topN int) *ProcessSensor {
	if topN <= 0 {
		topN = 5
	}
	return &ProcessSensor{TopN: topN}
}

func (s *ProcessSensor) Name() string { return "process" }

func (s *ProcessSensor) Collect(ctx context.Context) (ProcessReading, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return ProcessReading{}, fmt.Errorf("list processes: %w", err)
	}

	var reading ProcessReading
	infos := make([]ProcessInfo, 0, len(procs))

	for _, p := range procs {
		if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
			reading.TotalDiskReadBytes += io.ReadBytes
			reading.TotalDiskWriteBytes += io.WriteBytes
		}

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		infos = append(infos, ProcessInfo{PID: p.Pid, Name: name, CPU: cpuPct, MemPct: memPct})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].CPU > infos[j].CPU })
	if len(infos) > s.TopN {
		infos = infos[:s.TopN]
	}
	reading.Top = infos

	return reading, nil
}
