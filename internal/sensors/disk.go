package sensors

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// LogicalDiskReading lists mounted volumes' capacity, a paced task
// (§4.D) since enumeration is comparatively expensive.
type LogicalDiskReading struct {
	Disks []LogicalDiskInfo
}

// LogicalDiskInfo is one volume's free/total capacity.
type LogicalDiskInfo struct {
	DriveID    string
	TotalBytes uint64
	FreeBytes  uint64
}

// LogicalDiskSensor wraps gopsutil's partition + usage probes.
type LogicalDiskSensor struct{}

func NewLogicalDiskSensor() *LogicalDiskSensor { return &LogicalDiskSensor{} }

func (s *LogicalDiskSensor) Name() string { return "logical_disk" }

func (s *LogicalDiskSensor) Collect(ctx context.Context) (LogicalDiskReading, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return LogicalDiskReading{}, fmt.Errorf("disk partitions: %w", err)
	}
	out := make([]LogicalDiskInfo, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		out = append(out, LogicalDiskInfo{
			DriveID:    p.Mountpoint,
			TotalBytes: usage.Total,
			FreeBytes:  usage.Free,
		})
	}
	return LogicalDiskReading{Disks: out}, nil
}

// NetIfReading lists the host's network adapters, a paced task (§4.D).
type NetIfReading struct {
	Interfaces []NetIfInfo
}

// NetIfInfo describes one adapter.
type NetIfInfo struct {
	Name      string
	MAC       string
	IPs       []string
	SpeedMbps int64
	Media     string
}
