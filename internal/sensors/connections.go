package sensors

import (
	"context"
	"fmt"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// ConnectionCountSensor counts established TCP sockets. The spec allows
// either a shell-out to a scripted query or an equivalent native API;
// gopsutil's native enumeration is used here to avoid spawning a process
// every tick.
type ConnectionCountSensor struct{}

func NewConnectionCountSensor() *ConnectionCountSensor { return &ConnectionCountSensor{} }

func (s *ConnectionCountSensor) Name() string { return "tcp_connections" }

func (s *ConnectionCountSensor) Collect(ctx context.Context) (int, error) {
	conns, err := gnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return 0, fmt.Errorf("list tcp connections: %w", err)
	}
	count := 0
	for _, c := range conns {
		if c.Status == "ESTABLISHED" {
			count++
		}
	}
	return count, nil
}
