package sensors

import (
	"context"
	"fmt"
	"strings"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// NetIOReading is the per-interface cumulative rx/tx byte counters the
// rate accumulator consumes (§4.A, §4.F step 2).
type NetIOReading struct {
	Interfaces []NetIOCounter
}

// NetIOCounter is one interface's cumulative counters.
type NetIOCounter struct {
	Name        string
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	ErrIn       uint64
	ErrOut      uint64
	DropIn      uint64
	DropOut     uint64
}

// NetIOSensor wraps gopsutil's per-interface counters.
type NetIOSensor struct{}

func NewNetIOSensor() *NetIOSensor { return &NetIOSensor{} }

func (s *NetIOSensor) Name() string { return "net_io" }

func (s *NetIOSensor) Collect(ctx context.Context) (NetIOReading, error) {
	counters, err := gnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return NetIOReading{}, fmt.Errorf("net io counters: %w", err)
	}
	out := make([]NetIOCounter, 0, len(counters))
	for _, c := range counters {
		out = append(out, NetIOCounter{
			Name:        c.Name,
			BytesSent:   c.BytesSent,
			BytesRecv:   c.BytesRecv,
			PacketsSent: c.PacketsSent,
			PacketsRecv: c.PacketsRecv,
			ErrIn:       c.Errin,
			ErrOut:      c.Errout,
			DropIn:      c.Dropin,
			DropOut:     c.Dropout,
		})
	}
	return NetIOReading{Interfaces: out}, nil
}

// Aggregate sums cumulative rx/tx bytes across interfaces, honoring the
// configured allow-list (empty means aggregate all, §4.F step 2) and
// always excluding loopback adapters.
func Aggregate(interfaces []NetIOCounter, allow []string) (rxTotal, txTotal uint64) {
	allowSet := map[string]bool{}
	for _, a := range allow {
		allowSet[strings.ToLower(a)] = true
	}
	for _, c := range interfaces {
		if isLoopback(c.Name) {
			continue
		}
		if len(allowSet) > 0 && !allowSet[strings.ToLower(c.Name)] {
			continue
		}
		rxTotal += c.BytesRecv
		txTotal += c.BytesSent
	}
	return rxTotal, txTotal
}

func isLoopback(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "loopback") || n == "lo"
}
