package sensors

import (
	"context"
	"fmt"
	"net"
)

// NetIfSensor enumerates host network interfaces, a paced task (§4.D).
// gopsutil's net.Interfaces shape doesn't carry link speed/media type on
// every platform, so this probe uses the standard library's interface
// list (always available) and leaves speed/media for the bridge or a
// platform-specific extension to fill in; absence is acceptable per the
// "every field optional" rule.
type NetIfSensor struct{}

func NewNetIfSensor() *NetIfSensor { return &NetIfSensor{} }

func (s *NetIfSensor) Name() string { return "net_if" }

func (s *NetIfSensor) Collect(ctx context.Context) (NetIfReading, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return NetIfReading{}, fmt.Errorf("list interfaces: %w", err)
	}
	var out []NetIfInfo
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		var ips []string
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok {
				ips = append(ips, ipNet.IP.String())
			}
		}
		out = append(out, NetIfInfo{
			Name: iface.Name,
			MAC:  iface.HardwareAddr.String(),
			IPs:  ips,
		})
	}
	return NetIfReading{Interfaces: out}, nil
}
