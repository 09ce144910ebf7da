package sensors

import (
	"context"
	"net"
	"time"
)

// Reachability resolves host:port and attempts a TCP connect bounded by
// timeout, returning elapsed time on success. A failure or timeout
// returns ok=false rather than an error — probe-unavailable, never a
// user-visible error (§7).
func Reachability(ctx context.Context, target string, timeout time.Duration) (ms float64, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return 0, false
	}
	conn.Close()
	return float64(time.Since(start)) / float64(time.Millisecond), true
}
