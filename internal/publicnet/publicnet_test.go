package publicnet

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"sysmetryd/internal/config"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeProvider struct {
	ip, isp string
	err     error
	calls   int
}

func (f *fakeProvider) Fetch(ctx context.Context, apiOverride string) (string, string, error) {
	f.calls++
	return f.ip, f.isp, f.err
}

func newTestPoller(t *testing.T) (*Poller, *fakeProvider, *fakeProvider) {
	t.Helper()
	cfg, err := config.Load(t.TempDir() + "/config.json")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	primary := &fakeProvider{}
	fallback := &fakeProvider{}
	p := &Poller{cfg: cfg, logger: nil, primary: primary, fallback: fallback, sleep: func(context.Context, time.Duration) {}}
	p.logger = discardLogger()
	return p, primary, fallback
}

func TestPollOnceUsesPrimaryOnSuccess(t *testing.T) {
	p, primary, fallback := newTestPoller(t)
	primary.ip, primary.isp = "1.2.3.4", "Example ISP"

	ip, isp, err := p.pollOnce(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "1.2.3.4" || isp != "Example ISP" {
		t.Errorf("expected primary's result, got %q %q", ip, isp)
	}
	if fallback.calls != 0 {
		t.Errorf("expected fallback not to be called on primary success")
	}

	snap := p.Snapshot()
	if snap.IP != "1.2.3.4" || snap.LastError != "" {
		t.Errorf("expected snapshot updated from successful poll, got %+v", snap)
	}
}

func TestPollOnceFallsBackOnPrimaryFailure(t *testing.T) {
	p, primary, fallback := newTestPoller(t)
	primary.err = errors.New("primary down")
	fallback.ip, fallback.isp = "5.6.7.8", "Fallback ISP"

	ip, isp, err := p.pollOnce(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "5.6.7.8" || isp != "Fallback ISP" {
		t.Errorf("expected fallback's result, got %q %q", ip, isp)
	}
	if fallback.calls != 1 {
		t.Errorf("expected fallback to be called exactly once")
	}
}

func TestPollOnceRecordsLastErrorWhenBothProvidersFail(t *testing.T) {
	p, primary, fallback := newTestPoller(t)
	primary.err = errors.New("primary down")
	fallback.err = errors.New("fallback down")

	_, _, err := p.pollOnce(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error when both providers fail")
	}

	snap := p.Snapshot()
	if snap.LastError == "" {
		t.Errorf("expected LastError to be recorded")
	}
}

func TestRunSkipsPollingWhileDisabled(t *testing.T) {
	cfg, err := config.Load(t.TempDir() + "/config.json")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	c := cfg.Get()
	c.PublicNetEnabled = false
	if err := cfg.Set(c); err != nil {
		t.Fatalf("config.Set: %v", err)
	}

	primary := &fakeProvider{ip: "9.9.9.9"}
	p := &Poller{cfg: cfg, logger: discardLogger(), primary: primary, fallback: &fakeProvider{}, sleep: func(context.Context, time.Duration) {}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	if primary.calls != 0 {
		t.Errorf("expected no polling while public-net is disabled, got %d calls", primary.calls)
	}
}

func TestRunPollsWhenEnabledAndStopsOnCancel(t *testing.T) {
	p, primary, _ := newTestPoller(t)
	primary.ip = "1.1.1.1"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after context cancellation")
	}
	if primary.calls == 0 {
		t.Errorf("expected at least one poll while enabled")
	}
}
