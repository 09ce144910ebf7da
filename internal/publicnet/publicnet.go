// Package publicnet implements the Public-Net Poller (§4.J): a single
// long-lived background task that periodically looks up the machine's
// public IP and ISP from an external provider, trying a fallback
// provider on any failure, and exposes the last-known result under a
// mutex.
package publicnet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"sysmetryd/internal/config"
	"sysmetryd/internal/model"
)

const (
	successInterval = 1800 * time.Second
	failureInterval = 60 * time.Second
)

// httpClient is shared across providers; a short timeout keeps a slow
// or hung provider from stalling the poller past its own interval.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// Provider fetches (ip, isp) from one backend, given an optional API
// override URL from AppConfig.
type Provider interface {
	Fetch(ctx context.Context, apiOverride string) (ip, isp string, err error)
}

// Poller owns the cached PublicNet result and the polling loop.
type Poller struct {
	cfg      *config.Store
	logger   *log.Logger
	primary  Provider
	fallback Provider
	sleep    func(context.Context, time.Duration)

	mu     sync.Mutex
	result model.PublicNet
}

// New creates a Poller using ipinfoProvider as primary and
// ipapiProvider as fallback.
func New(cfg *config.Store, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		cfg:      cfg,
		logger:   logger,
		primary:  ipinfoProvider{},
		fallback: ipapiProvider{},
		sleep:    sleepCtx,
	}
}

// Snapshot returns the last-known result; it satisfies the assembler's
// PublicNetSource interface.
func (p *Poller) Snapshot() model.PublicNet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Run polls until ctx is cancelled, sleeping 1800s after success, 60s
// after a failure or while disabled by configuration (§4.J).
func (p *Poller) Run(ctx context.Context) {
	for {
		cfg := p.cfg.Get()
		if !cfg.PublicNetEnabled {
			if !p.sleepUnlessDone(ctx, failureInterval) {
				return
			}
			continue
		}

		_, _, err := p.pollOnce(ctx, cfg.PublicNetAPI)
		interval := successInterval
		if err != nil {
			interval = failureInterval
		}
		if !p.sleepUnlessDone(ctx, interval) {
			return
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, apiOverride string) (string, string, error) {
	ip, isp, err := p.primary.Fetch(ctx, apiOverride)
	if err != nil {
		p.logger.Printf("publicnet: primary provider failed: %v", err)
		ip, isp, err = p.fallback.Fetch(ctx, "")
		if err != nil {
			p.logger.Printf("publicnet: fallback provider failed: %v", err)
			p.mu.Lock()
			p.result.LastError = err.Error()
			p.mu.Unlock()
			return "", "", err
		}
	}

	p.mu.Lock()
	p.result = model.PublicNet{IP: ip, ISP: isp, LastUpdated: time.Now(), LastError: ""}
	p.mu.Unlock()
	return ip, isp, nil
}

func (p *Poller) sleepUnlessDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	p.sleep(ctx, d)
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ipinfoProvider queries ipinfo.io, the default primary provider.
type ipinfoProvider struct{}

func (ipinfoProvider) Fetch(ctx context.Context, apiOverride string) (string, string, error) {
	url := "https://ipinfo.io/json"
	if apiOverride != "" {
		url = apiOverride
	}
	var body struct {
		IP  string `json:"ip"`
		Org string `json:"org"`
	}
	if err := fetchJSON(ctx, url, &body); err != nil {
		return "", "", err
	}
	if body.IP == "" {
		return "", "", fmt.Errorf("publicnet: ipinfo response missing ip")
	}
	return body.IP, body.Org, nil
}

// ipapiProvider queries ip-api.com, the fallback provider.
type ipapiProvider struct{}

func (ipapiProvider) Fetch(ctx context.Context, _ string) (string, string, error) {
	var body struct {
		Status string `json:"status"`
		Query  string `json:"query"`
		ISP    string `json:"isp"`
		Message string `json:"message"`
	}
	if err := fetchJSON(ctx, "http://ip-api.com/json/", &body); err != nil {
		return "", "", err
	}
	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", "", fmt.Errorf("publicnet: ip-api status %q: %s", body.Status, msg)
	}
	return body.Query, body.ISP, nil
}

func fetchJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("publicnet: unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
