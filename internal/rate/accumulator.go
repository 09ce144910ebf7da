// Package rate implements the per-counter rate/EMA accumulator (§4.C): it
// turns a monotonic cumulative counter into a smoothed per-second rate,
// resetting its baseline on a long gap or counter rollback so a single
// stale delta never produces a spike.
package rate

import "time"

// resetGap is the dt threshold beyond which a baseline reset is forced
// (§4.C, §8 scenario S3).
const resetGap = 5 * time.Second

// alpha is the fixed EMA weight (§GLOSSARY).
const alpha = 0.3

// Accumulator tracks one cumulative counter's (last value, last time) pair
// and its exponential moving average. It is not safe for concurrent use;
// the assembler owns one per counter on its single tick goroutine.
type Accumulator struct {
	hasPrev  bool
	lastVal  float64
	lastT    time.Time
	ema      float64
	hasEMA   bool
}

// Sample feeds a new cumulative reading at time `now` and returns the
// computed rate (units/sec) and its EMA. On first sample, on a detected
// rollback (current < last), or when dt exceeds resetGap, the baseline is
// dropped and rate is reported as 0 (§4.C, §8 property 3/4).
func (a *Accumulator) Sample(current float64, now time.Time) (r float64, ema float64) {
	if !a.hasPrev {
		a.hasPrev = true
		a.lastVal = current
		a.lastT = now
		a.ema = 0
		a.hasEMA = false
		return 0, 0
	}

	dt := now.Sub(a.lastT).Seconds()
	if dt < 1e-6 {
		dt = 1e-6
	}

	var rate float64
	reset := dt > resetGap.Seconds()
	if reset {
		a.lastVal = current
		a.lastT = now
		rate = 0
	} else {
		delta := current - a.lastVal
		if delta < 0 {
			delta = 0 // saturating subtraction: counter reset/rollback
		}
		rate = delta / dt
		a.lastVal = current
		a.lastT = now
	}

	if reset || !a.hasEMA {
		a.ema = rate
		a.hasEMA = true
	} else {
		a.ema = alpha*rate + (1-alpha)*a.ema
	}

	return rate, a.ema
}

// Reset drops the baseline unconditionally; the next Sample call behaves
// as if it were the first (rate 0). Used when the orchestrator detects a
// long sleep/resume gap or a vendor-handle reopen is requested (§4.F
// step 3, §4.K).
func (a *Accumulator) Reset() {
	a.hasPrev = false
	a.hasEMA = false
	a.ema = 0
}

// EMA returns the last computed smoothed value without sampling.
func (a *Accumulator) EMA() float64 {
	return a.ema
}

// HasSample reports whether at least one reading has been accumulated.
func (a *Accumulator) HasSample() bool {
	return a.hasPrev
}
