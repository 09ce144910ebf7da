package rate

import (
	"math"
	"testing"
	"time"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestScenarioS1S2S3 walks the exact sequence from §8 scenarios S1-S3.
func TestScenarioS1S2S3(t *testing.T) {
	var acc Accumulator
	t0 := time.Unix(0, 0)

	// S1: (100, t=0) establishes baseline, rate/EMA 0.
	r, ema := acc.Sample(100, t0)
	if r != 0 || ema != 0 {
		t.Fatalf("first sample should be baseline-only: rate=%v ema=%v", r, ema)
	}

	// S1 continued: (500, t=1.0) -> rate 400, EMA 400 (first sample after reset).
	r, ema = acc.Sample(500, t0.Add(1*time.Second))
	if !approxEqual(r, 400) || !approxEqual(ema, 400) {
		t.Fatalf("S1: expected rate=400 ema=400, got rate=%v ema=%v", r, ema)
	}

	// S2: (900, t=2.0) -> rate 400, EMA 0.3*400+0.7*400=400.
	r, ema = acc.Sample(900, t0.Add(2*time.Second))
	if !approxEqual(r, 400) || !approxEqual(ema, 400) {
		t.Fatalf("S2: expected rate=400 ema=400, got rate=%v ema=%v", r, ema)
	}

	// S3: (1000, t=9.0), dt=7 > 5s -> baseline reset, rate 0, EMA 0.
	r, ema = acc.Sample(1000, t0.Add(9*time.Second))
	if r != 0 || ema != 0 {
		t.Fatalf("S3: expected rate=0 ema=0 on long gap, got rate=%v ema=%v", r, ema)
	}
}

func TestRateNeverNegativeOnRollback(t *testing.T) {
	var acc Accumulator
	t0 := time.Unix(0, 0)
	acc.Sample(1000, t0)
	r, ema := acc.Sample(200, t0.Add(1*time.Second)) // counter went backwards
	if r != 0 {
		t.Errorf("expected rate 0 on rollback, got %v", r)
	}
	if ema != 0 {
		t.Errorf("expected ema 0 on rollback (first sample after effective reset), got %v", ema)
	}
}

func TestLongGapTriggersReset(t *testing.T) {
	var acc Accumulator
	t0 := time.Unix(0, 0)
	acc.Sample(10, t0)
	acc.Sample(20, t0.Add(1*time.Second))
	r, ema := acc.Sample(1000000, t0.Add(10*time.Second))
	if r != 0 || ema != 0 {
		t.Errorf("expected rate=0 ema=0 after >5s gap, got rate=%v ema=%v", r, ema)
	}
}

func TestExplicitReset(t *testing.T) {
	var acc Accumulator
	t0 := time.Unix(0, 0)
	acc.Sample(100, t0)
	acc.Sample(500, t0.Add(1*time.Second))
	acc.Reset()
	if acc.HasSample() {
		t.Fatalf("expected HasSample false after Reset")
	}
	r, ema := acc.Sample(1000, t0.Add(2*time.Second))
	if r != 0 || ema != 0 {
		t.Errorf("expected baseline-only sample after explicit reset, got rate=%v ema=%v", r, ema)
	}
}

func TestDtClampedToMinimum(t *testing.T) {
	var acc Accumulator
	t0 := time.Unix(0, 0)
	acc.Sample(100, t0)
	// Same timestamp twice: dt would be 0, must not divide by zero / produce Inf.
	r, _ := acc.Sample(200, t0)
	if math.IsInf(r, 0) || math.IsNaN(r) {
		t.Fatalf("expected finite rate with dt clamp, got %v", r)
	}
}
