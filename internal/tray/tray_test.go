package tray

import "testing"

func TestRenderOutputIsAlways32x32(t *testing.T) {
	cases := []Layout{
		{Top: "55C", Bottom: "42%"},
		{Top: "100%", Bottom: "123456"},
		{Top: "-", Bottom: "-"},
		{Top: "", Bottom: ""},
	}
	for _, l := range cases {
		c := Render(l)
		if len(c.Pix) != Size*Size*4 {
			t.Errorf("expected canvas of %d bytes, got %d for %+v", Size*Size*4, len(c.Pix), l)
		}
	}
}

func TestFitLinePrefersScale2WhenItFits(t *testing.T) {
	scale, text := fitLine("55C")
	if scale != 2 {
		t.Errorf("expected scale 2 for a short string, got %d", scale)
	}
	if text != "55C" {
		t.Errorf("expected no trimming, got %q", text)
	}
}

func TestFitLineDropsTrailingUnitBeforeDegrading(t *testing.T) {
	// "1234%" at scale 2 is 5 glyphs * 5px * 2 = 50px, overflowing 32px.
	// Dropping the trailing '%' gives "1234": 4*5*2=40px, still overflowing,
	// so it must degrade to scale 1 (4*5*1 + 3*1 = 23px, fits).
	scale, text := fitLine("1234%")
	if scale != 1 {
		t.Errorf("expected degrade to scale 1, got %d", scale)
	}
	if text != "1234" {
		t.Errorf("expected trailing unit dropped, got %q", text)
	}
}

func TestFitLineFitsAtScale2AfterDroppingUnit(t *testing.T) {
	// "100%" at scale 2 is 4*5*2=40px (overflow); dropping '%' gives "100"
	// at 3*5*2=30px, which fits at scale 2.
	scale, text := fitLine("100%")
	if scale != 2 {
		t.Errorf("expected scale 2 after dropping unit, got %d", scale)
	}
	if text != "100" {
		t.Errorf("expected unit dropped, got %q", text)
	}
}

func TestBottomTextFallsBackToCPUWhenFanRPMIsZero(t *testing.T) {
	zero := 0.0
	text := BottomText("fan", 37, 60, &zero)
	if text != "37%" {
		t.Errorf("expected CPU%% fallback for zero fan RPM (S6), got %q", text)
	}
}

func TestBottomTextUsesFanRPMWhenAvailable(t *testing.T) {
	rpm := 1450.0
	text := BottomText("fan", 37, 60, &rpm)
	if text != "1450" {
		t.Errorf("expected fan RPM text, got %q", text)
	}
}

func TestBottomTextMemMode(t *testing.T) {
	if got := BottomText("mem", 37, 60, nil); got != "60%" {
		t.Errorf("expected mem percent, got %q", got)
	}
}

func TestTopTextPrefersTemperatureOverCPU(t *testing.T) {
	temp := 55.0
	if got := TopText(&temp, 10); got != "55C" {
		t.Errorf("expected temperature text, got %q", got)
	}
	if got := TopText(nil, 10); got != "10%" {
		t.Errorf("expected CPU percent fallback, got %q", got)
	}
}
