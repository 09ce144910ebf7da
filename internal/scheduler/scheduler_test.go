package scheduler

import "testing"

func TestDueRespectsDivisor(t *testing.T) {
	s := New(map[string]int{"smart": 3, "rtt": 1, "never": 0})

	var dueSmart []uint64
	for i := 0; i < 9; i++ {
		tick := s.Tick()
		if s.Due("smart") {
			dueSmart = append(dueSmart, tick)
		}
	}
	want := []uint64{3, 6, 9}
	if len(dueSmart) != len(want) {
		t.Fatalf("expected %v, got %v", want, dueSmart)
	}
	for i, v := range want {
		if dueSmart[i] != v {
			t.Errorf("expected %v, got %v", want, dueSmart)
		}
	}
}

func TestZeroDivisorNeverDue(t *testing.T) {
	s := New(map[string]int{"x": 0})
	for i := 0; i < 100; i++ {
		s.Tick()
		if s.Due("x") {
			t.Fatalf("divisor 0 must never be due, fired at tick %d", s.Current())
		}
	}
}

func TestUnregisteredTaskNeverDue(t *testing.T) {
	s := New(nil)
	s.Tick()
	if s.Due("anything") {
		t.Fatalf("unregistered task must never be due")
	}
}

func TestSetDivisorAtRuntime(t *testing.T) {
	s := New(map[string]int{"task": 5})
	for i := 0; i < 4; i++ {
		s.Tick()
	}
	if s.Due("task") {
		t.Fatalf("should not be due yet at tick 4 with divisor 5")
	}
	s.SetDivisor("task", 4)
	if !s.Due("task") {
		t.Fatalf("expected due after lowering divisor to match current tick")
	}
}
