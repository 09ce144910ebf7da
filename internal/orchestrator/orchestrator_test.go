package orchestrator

import (
	"context"
	"testing"
	"time"

	"sysmetryd/internal/bus"
	"sysmetryd/internal/config"
	"sysmetryd/internal/model"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg, err := config.Load(t.TempDir() + "/config.json")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return New(Options{Config: cfg, DataDir: t.TempDir()})
}

func TestNewWiresEveryComponentWithoutPanicking(t *testing.T) {
	o := newTestOrchestrator(t)
	if o.Bus() == nil || o.History() == nil || o.SmartWorker() == nil || o.Config() == nil {
		t.Fatal("expected New to construct every owned component")
	}
}

func TestOnSnapshotPushesToHistoryAndPublishesOnBus(t *testing.T) {
	o := newTestOrchestrator(t)
	sub := o.Bus().Subscribe("sensor://snapshot")

	snap := model.Snapshot{TimestampMS: 123}
	o.onSnapshot(snap)

	got := o.History().Query(0, 1000, 10)
	if len(got) != 1 || got[0].TimestampMS != 123 {
		t.Errorf("expected snapshot pushed to history, got %+v", got)
	}

	select {
	case payload := <-sub:
		if payload.(model.Snapshot).TimestampMS != 123 {
			t.Errorf("expected bus payload to carry the snapshot, got %+v", payload)
		}
	default:
		t.Error("expected snapshot published on the bus")
	}
}

func TestOnSmartUpdatePublishesSmartEvent(t *testing.T) {
	o := newTestOrchestrator(t)
	sub := o.Bus().Subscribe(bus.TopicSmart)

	o.onSmartUpdate([]model.SmartHealth{{Device: "/dev/sda"}}, "disk error")

	select {
	case payload := <-sub:
		ev, ok := payload.(bus.SmartEvent)
		if !ok {
			t.Fatalf("expected a bus.SmartEvent, got %T", payload)
		}
		if len(ev.Smart) != 1 || ev.Smart[0].Device != "/dev/sda" {
			t.Errorf("expected smart health payload to carry the device, got %+v", ev.Smart)
		}
		if ev.LastError != "disk error" {
			t.Errorf("expected last-error to carry through, got %q", ev.LastError)
		}
	default:
		t.Error("expected a smart event published on the bus")
	}
}

func TestRequestReopenIncrementsCounter(t *testing.T) {
	o := newTestOrchestrator(t)
	if o.ReopenCount() != 0 {
		t.Fatalf("expected zero reopen count initially")
	}
	o.requestReopen()
	o.requestReopen()
	if o.ReopenCount() != 2 {
		t.Errorf("expected reopen count 2, got %d", o.ReopenCount())
	}
}

func TestBridgePIDIsZeroBeforeAnyChildSpawned(t *testing.T) {
	o := newTestOrchestrator(t)
	if o.BridgePID() != 0 {
		t.Errorf("expected PID 0 before Run, got %d", o.BridgePID())
	}
}

func TestRunStopsAllComponentsOnContextCancel(t *testing.T) {
	o := newTestOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return after context cancellation")
	}
}

func TestSubscribeAddsAnAdditionalSnapshotConsumer(t *testing.T) {
	o := newTestOrchestrator(t)

	var got bool
	o.Subscribe(func(s model.Snapshot) {
		got = true
	})

	// The Assembler only notifies subscribers from inside Run's loop, so
	// drive exactly one tick by cancelling well before the 1s sleep.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	o.asm.Run(ctx)

	if !got {
		t.Fatal("expected the registered consumer to receive the ticked snapshot")
	}
}
