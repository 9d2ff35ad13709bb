package probe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeProber returns canned results and counts invocations.
type fakeProber struct {
	res   Result
	err   error
	calls atomic.Int32
}

func (f *fakeProber) Probe(_ context.Context, _ string) (Result, error) {
	f.calls.Add(1)
	return f.res, f.err
}

func TestAutoUsesPrimary(t *testing.T) {
	primary := &fakeProber{res: Result{Reachable: true, RTT: 5 * time.Millisecond}}
	fallback := &fakeProber{}
	a := &Auto{primary: primary, fallback: fallback, logger: zap.NewNop()}

	res, err := a.Probe(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !res.Reachable {
		t.Error("Probe() not reachable, want reachable")
	}
	if fallback.calls.Load() != 0 {
		t.Error("fallback used despite healthy primary")
	}
}

func TestAutoUnreachableDoesNotSwitch(t *testing.T) {
	primary := &fakeProber{res: Result{}}
	fallback := &fakeProber{}
	a := &Auto{primary: primary, fallback: fallback, logger: zap.NewNop()}

	res, err := a.Probe(context.Background(), "192.168.1.99")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if res.Reachable {
		t.Error("Probe() reachable, want unreachable")
	}
	if a.switched.Load() {
		t.Error("switched to fallback on plain unreachability")
	}
}

func TestAutoSwitchesOnCapabilityError(t *testing.T) {
	primary := &fakeProber{err: errors.New("socket: operation not permitted")}
	fallback := &fakeProber{res: Result{Reachable: true, RTT: 2 * time.Millisecond}}
	a := &Auto{primary: primary, fallback: fallback, logger: zap.NewNop()}

	res, err := a.Probe(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !res.Reachable {
		t.Error("fallback result not returned")
	}

	// Subsequent probes must go straight to the fallback.
	a.Probe(context.Background(), "192.168.1.11")
	if primary.calls.Load() != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls.Load())
	}
	if fallback.calls.Load() != 2 {
		t.Errorf("fallback called %d times, want 2", fallback.calls.Load())
	}
}
