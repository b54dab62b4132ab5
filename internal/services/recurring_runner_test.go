package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingProcessor struct {
	calls atomic.Int32
	ran   chan struct{}
	err   error
}

func (p *countingProcessor) ProcessDue(context.Context, time.Time) (int, error) {
	p.calls.Add(1)
	select {
	case p.ran <- struct{}{}:
	default:
	}
	return 1, p.err
}

func TestRecurringRunnerLifecycle(t *testing.T) {
	p := &countingProcessor{ran: make(chan struct{}, 1)}
	r := NewRecurringRunner(p, RecurringRunnerConfig{Interval: time.Hour})
	ctx := context.Background()

	if r.IsRunning() {
		t.Fatal("runner should not be running before Start")
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop on an idle runner: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	select {
	case <-p.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not process on start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.IsRunning() {
		t.Fatal("runner still running after Stop")
	}
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop on a stopped runner: %v", err)
	}
	if got := p.calls.Load(); got != 1 {
		t.Fatalf("ProcessDue calls = %d, want 1", got)
	}
}

func TestRecurringRunnerSurvivesProcessorErrors(t *testing.T) {
	p := &countingProcessor{ran: make(chan struct{}, 1), err: errors.New("database is locked")}
	r := NewRecurringRunner(p, RecurringRunnerConfig{Interval: 10 * time.Millisecond})
	ctx := context.Background()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-p.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("pass %d did not run", i+1)
		}
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNewRecurringRunnerDefaultsInterval(t *testing.T) {
	r := NewRecurringRunner(&countingProcessor{}, RecurringRunnerConfig{})
	if r.config.Interval != time.Hour {
		t.Fatalf("Interval = %v, want 1h", r.config.Interval)
	}
}
