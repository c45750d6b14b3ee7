package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
	"github.com/papercircuit/elektronVersion/internal/infra/scheduler"
)

type countRunner struct {
	t       *testing.T
	delay   time.Duration
	calls   int32
	running int32
}

func (r *countRunner) RunCycle(ctx context.Context) (dm.Set, error) {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		r.t.Error("overlapping cycles detected")
	}
	defer atomic.StoreInt32(&r.running, 0)
	atomic.AddInt32(&r.calls, 1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return nil, nil
}

func TestStart_ImmediateCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &countRunner{t: t}
	s := &scheduler.Scheduler{Engine: r}
	s.Start(ctx, time.Hour)
	defer s.Stop()

	deadline := time.After(500 * time.Millisecond)
	for atomic.LoadInt32(&r.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("no immediate cycle after Start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if s.State() != scheduler.Running {
		t.Fatal("state != Running after Start")
	}
}

func TestNoOverlappingCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// cycles take much longer than the interval; the guard must drop ticks
	r := &countRunner{t: t, delay: 60 * time.Millisecond}
	s := &scheduler.Scheduler{Engine: r}
	s.Start(ctx, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&r.calls); n > 5 {
		t.Fatalf("ticks were queued instead of dropped: %d cycles", n)
	}
}

func TestReconfigure_OldTimerNeverFires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &countRunner{t: t}
	s := &scheduler.Scheduler{Engine: r}
	s.Start(ctx, 30*time.Millisecond)
	s.Reconfigure(time.Hour)
	defer s.Stop()

	// let the immediate cycle land, then wait past several old intervals
	time.Sleep(200 * time.Millisecond)
	if n := atomic.LoadInt32(&r.calls); n != 1 {
		t.Fatalf("old-interval tick fired after reconfigure: %d cycles", n)
	}
	if s.Interval() != time.Hour {
		t.Fatalf("interval = %v", s.Interval())
	}
}

func TestStop_DisarmsTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &countRunner{t: t}
	s := &scheduler.Scheduler{Engine: r}
	s.Start(ctx, 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	if s.State() != scheduler.Idle {
		t.Fatal("state != Idle after Stop")
	}

	before := atomic.LoadInt32(&r.calls)
	time.Sleep(100 * time.Millisecond)
	if after := atomic.LoadInt32(&r.calls); after != before {
		t.Fatalf("cycles after Stop: %d -> %d", before, after)
	}
}

func TestStart_WhileRunningIsNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &countRunner{t: t}
	s := &scheduler.Scheduler{Engine: r}
	s.Start(ctx, time.Hour)
	defer s.Stop()
	s.Start(ctx, time.Millisecond) // must not re-arm at 1ms

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&r.calls); n > 2 {
		t.Fatalf("second Start re-armed the timer: %d cycles", n)
	}
	if s.Interval() != time.Hour {
		t.Fatalf("interval = %v", s.Interval())
	}
}
