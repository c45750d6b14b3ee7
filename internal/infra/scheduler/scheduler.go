package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercircuit/elektronVersion/internal/domain/listing"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (listing.Set, error)
}

type State int32

const (
	Idle State = iota
	Running
)

// Scheduler drives the sync engine on a fixed, runtime-reconfigurable
// interval. At most one cycle is in flight at a time: a tick that arrives
// while a cycle is still running is dropped, never queued.
type Scheduler struct {
	Engine  CycleRunner
	Timeout time.Duration // per cycle
	Logger  *slog.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	stopCh   chan struct{} // current ticker generation
	ctx      context.Context

	inFlight int32
}

func (s *Scheduler) log() *slog.Logger {
	if s.Logger != nil { return s.Logger }
	return slog.Default()
}

// Start runs one immediate cycle and arms a repeating timer.
// A second Start while Running is a no-op.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return
	}
	s.state = Running
	s.ctx = ctx
	s.interval = interval
	s.mu.Unlock()

	go s.runOnce(ctx)
	s.arm(ctx, interval)
	s.log().Info("scheduler started", "interval", interval)
}

// Reconfigure disarms the current timer generation and re-arms at the new
// interval. The old generation's goroutine exits through its stop channel,
// so a tick from the old interval can never trigger a cycle afterwards.
// It does not force an extra immediate cycle. No-op while Idle.
func (s *Scheduler) Reconfigure(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return
	}
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	ctx := s.ctx
	s.interval = interval
	s.mu.Unlock()

	s.arm(ctx, interval)
	s.log().Info("scheduler reconfigured", "interval", interval)
}

// Stop disarms the timer and returns to Idle. A cycle already in flight runs
// to completion; manual RunCycle calls on the engine stay legal.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.state = Idle
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) arm(ctx context.Context, interval time.Duration) {
	stop := make(chan struct{})
	s.mu.Lock()
	s.stopCh = stop
	s.mu.Unlock()

	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-t.C:
				// a tick may race a close; re-check before running
				select {
				case <-stop:
					return
				default:
				}
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&s.inFlight, 0, 1) {
		s.log().Debug("tick dropped, cycle in flight")
		return
	}
	defer atomic.StoreInt32(&s.inFlight, 0)

	cctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if _, err := s.Engine.RunCycle(cctx); err != nil {
		s.log().Warn("cycle failed", "err", err)
	}
}
