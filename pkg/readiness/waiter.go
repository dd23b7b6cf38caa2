package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned when the workloads are not ready within the budget
var ErrTimeout = errors.New("timed out waiting for workloads to become ready")

// Checker produces one readiness observation. Implemented by Prober.
type Checker interface {
	Probe(ctx context.Context) Status
}

// Phase is a state of the wait
type Phase int

const (
	Polling Phase = iota
	Settling
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Polling:
		return "polling"
	case Settling:
		return "settling"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options bounds the wait
type Options struct {
	// Interval between probes
	Interval time.Duration
	// Timeout is the elapsed budget after which the wait fails
	Timeout time.Duration
	// Settle is the delay applied after the first ready observation
	Settle time.Duration
}

// Waiter polls a Checker until ready or out of budget.
//
//	POLLING --ready--> SETTLING --settle elapsed--> READY
//	POLLING --elapsed >= timeout--> FAILED
//
// Probes run at 0, interval, 2*interval ... while elapsed < timeout, so the
// defaults (60s, 600s) give ten probes before failing at 600s.
//
// The settle delay absorbs workloads that report available replicas
// before their own startup has finished.
type Waiter struct {
	checker Checker
	clock   clockwork.Clock
	opts    Options
	log     logrus.FieldLogger

	// OnPhase is called on every phase change, if set
	OnPhase func(Phase)
}

// NewWaiter creates a waiter. A nil clock means the real clock.
func NewWaiter(checker Checker, clock clockwork.Clock, opts Options, log logrus.FieldLogger) *Waiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Waiter{checker: checker, clock: clock, opts: opts, log: log}
}

// Wait blocks until the workloads are ready and settled. It returns an error
// wrapping ErrTimeout when the budget runs out, or the context error.
func (w *Waiter) Wait(ctx context.Context) error {
	start := w.clock.Now()
	w.enter(Polling)

	for {
		status := w.checker.Probe(ctx)
		if status.Ready() {
			break
		}

		w.log.WithFields(logrus.Fields{
			"elapsed": w.clock.Since(start).Round(time.Second),
			"budget":  w.opts.Timeout,
		}).Infof("workloads not ready: %s", status)

		if err := w.sleep(ctx, w.opts.Interval); err != nil {
			return err
		}

		// The budget is checked before every probe after the first
		if elapsed := w.clock.Since(start); elapsed >= w.opts.Timeout {
			w.enter(Failed)
			return fmt.Errorf("%w after %s (%s)", ErrTimeout, elapsed.Round(time.Second), status)
		}
	}

	w.enter(Settling)
	if err := w.sleep(ctx, w.opts.Settle); err != nil {
		return err
	}
	w.enter(Ready)
	return nil
}

func (w *Waiter) enter(p Phase) {
	w.log.WithField("phase", p).Debug("readiness phase")
	if w.OnPhase != nil {
		w.OnPhase(p)
	}
}

func (w *Waiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.clock.After(d):
		return nil
	}
}
