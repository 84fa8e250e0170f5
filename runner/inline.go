package runner

import (
	"context"
	"runtime/debug"

	"github.com/ethereum-optimism/infra/op-unit/reporting"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Inline executes tests in the current process. The body runs on its
// own goroutine so a fatal assertion can stop it with runtime.Goexit
// without tearing down the engine, and a panicking body is recovered
// into a recorded failure instead of killing the run.
type Inline struct {
	rep      reporting.Reporter
	timer    Timer
	setup    func()
	teardown func()
}

// NewInline creates the in-process backend. setup and teardown may be
// nil; when set they bracket every test.
func NewInline(rep reporting.Reporter, timer Timer, setup, teardown func()) *Inline {
	return &Inline{rep: rep, timer: timer, setup: setup, teardown: teardown}
}

func (b *Inline) Run(ctx context.Context, seq int, tc types.TestCase) (types.TestOutcome, error) {
	if b.setup != nil {
		b.setup()
	}
	b.rep.TestStarted(seq, tc)

	rs := newRunState(seq, b.rep)
	stop := b.timer.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if val := recover(); val != nil {
				rs.recordPanic(val, debug.Stack())
			}
		}()
		tc.Entry(rs)
		rs.mu.Lock()
		rs.completed = true
		rs.mu.Unlock()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// The body goroutine is abandoned; the sealed state keeps any
		// late recording from reaching the reporters.
		rs.close()
		return types.TestOutcome{}, ctx.Err()
	}
	elapsed := stop()

	if b.teardown != nil {
		b.teardown()
	}

	rs.mu.Lock()
	bareExit := !rs.completed && !rs.aborted && !rs.panicked
	rs.mu.Unlock()
	if bareExit {
		rs.RecordCondition(false, types.Location{}, "test goroutine exited without completing the test")
	}

	rs.mu.Lock()
	out := types.TestOutcome{
		Seq:        seq,
		Name:       tc.Name,
		Conditions: rs.conditions,
		Failures:   rs.failures,
		Duration:   elapsed,
	}
	switch {
	case rs.aborted:
		out.Status = types.TestStatusAborted
	case rs.failures > 0:
		out.Status = types.TestStatusFail
	default:
		out.Status = types.TestStatusPass
	}
	rs.mu.Unlock()
	rs.close()

	b.rep.TestFinished(seq, out)
	return out, nil
}
