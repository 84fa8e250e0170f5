package runner

import (
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sys/unix"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Timer measures the duration of a single test. Start returns a stop
// function reporting the time elapsed since the call.
type Timer interface {
	Start() func() time.Duration
}

// NewTimer returns the timer for the given kind. Wall time is read
// from clk so tests can substitute a fake clock.
func NewTimer(kind types.TimerKind, clk clock.Clock) Timer {
	if kind == types.TimerCPU {
		return cpuTimer{}
	}
	return wallTimer{clk: clk}
}

type wallTimer struct {
	clk clock.Clock
}

func (t wallTimer) Start() func() time.Duration {
	begin := t.clk.Now()
	return func() time.Duration {
		return t.clk.Since(begin)
	}
}

// cpuTimer reads CLOCK_PROCESS_CPUTIME_ID. Time spent inside isolated
// child processes is not attributed to it.
type cpuTimer struct{}

func (cpuTimer) Start() func() time.Duration {
	begin := processCPUTime()
	return func() time.Duration {
		return processCPUTime() - begin
	}
}

func processCPUTime() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_PROCESS_CPUTIME_ID, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}
