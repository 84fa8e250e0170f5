package runner

import (
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

func TestWallTimer(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Now())
	timer := NewTimer(types.TimerReal, fc)

	stop := timer.Start()
	fc.Increment(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, stop())
}

func TestInvalidTimerKindFallsBackToWall(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Now())
	timer := NewTimer(types.TimerKind("bogus"), fc)

	stop := timer.Start()
	fc.Increment(time.Second)
	assert.Equal(t, time.Second, stop())
}

func TestCPUTimer(t *testing.T) {
	timer := NewTimer(types.TimerCPU, nil)

	stop := timer.Start()
	// Burn a little CPU so the clock has something to count.
	x := 0
	for i := 0; i < 1_000_000; i++ {
		x += i
	}
	_ = x
	d := stop()

	require.GreaterOrEqual(t, d, time.Duration(0))
}
