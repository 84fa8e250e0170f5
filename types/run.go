package types

import "time"

// RunPlan describes a run before its first test executes.
type RunPlan struct {
	RunID   string
	Names   []string // every registered test, in registration order
	Planned int      // length of the effective run list
}

// RunStats aggregates the counters for one run. Only the run
// coordinator writes to it.
type RunStats struct {
	RunID      string
	Registered int
	Executed   int
	Failed     int
	Duration   time.Duration
}

// Passed returns the number of executed tests that passed.
func (s RunStats) Passed() int {
	return s.Executed - s.Failed
}

// Skipped returns the number of registered tests left out of the run.
func (s RunStats) Skipped() int {
	return s.Registered - s.Executed
}

// IsolationMode controls whether tests run in a child process.
type IsolationMode string

const (
	IsolationAuto   IsolationMode = "auto"
	IsolationAlways IsolationMode = "always"
	IsolationNever  IsolationMode = "never"
)

func (m IsolationMode) IsValid() bool {
	switch m {
	case IsolationAuto, IsolationAlways, IsolationNever:
		return true
	}
	return false
}

// TimerKind selects the duration source for test timing.
type TimerKind string

const (
	TimerReal TimerKind = "real" // wall clock
	TimerCPU  TimerKind = "cpu"  // process CPU time
)

func (k TimerKind) IsValid() bool {
	return k == TimerReal || k == TimerCPU
}

// ColorMode controls console colorization.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto" // colorize when the report stream is a terminal
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	}
	return false
}
