package types

import (
	"fmt"
	"time"
)

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusAborted TestStatus = "aborted" // failed via a fatal assertion
	TestStatusCrashed TestStatus = "crashed" // worker died by signal or unexpected exit code
	TestStatusSkip    TestStatus = "skip"    // registered but not part of the run
)

// Failed reports whether the status counts as a failure in run statistics
// and for the process exit code. Aborted and crashed tests are failures.
func (s TestStatus) Failed() bool {
	return s == TestStatusFail || s == TestStatusAborted || s == TestStatusCrashed
}

// Location is the source position a condition was recorded from.
// File holds the base name only; a zero Location means the position
// is unknown (e.g. a recovered panic).
type Location struct {
	File string
	Line int
}

func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ConditionEvent describes one recorded condition check inside a test.
type ConditionEvent struct {
	Passed bool
	Loc    Location
	Desc   string // rendered description of the checked condition
	Case   string // active sub-case name, empty outside any case
}

// Diagnostic is supplementary detail attached to the most recent failed
// condition: a user message or a rendered hex dump. Lines are fully
// rendered; reporters only add indentation or comment prefixes.
type Diagnostic struct {
	Lines []string
}

// Recorder is the engine surface a test body records through. It is
// implemented by the engine's per-test run state; test code reaches it
// via the public T handle.
type Recorder interface {
	// RecordCondition records one condition outcome and returns passed.
	RecordCondition(passed bool, loc Location, desc string) bool
	// AttachMessage attaches a diagnostic message. It is dropped unless
	// the most recently recorded condition failed.
	AttachMessage(text string)
	// AttachDump attaches a titled binary diagnostic under the same rule
	// as AttachMessage.
	AttachDump(title string, data []byte)
	// BeginCase opens a named sub-case, closing any previous one.
	// An empty name closes without opening.
	BeginCase(name string)
	// FailNow aborts the running test. It must be called from the
	// goroutine running the test body and does not return.
	FailNow()
}

// TestCase is a registered test: a unique name plus the engine entry.
type TestCase struct {
	Name  string
	Entry func(Recorder)
}

// TestOutcome is the recorded result of one executed test.
type TestOutcome struct {
	Seq        int // 1-based execution order within the run
	Name       string
	Status     TestStatus
	Conditions int // recorded condition count (zero for isolated tests; the worker counts)
	Failures   int // failed condition count
	Duration   time.Duration
	Diagnostic string // crash detail such as "Test interrupted by SIGSEGV."
}
