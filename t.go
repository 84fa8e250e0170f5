package unit

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// T is the handle a test body records through. It is a thin veneer over
// the engine's per-test recorder; T itself holds no mutable state, so a
// body may pass it around freely.
type T struct {
	rec types.Recorder
}

// Check records one condition outcome, described by the printf-style
// format. It returns ok so callers can guard follow-up work:
//
//	if t.Check(err == nil, "open %s", path) {
//	    defer f.Close()
//	}
func (t *T) Check(ok bool, format string, args ...any) bool {
	return t.rec.RecordCondition(ok, callerLocation(1), fmt.Sprintf(format, args...))
}

// Assert records the condition like Check and ends the test immediately
// when it failed. Deferred functions in the body still run. Assert must
// be called from the goroutine running the test body; on failure it
// does not return.
func (t *T) Assert(ok bool, format string, args ...any) {
	t.rec.RecordCondition(ok, callerLocation(1), fmt.Sprintf(format, args...))
	if !ok {
		t.rec.FailNow()
	}
}

// Msg attaches a message to the most recently recorded condition. It is
// shown only when that condition failed; otherwise it is dropped.
func (t *T) Msg(format string, args ...any) {
	t.rec.AttachMessage(fmt.Sprintf(format, args...))
}

// Dump attaches a titled hex dump of data to the most recently recorded
// condition, shown under the same rule as Msg.
func (t *T) Dump(title string, data []byte) {
	t.rec.AttachDump(title, data)
}

// Case opens a named sub-case inside the test, closing any previous
// one. Conditions recorded afterwards are labeled with the case name.
// t.Case("") closes the current case without opening a new one.
func (t *T) Case(format string, args ...any) {
	t.rec.BeginCase(fmt.Sprintf(format, args...))
}

func callerLocation(skip int) types.Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return types.Location{}
	}
	return types.Location{File: filepath.Base(file), Line: line}
}
