package runner

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/ethereum-optimism/infra/op-unit/reporting"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

const (
	// maxMessageSize caps attached diagnostic messages.
	maxMessageSize = 1024
	// maxDumpSize caps the bytes shown by an attached dump.
	maxDumpSize = 1024
	// maxCaseNameSize caps sub-case names.
	maxCaseNameSize = 64

	dumpRowWidth = 16
)

// runState is the engine-owned mutable state of the test currently
// executing. It implements types.Recorder; a fresh value is created
// for every test. The mutex serializes recording against the engine
// closing the test, so a stray goroutine recording after the test
// boundary is ignored instead of corrupting the next test's output.
type runState struct {
	seq int
	rep reporting.Reporter

	mu         sync.Mutex
	closed     bool
	conditions int
	failures   int
	lastFailed bool
	caseName   string
	aborted    bool
	completed  bool
	panicked   bool
}

func newRunState(seq int, rep reporting.Reporter) *runState {
	return &runState{seq: seq, rep: rep}
}

func (rs *runState) RecordCondition(passed bool, loc types.Location, desc string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return passed
	}

	rs.conditions++
	if !passed {
		rs.failures++
	}
	rs.lastFailed = !passed
	rs.rep.Condition(rs.seq, types.ConditionEvent{
		Passed: passed,
		Loc:    loc,
		Desc:   desc,
		Case:   rs.caseName,
	})
	return passed
}

func (rs *runState) AttachMessage(text string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed || !rs.lastFailed {
		return
	}
	if len(text) > maxMessageSize {
		text = text[:maxMessageSize]
	}
	rs.rep.Diagnostic(rs.seq, types.Diagnostic{Lines: strings.Split(text, "\n")})
}

func (rs *runState) AttachDump(title string, data []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed || !rs.lastFailed {
		return
	}
	rs.rep.Diagnostic(rs.seq, types.Diagnostic{Lines: renderDump(title, data)})
}

func (rs *runState) BeginCase(name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return
	}
	if len(name) > maxCaseNameSize {
		name = name[:maxCaseNameSize]
	}
	rs.caseName = name
	rs.rep.CaseStarted(rs.seq, name)
}

// FailNow ends the test goroutine. The aborted flag tells the engine
// this was a fatal assertion rather than a bare goroutine exit.
func (rs *runState) FailNow() {
	rs.mu.Lock()
	rs.aborted = true
	rs.mu.Unlock()
	runtime.Goexit()
}

// recordPanic converts a recovered panic into one failed condition
// with the goroutine stack attached. It runs in the recovery frame of
// the test goroutine.
func (rs *runState) recordPanic(val any, stack []byte) {
	rs.RecordCondition(false, types.Location{}, fmt.Sprintf("unhandled panic: %v", val))

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return
	}
	rs.panicked = true
	lines := strings.Split(strings.TrimRight(string(stack), "\n"), "\n")
	rs.rep.Diagnostic(rs.seq, types.Diagnostic{Lines: lines})
}

// close seals the state at the test boundary; later recording calls
// become no-ops.
func (rs *runState) close() {
	rs.mu.Lock()
	rs.closed = true
	rs.mu.Unlock()
}

// renderDump produces the display lines for a titled hex dump: an
// offset column, up to 16 hex bytes per row and an ASCII column with
// non-printable bytes as '.'. At most maxDumpSize bytes are shown.
func renderDump(title string, data []byte) []string {
	if !strings.HasSuffix(title, ":") {
		title += ":"
	}
	lines := []string{title}

	shown := len(data)
	if shown > maxDumpSize {
		shown = maxDumpSize
	}
	for off := 0; off < shown; off += dumpRowWidth {
		var hexCol, asciiCol strings.Builder
		for i := off; i < off+dumpRowWidth; i++ {
			if i >= shown {
				hexCol.WriteString("   ")
				continue
			}
			b := data[i]
			fmt.Fprintf(&hexCol, " %02x", b)
			if b < 0x20 || b >= 0x7f {
				asciiCol.WriteByte('.')
			} else {
				asciiCol.WriteByte(b)
			}
		}
		lines = append(lines, fmt.Sprintf("%08x:%s  %s", off, hexCol.String(), asciiCol.String()))
	}
	if rest := len(data) - shown; rest > 0 {
		lines = append(lines, fmt.Sprintf("           ... (and more %d bytes)", rest))
	}
	return lines
}
