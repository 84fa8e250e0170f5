package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// TAP renders Test Anything Protocol output: a plan line, one result
// line per test, and detail as '#' comment lines. Verbosity is capped
// at 2 because a result line must precede any detail about its test,
// which rules out tracing passing conditions as they happen.
type TAP struct {
	w        io.Writer
	verbose  int
	showTime bool

	name       string
	resultDone bool
	curCase    string
	caseShown  bool
}

// NewTAP creates a TAP reporter writing to w.
func NewTAP(w io.Writer, verbosity int, showTime bool) *TAP {
	if verbosity > 2 {
		verbosity = 2
	}
	return &TAP{w: w, verbose: verbosity, showTime: showTime}
}

func (t *TAP) RunStarted(plan types.RunPlan) {
	fmt.Fprintf(t.w, "1..%d\n", plan.Planned)
}

func (t *TAP) TestStarted(seq int, tc types.TestCase) {
	t.name = tc.Name
	t.resultDone = false
	t.curCase = ""
	t.caseShown = false
}

func (t *TAP) CaseStarted(seq int, name string) {
	t.curCase = name
	t.caseShown = false
}

func (t *TAP) Condition(seq int, ev types.ConditionEvent) {
	if ev.Passed || t.verbose < 1 {
		return
	}
	// The result line leads its own diagnostics, so emit it at the
	// first failure.
	if !t.resultDone {
		fmt.Fprintf(t.w, "not ok %d - %s\n", seq, t.name)
		t.resultDone = true
	}
	if t.verbose < 2 {
		return
	}
	if t.curCase != "" && !t.caseShown {
		fmt.Fprintf(t.w, "%sCase %s:\n", t.comment(1), t.curCase)
		t.caseShown = true
	}
	if ev.Loc.IsZero() {
		fmt.Fprintf(t.w, "%sCheck %s... failed\n", t.comment(t.depth()), ev.Desc)
	} else {
		fmt.Fprintf(t.w, "%s%s: Check %s... failed\n", t.comment(t.depth()), ev.Loc, ev.Desc)
	}
}

func (t *TAP) Diagnostic(seq int, d types.Diagnostic) {
	if t.verbose < 2 {
		return
	}
	for _, line := range d.Lines {
		fmt.Fprintf(t.w, "%s%s\n", t.comment(t.depth()+1), line)
	}
}

func (t *TAP) TestFinished(seq int, out types.TestOutcome) {
	if !t.resultDone {
		if out.Status == types.TestStatusPass {
			fmt.Fprintf(t.w, "ok %d - %s\n", seq, out.Name)
		} else {
			fmt.Fprintf(t.w, "not ok %d - %s\n", seq, out.Name)
		}
		t.resultDone = true
	}
	if t.verbose >= 2 && out.Diagnostic != "" {
		fmt.Fprintf(t.w, "%s%s\n", t.comment(1), out.Diagnostic)
	}
	if t.showTime && out.Status == types.TestStatusPass {
		fmt.Fprintf(t.w, "# Duration: %.6f secs\n", out.Duration.Seconds())
	}
}

func (t *TAP) Summary(stats types.RunStats, outcomes []types.TestOutcome) {}

func (t *TAP) depth() int {
	if t.curCase != "" {
		return 2
	}
	return 1
}

// comment returns the leading '#' with indentation for a detail line.
func (t *TAP) comment(depth int) string {
	return "#" + strings.Repeat(" ", 2*depth-1)
}
