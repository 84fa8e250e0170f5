package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

func tapOutput(verbosity int, showTime bool, drive func(r *TAP)) string {
	var buf bytes.Buffer
	r := NewTAP(&buf, verbosity, showTime)
	drive(r)
	return buf.String()
}

func TestTAPQuietRun(t *testing.T) {
	out := tapOutput(0, false, func(r *TAP) {
		r.RunStarted(types.RunPlan{Planned: 2})
		r.TestStarted(1, types.TestCase{Name: "a"})
		r.TestFinished(1, types.TestOutcome{Name: "a", Status: types.TestStatusPass})
		r.TestStarted(2, types.TestCase{Name: "b"})
		r.Condition(2, types.ConditionEvent{Passed: false, Desc: "x"})
		r.Diagnostic(2, types.Diagnostic{Lines: []string{"hidden"}})
		r.TestFinished(2, types.TestOutcome{Name: "b", Status: types.TestStatusFail, Failures: 1})
	})
	assert.Equal(t, "1..2\nok 1 - a\nnot ok 2 - b\n", out)
}

func TestTAPResultLineLeadsTheDetails(t *testing.T) {
	out := tapOutput(2, false, func(r *TAP) {
		r.TestStarted(3, types.TestCase{Name: "gamma"})
		r.Condition(3, types.ConditionEvent{
			Passed: false,
			Loc:    types.Location{File: "d.go", Line: 7},
			Desc:   "x > 0",
		})
		r.Diagnostic(3, types.Diagnostic{Lines: []string{"x: -1"}})
		r.TestFinished(3, types.TestOutcome{Name: "gamma", Status: types.TestStatusFail, Failures: 1})
	})

	want := "not ok 3 - gamma\n" +
		"# d.go:7: Check x > 0... failed\n" +
		"#   x: -1\n"
	assert.Equal(t, want, out)
}

func TestTAPCaseComments(t *testing.T) {
	out := tapOutput(2, false, func(r *TAP) {
		r.TestStarted(1, types.TestCase{Name: "alpha"})
		r.CaseStarted(1, "edge")
		r.Condition(1, types.ConditionEvent{Passed: true, Desc: "quiet", Case: "edge"})
		r.Condition(1, types.ConditionEvent{
			Passed: false,
			Loc:    types.Location{File: "a.go", Line: 9},
			Desc:   "loud",
			Case:   "edge",
		})
		r.Diagnostic(1, types.Diagnostic{Lines: []string{"why"}})
		r.TestFinished(1, types.TestOutcome{Name: "alpha", Status: types.TestStatusFail, Failures: 1})
	})

	want := "not ok 1 - alpha\n" +
		"# Case edge:\n" +
		"#   a.go:9: Check loud... failed\n" +
		"#     why\n"
	assert.Equal(t, want, out)
}

func TestTAPPassingConditionsNeverPrint(t *testing.T) {
	out := tapOutput(9, false, func(r *TAP) {
		r.TestStarted(1, types.TestCase{Name: "a"})
		r.Condition(1, types.ConditionEvent{Passed: true, Desc: "fine"})
		r.TestFinished(1, types.TestOutcome{Name: "a", Status: types.TestStatusPass})
	})
	assert.Equal(t, "ok 1 - a\n", out, "a result line must precede detail, so passing checks cannot stream")
}

func TestTAPCrashDiagnostic(t *testing.T) {
	out := tapOutput(2, false, func(r *TAP) {
		r.TestStarted(4, types.TestCase{Name: "delta"})
		r.TestFinished(4, types.TestOutcome{
			Name:       "delta",
			Status:     types.TestStatusCrashed,
			Diagnostic: "Test interrupted by SIGSEGV.",
		})
	})
	assert.Equal(t, "not ok 4 - delta\n# Test interrupted by SIGSEGV.\n", out)
}

func TestTAPDuration(t *testing.T) {
	out := tapOutput(1, true, func(r *TAP) {
		r.TestStarted(1, types.TestCase{Name: "a"})
		r.TestFinished(1, types.TestOutcome{
			Name:     "a",
			Status:   types.TestStatusPass,
			Duration: 1500 * time.Millisecond,
		})
		r.TestStarted(2, types.TestCase{Name: "b"})
		r.Condition(2, types.ConditionEvent{Passed: false, Desc: "x"})
		r.TestFinished(2, types.TestOutcome{Name: "b", Status: types.TestStatusFail, Failures: 1})
	})

	want := "ok 1 - a\n" +
		"# Duration: 1.500000 secs\n" +
		"not ok 2 - b\n"
	assert.Equal(t, want, out, "durations are reported for passing tests only")
}

func TestTAPWorkerHasNoPlan(t *testing.T) {
	out := tapOutput(1, false, func(r *TAP) {
		r.TestStarted(5, types.TestCase{Name: "x"})
		r.TestFinished(5, types.TestOutcome{Name: "x", Status: types.TestStatusPass})
	})
	assert.Equal(t, "ok 5 - x\n", out)
}
