// Package reporting renders test run progress and results. The engine
// drives implementations of Reporter; nothing here owns run state.
package reporting

import (
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Reporter receives the event stream of one run. Calls are serialized
// by the engine; no two calls ever run concurrently.
//
// When tests run isolated, the per-test events for passing and failing
// tests are produced inside the worker process (which shares the
// parent's report stream); the parent only delivers TestFinished for
// crashed workers. Sinks that need every outcome regardless of
// isolation should consume Summary, which always carries the complete
// list.
type Reporter interface {
	// RunStarted announces the run before the first test executes.
	RunStarted(plan types.RunPlan)
	// TestStarted announces the test with the given execution sequence
	// number.
	TestStarted(seq int, tc types.TestCase)
	// CaseStarted announces a sub-case inside the running test. An
	// empty name closes the current sub-case.
	CaseStarted(seq int, name string)
	// Condition reports one recorded condition.
	Condition(seq int, ev types.ConditionEvent)
	// Diagnostic reports detail attached to the last failed condition.
	Diagnostic(seq int, d types.Diagnostic)
	// TestFinished reports the outcome of one executed test.
	TestFinished(seq int, out types.TestOutcome)
	// Summary closes the run with the aggregate statistics and every
	// recorded outcome in execution order.
	Summary(stats types.RunStats, outcomes []types.TestOutcome)
}

// Multi fans every event out to a list of reporters in order.
type Multi struct {
	reporters []Reporter
}

// NewMulti creates a fan-out reporter. Nil entries are dropped.
func NewMulti(reporters ...Reporter) *Multi {
	m := &Multi{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

func (m *Multi) RunStarted(plan types.RunPlan) {
	for _, r := range m.reporters {
		r.RunStarted(plan)
	}
}

func (m *Multi) TestStarted(seq int, tc types.TestCase) {
	for _, r := range m.reporters {
		r.TestStarted(seq, tc)
	}
}

func (m *Multi) CaseStarted(seq int, name string) {
	for _, r := range m.reporters {
		r.CaseStarted(seq, name)
	}
}

func (m *Multi) Condition(seq int, ev types.ConditionEvent) {
	for _, r := range m.reporters {
		r.Condition(seq, ev)
	}
}

func (m *Multi) Diagnostic(seq int, d types.Diagnostic) {
	for _, r := range m.reporters {
		r.Diagnostic(seq, d)
	}
}

func (m *Multi) TestFinished(seq int, out types.TestOutcome) {
	for _, r := range m.reporters {
		r.TestFinished(seq, out)
	}
}

func (m *Multi) Summary(stats types.RunStats, outcomes []types.TestOutcome) {
	for _, r := range m.reporters {
		r.Summary(stats, outcomes)
	}
}
