package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

func TestRecordTest(t *testing.T) {
	RecordTest("run-record-test", "alpha", types.TestStatusPass, 1500*time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(testsTotal.WithLabelValues("run-record-test", "alpha", "pass")))
	assert.Equal(t, 1.5,
		testutil.ToFloat64(testDuration.WithLabelValues("run-record-test", "alpha")))
}

func TestRecordTestRejectsUnknownResult(t *testing.T) {
	RecordTest("run-bad-result", "alpha", types.TestStatus("bogus"), time.Second)

	assert.Equal(t, float64(0),
		testutil.ToFloat64(testsTotal.WithLabelValues("run-bad-result", "alpha", "bogus")))
}

func TestRecordRun(t *testing.T) {
	RecordRun("run-agg", types.RunStats{
		Registered: 4,
		Executed:   3,
		Failed:     1,
		Duration:   2 * time.Second,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(runResults.WithLabelValues("run-agg", "fail")))
	assert.Equal(t, float64(3), testutil.ToFloat64(runTestTotal.WithLabelValues("run-agg")))
	assert.Equal(t, float64(2), testutil.ToFloat64(runTestPassed.WithLabelValues("run-agg")))
	assert.Equal(t, float64(1), testutil.ToFloat64(runTestFailed.WithLabelValues("run-agg")))
	assert.Equal(t, float64(2), testutil.ToFloat64(runDuration.WithLabelValues("run-agg")))
}

func TestRecordRunAllPassed(t *testing.T) {
	RecordRun("run-green", types.RunStats{Registered: 2, Executed: 2})

	assert.Equal(t, float64(1), testutil.ToFloat64(runResults.WithLabelValues("run-green", "pass")))
	assert.Equal(t, float64(0), testutil.ToFloat64(runTestFailed.WithLabelValues("run-green")))
}

func TestRecordErrorDetails(t *testing.T) {
	RecordErrorDetails("test_run", errors.New("boom: bad thing"))

	assert.Equal(t, float64(1),
		testutil.ToFloat64(errorsTotal.WithLabelValues("test_run.boom_bad_thing")))

	// nil errors are not recorded
	RecordErrorDetails("test_run", nil)
	assert.Equal(t, float64(1),
		testutil.ToFloat64(errorsTotal.WithLabelValues("test_run.boom_bad_thing")))
}
