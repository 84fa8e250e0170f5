package reporting

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// XML writes a JUnit-style report for the whole run when it completes.
// Registered tests left out of the run appear as skipped.
type XML struct {
	w         io.Writer
	suiteName string
	log       log.Logger

	names []string
}

// NewXML creates an XML reporter writing to w. suiteName becomes the
// testsuite name attribute, conventionally the test binary's base name.
func NewXML(w io.Writer, suiteName string, logger log.Logger) *XML {
	return &XML{w: w, suiteName: suiteName, log: logger}
}

type xmlTestsuite struct {
	XMLName  xml.Name      `xml:"testsuite"`
	Name     string        `xml:"name,attr"`
	Tests    int           `xml:"tests,attr"`
	Errors   int           `xml:"errors,attr"`
	Failures int           `xml:"failures,attr"`
	Skip     int           `xml:"skip,attr"`
	Cases    []xmlTestcase `xml:"testcase"`
}

type xmlTestcase struct {
	Name    string    `xml:"name,attr"`
	Time    string    `xml:"time,attr"`
	Failure *struct{} `xml:"failure,omitempty"`
	Skipped *struct{} `xml:"skipped,omitempty"`
}

func (x *XML) RunStarted(plan types.RunPlan) {
	x.names = plan.Names
}

func (x *XML) TestStarted(seq int, tc types.TestCase)      {}
func (x *XML) CaseStarted(seq int, name string)            {}
func (x *XML) Condition(seq int, ev types.ConditionEvent)  {}
func (x *XML) Diagnostic(seq int, d types.Diagnostic)      {}
func (x *XML) TestFinished(seq int, out types.TestOutcome) {}

func (x *XML) Summary(stats types.RunStats, outcomes []types.TestOutcome) {
	executed := make(map[string]types.TestOutcome, len(outcomes))
	for _, out := range outcomes {
		executed[out.Name] = out
	}

	doc := xmlTestsuite{
		Name:     x.suiteName,
		Tests:    stats.Registered,
		Errors:   stats.Failed,
		Failures: stats.Failed,
		Skip:     stats.Skipped(),
	}
	for _, name := range x.names {
		out, ok := executed[name]
		tc := xmlTestcase{
			Name: name,
			Time: fmt.Sprintf("%.2f", out.Duration.Seconds()),
		}
		switch {
		case ok && out.Status.Failed():
			tc.Failure = &struct{}{}
		case !ok:
			tc.Skipped = &struct{}{}
		}
		doc.Cases = append(doc.Cases, tc)
	}

	if _, err := io.WriteString(x.w, xml.Header); err != nil {
		x.log.Error("Failed to write XML report", "err", err)
		return
	}
	enc := xml.NewEncoder(x.w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		x.log.Error("Failed to write XML report", "err", err)
		return
	}
	if _, err := io.WriteString(x.w, "\n"); err != nil {
		x.log.Error("Failed to write XML report", "err", err)
	}
}
