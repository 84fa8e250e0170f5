package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// testLineWidth is the column the result marker aligns to at
// verbosity 1 and 2. The test line is padded when it is opened, so
// markers line up no matter which event closes the line.
const testLineWidth = 48

// ConsoleOptions configures the console reporter.
type ConsoleOptions struct {
	Verbosity int  // 0 silent, 1 test lines, 2 plus failures, 3 everything
	Colorize  bool // ANSI colors on markers, prefixes and headers
	ShowTime  bool // append test durations
	NoSummary bool // suppress the trailing summary block
}

// Console renders the classic line-per-test console format.
type Console struct {
	w    io.Writer
	opts ConsoleOptions

	// presentation state for the test currently streaming
	lineOpen   bool // "Test <name>... " printed, result marker pending
	resultDone bool // result marker printed (possibly early, on first failure)
	curCase    string
	caseShown  bool
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	return &Console{w: w, opts: opts}
}

func (c *Console) RunStarted(types.RunPlan) {}

func (c *Console) TestStarted(seq int, tc types.TestCase) {
	c.lineOpen = false
	c.resultDone = false
	c.curCase = ""
	c.caseShown = false

	switch {
	case c.opts.Verbosity >= 3:
		fmt.Fprintf(c.w, "%s\n", c.paint(text.Colors{text.Bold}, fmt.Sprintf("Test %s:", tc.Name)))
	case c.opts.Verbosity >= 1:
		head := fmt.Sprintf("Test %s... ", tc.Name)
		fmt.Fprint(c.w, c.paint(text.Colors{text.Bold}, head))
		if pad := testLineWidth - len(head); pad > 0 {
			fmt.Fprint(c.w, strings.Repeat(" ", pad))
		}
		c.lineOpen = true
	}
}

func (c *Console) CaseStarted(seq int, name string) {
	c.curCase = name
	c.caseShown = false
	if name != "" && c.opts.Verbosity >= 3 {
		c.printCaseHeader()
	}
}

func (c *Console) Condition(seq int, ev types.ConditionEvent) {
	v := c.opts.Verbosity
	if v < 1 || (ev.Passed && v < 3) {
		return
	}
	if !ev.Passed {
		c.markFailed()
		if v < 2 {
			return
		}
	}

	c.maybeCaseHeader()
	c.indent(c.conditionDepth())
	verdict := c.paint(text.Colors{text.FgGreen}, "ok")
	if !ev.Passed {
		verdict = c.paint(text.Colors{text.FgRed}, "failed")
	}
	if ev.Loc.IsZero() {
		fmt.Fprintf(c.w, "Check %s... %s\n", ev.Desc, verdict)
	} else {
		fmt.Fprintf(c.w, "%s: Check %s... %s\n", ev.Loc, ev.Desc, verdict)
	}
}

func (c *Console) Diagnostic(seq int, d types.Diagnostic) {
	if c.opts.Verbosity < 2 {
		return
	}
	for _, line := range d.Lines {
		c.indent(c.conditionDepth() + 1)
		fmt.Fprintln(c.w, line)
	}
}

func (c *Console) TestFinished(seq int, out types.TestOutcome) {
	v := c.opts.Verbosity
	defer func() {
		c.lineOpen = false
		c.resultDone = false
	}()
	if v < 1 {
		return
	}

	if v >= 3 {
		c.indent(1)
		switch out.Status {
		case types.TestStatusPass:
			fmt.Fprintf(c.w, "%sAll conditions have passed.\n", c.paint(green, "SUCCESS: "))
			if c.opts.ShowTime {
				c.indent(1)
				fmt.Fprintf(c.w, "Duration: %.6f secs\n", out.Duration.Seconds())
			}
		case types.TestStatusAborted:
			fmt.Fprintf(c.w, "%sAborted.\n", c.paint(red, "FAILED: "))
		case types.TestStatusCrashed:
			fmt.Fprintf(c.w, "%s%s\n", c.paint(red, "ERROR: "), out.Diagnostic)
		default:
			plural, verb := "s", "have"
			if out.Failures == 1 {
				plural, verb = "", "has"
			}
			fmt.Fprintf(c.w, "%s%d condition%s %s failed.\n", c.paint(red, "FAILED: "), out.Failures, plural, verb)
		}
		fmt.Fprintln(c.w)
		return
	}

	switch out.Status {
	case types.TestStatusPass:
		if !c.lineOpen {
			return
		}
		fmt.Fprintf(c.w, "[ %s ]", c.paint(green, "OK"))
		if c.opts.ShowTime {
			fmt.Fprintf(c.w, "  %.6f secs", out.Duration.Seconds())
		}
		fmt.Fprintln(c.w)
	case types.TestStatusCrashed:
		// The dead child opened the test line on the shared stream but
		// could not close it. Finish it here, then surface the cause.
		c.markFailed()
		if v >= 2 && out.Diagnostic != "" {
			c.indent(1)
			fmt.Fprintln(c.w, out.Diagnostic)
		}
	default:
		c.markFailed()
	}
}

func (c *Console) Summary(stats types.RunStats, outcomes []types.TestOutcome) {
	if c.opts.NoSummary {
		return
	}
	v := c.opts.Verbosity
	if v >= 3 {
		fmt.Fprintf(c.w, "%s\n", c.paint(text.Colors{text.Bold}, "Summary:"))
		t := table.NewWriter()
		t.SetOutputMirror(c.w)
		t.AppendRows([]table.Row{
			{"Count of all unit tests", stats.Registered},
			{"Count of run unit tests", stats.Executed},
			{"Count of failed unit tests", stats.Failed},
			{"Count of skipped unit tests", stats.Skipped()},
		})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
		})
		t.Render()
	}
	if v >= 1 {
		if stats.Failed == 0 {
			fmt.Fprintf(c.w, "%sAll unit tests have passed.\n", c.paint(green, "SUCCESS: "))
		} else {
			verb := "have"
			if stats.Failed == 1 {
				verb = "has"
			}
			fmt.Fprintf(c.w, "%s%d of %d unit tests %s failed.\n",
				c.paint(red, "FAILED: "), stats.Failed, stats.Executed, verb)
		}
	}
}

var (
	green = text.Colors{text.FgHiGreen, text.Bold}
	red   = text.Colors{text.FgHiRed, text.Bold}
)

// markFailed closes the open test line with the failure marker. It is
// called at the first displayed failure so detail lines follow it, and
// again from TestFinished as a no-op backstop.
func (c *Console) markFailed() {
	if c.opts.Verbosity >= 3 || c.resultDone {
		return
	}
	fmt.Fprintf(c.w, "[ %s ]\n", c.paint(red, "FAILED"))
	c.lineOpen = false
	c.resultDone = true
}

func (c *Console) maybeCaseHeader() {
	if c.curCase == "" || c.caseShown {
		return
	}
	c.printCaseHeader()
}

func (c *Console) printCaseHeader() {
	c.indent(1)
	fmt.Fprintf(c.w, "%s\n", c.paint(text.Colors{text.Bold}, fmt.Sprintf("Case %s:", c.curCase)))
	c.caseShown = true
}

func (c *Console) conditionDepth() int {
	if c.curCase != "" {
		return 2
	}
	return 1
}

func (c *Console) indent(depth int) {
	fmt.Fprint(c.w, strings.Repeat("  ", depth))
}

func (c *Console) paint(colors text.Colors, s string) string {
	if !c.opts.Colorize {
		return s
	}
	return colors.Sprint(s)
}
