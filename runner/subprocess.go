package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sys/unix"

	"github.com/ethereum-optimism/infra/op-unit/exitcodes"
	"github.com/ethereum-optimism/infra/op-unit/reporting"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// WorkerOptions carries the parent settings a worker child must
// reproduce so the two processes interleave coherently on the shared
// output stream.
type WorkerOptions struct {
	Verbosity int
	Colorize  bool
	TAP       bool
	ShowTime  bool
	TimerKind types.TimerKind
}

// Subprocess executes each test in a fresh copy of the test binary.
// The child re-runs the program narrowed to a single test by a hidden
// flag, so a crash takes down the child alone. The child renders its
// own per-test output; the parent only reports tests whose child died
// before it could.
type Subprocess struct {
	rep        reporting.Reporter
	timer      Timer
	opts       WorkerOptions
	out        io.Writer
	errOut     io.Writer
	executable string
	cmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd
	log        log.Logger
}

// NewSubprocess creates the isolating backend. It resolves the running
// executable once; workers are spawned from that path.
func NewSubprocess(rep reporting.Reporter, timer Timer, opts WorkerOptions, out, errOut io.Writer, logger log.Logger) (*Subprocess, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate the test executable: %w", err)
	}
	return &Subprocess{
		rep:        rep,
		timer:      timer,
		opts:       opts,
		out:        out,
		errOut:     errOut,
		executable: exe,
		cmdBuilder: func(ctx context.Context, name string, arg ...string) *exec.Cmd {
			return exec.CommandContext(ctx, name, arg...)
		},
		log: logger,
	}, nil
}

func (b *Subprocess) Run(ctx context.Context, seq int, tc types.TestCase) (types.TestOutcome, error) {
	b.log.Debug("Spawning unit test worker", "test", tc.Name, "seq", seq)

	cmd := b.cmdBuilder(ctx, b.executable, b.workerArgs(seq, tc.Name)...)
	cmd.Stdout = b.out
	cmd.Stderr = b.errOut

	stop := b.timer.Start()
	runErr := cmd.Run()
	elapsed := stop()

	if ctx.Err() != nil {
		return types.TestOutcome{}, ctx.Err()
	}

	out := types.TestOutcome{Seq: seq, Name: tc.Name, Duration: elapsed}
	out.Status, out.Diagnostic = classifyWorkerExit(runErr)
	if out.Status == types.TestStatusCrashed {
		b.rep.TestFinished(seq, out)
	}
	return out, nil
}

// workerArgs builds the child command line: the hidden worker flag,
// the parent's presentation settings, and the one test to run.
func (b *Subprocess) workerArgs(seq int, name string) []string {
	args := []string{
		fmt.Sprintf("--worker=%d", seq),
		"--no-exec",
		"--no-summary",
		fmt.Sprintf("--verbosity=%d", b.opts.Verbosity),
	}
	if b.opts.Colorize {
		args = append(args, "--color=always")
	} else {
		args = append(args, "--color=never")
	}
	if b.opts.TAP {
		args = append(args, "--tap")
	}
	if b.opts.ShowTime {
		args = append(args, "--time")
		if b.opts.TimerKind == types.TimerCPU {
			args = append(args, "--timer=cpu")
		}
	}
	return append(args, "--", name)
}

// classifyWorkerExit maps the result of waiting on a worker to a test
// status. Exit 0 and 1 are the child's own verdicts, the dedicated
// abort code marks a fatal assertion, and anything else means the
// child died in a way it never chose.
func classifyWorkerExit(runErr error) (types.TestStatus, string) {
	if runErr == nil {
		return types.TestStatusPass, ""
	}
	exitErr := &exec.ExitError{}
	if !errors.As(runErr, &exitErr) {
		return types.TestStatusCrashed, fmt.Sprintf("Cannot start the unit test subprocess. %v", runErr)
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return types.TestStatusCrashed, fmt.Sprintf("Test interrupted by %s.", signalName(ws.Signal()))
	}
	switch code := exitErr.ExitCode(); code {
	case exitcodes.TestFailure:
		return types.TestStatusFail, ""
	case exitcodes.WorkerAborted:
		return types.TestStatusAborted, "Aborted."
	default:
		return types.TestStatusCrashed, fmt.Sprintf("Unexpected exit code [%d]", code)
	}
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(sig))
}
