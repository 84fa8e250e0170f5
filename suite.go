package unit

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"code.cloudfoundry.org/clock"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/ethereum-optimism/infra/op-unit/exitcodes"
	"github.com/ethereum-optimism/infra/op-unit/flags"
	"github.com/ethereum-optimism/infra/op-unit/logging"
	"github.com/ethereum-optimism/infra/op-unit/metrics"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/reporting"
	"github.com/ethereum-optimism/infra/op-unit/runner"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Case pairs a test name with its body, for registration via Main.
type Case struct {
	Name string
	Fn   func(*T)
}

// Option customizes a Suite.
type Option func(*Suite)

// WithSetup installs a hook that runs before every test, in the same
// process and goroutine as the test body.
func WithSetup(fn func()) Option {
	return func(s *Suite) { s.setup = fn }
}

// WithTeardown installs a hook that runs after every test, also when
// the test aborted.
func WithTeardown(fn func()) Option {
	return func(s *Suite) { s.teardown = fn }
}

// WithIsolation sets the isolation mode used when the command line does
// not choose one.
func WithIsolation(mode types.IsolationMode) Option {
	return func(s *Suite) { s.isolation = mode }
}

// WithOutput redirects the report stream (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(s *Suite) { s.out = w }
}

// WithErrOutput redirects the error stream (default os.Stderr).
func WithErrOutput(w io.Writer) Option {
	return func(s *Suite) { s.errOut = w }
}

// WithLogger replaces the engine diagnostic logger normally built from
// --log.level.
func WithLogger(l log.Logger) Option {
	return func(s *Suite) { s.log = l }
}

// WithReporter appends a custom reporter to the built-in set.
func WithReporter(r reporting.Reporter) Option {
	return func(s *Suite) { s.extra = append(s.extra, r) }
}

// WithClock injects the wall clock source (default clock.NewClock()).
func WithClock(c clock.Clock) Option {
	return func(s *Suite) { s.clock = c }
}

// Suite owns an ordered test registry and turns a command line into a
// run. Construct with NewSuite, register with Add, then hand control to
// Run or Main.
type Suite struct {
	cases     []types.TestCase
	setup     func()
	teardown  func()
	isolation types.IsolationMode
	out       io.Writer
	errOut    io.Writer
	log       log.Logger
	extra     []reporting.Reporter
	clock     clock.Clock
}

func NewSuite(opts ...Option) *Suite {
	s := &Suite{
		isolation: types.IsolationAuto,
		out:       os.Stdout,
		errOut:    os.Stderr,
		clock:     clock.NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a test case. Registration order is the execution and
// report order. Name collisions surface as usage errors when Run builds
// the registry.
func (s *Suite) Add(name string, fn func(*T)) {
	entry := func(rec types.Recorder) { fn(&T{rec: rec}) }
	s.cases = append(s.cases, types.TestCase{Name: name, Entry: entry})
}

// Run parses args (args[0] is the program name) and executes the suite.
// It returns the process exit code and never panics on user input.
func (s *Suite) Run(ctx context.Context, args []string) int {
	name := programName(args)
	app := &cli.App{
		Name:            name,
		Usage:           "run the unit tests built into this binary",
		ArgsUsage:       "[pattern...]",
		Flags:           flags.Flags,
		HideHelpCommand: true,
		HideVersion:     true,
		Writer:          s.out,
		ErrWriter:       s.errOut,
		Action:          s.run,
		OnUsageError: func(cCtx *cli.Context, err error, _ bool) error {
			return NewUsageError("%v\nTry '%s --help' for more information.", err, name)
		},
	}

	err := app.RunContext(ctx, args)
	switch {
	case err == nil:
		return exitcodes.Success
	case IsTestFailureError(err):
		return exitcodes.TestFailure
	case isWorkerAborted(err):
		return exitcodes.WorkerAborted
	default:
		fmt.Fprintf(s.errOut, "%s: %v\n", name, err)
		return exitcodes.UsageErr
	}
}

// Main runs the suite with os.Args and exits the process with the run's
// exit code.
func (s *Suite) Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := s.Run(ctx, os.Args)
	stop()
	os.Exit(code)
}

// Main builds a suite from cases and runs it with os.Args, exiting the
// process with the run's exit code. It is the one-liner for a test
// binary's main function.
func Main(cases ...Case) {
	s := NewSuite()
	for _, c := range cases {
		s.Add(c.Name, c.Fn)
	}
	s.Main()
}

func (s *Suite) run(cliCtx *cli.Context) error {
	logger := s.log
	if logger == nil {
		l, err := logging.New(cliCtx.String(flags.LogLevel.Name), s.errOut, isTerminal(s.errOut))
		if err != nil {
			return NewUsageError("%v", err)
		}
		logger = l
	}

	cfg, err := NewConfig(cliCtx, logger)
	if err != nil {
		return err
	}
	if err := cfg.Check(); err != nil {
		return err
	}

	reg, err := registry.New(s.cases)
	if err != nil {
		return NewUsageError("%v", err)
	}

	sel := registry.NewSelection(reg.Len())
	resolver := registry.NewResolver(reg, sel)
	for _, pattern := range cfg.Patterns {
		if resolver.Resolve(pattern) == 0 {
			return NewUsageError("Unrecognized unit test '%s'\nTry '%s --list' for list of unit tests.",
				pattern, cliCtx.App.Name)
		}
	}

	var xmlFile *os.File
	if cfg.XMLPath != "" {
		xmlFile, err = os.Create(cfg.XMLPath)
		if err != nil {
			metrics.RecordErrorDetails("xml_output", err)
			return NewUsageError("failed to create XML report %s: %v", cfg.XMLPath, err)
		}
		defer xmlFile.Close()
	}

	if cfg.List {
		reporting.WriteList(s.out, reg.Names())
		return nil
	}

	colorize := cfg.Color == types.ColorAlways ||
		(cfg.Color == types.ColorAuto && isTerminal(s.out))

	// The report stream, optionally teed into the per-run log files.
	// Workers inherit the teed stream through their stdout, so the sink
	// captures their output without carrying one itself.
	out := s.out
	var sink *logging.FileSink
	runID := uuid.New().String()
	if cfg.LogDir != "" {
		sink, err = logging.NewFileSink(cfg.LogDir, runID, logger)
		if err != nil {
			return NewUsageError("%v", err)
		}
		defer func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Error("Failed to close log files", "err", cerr)
			}
		}()
		out = io.MultiWriter(s.out, sink)
		logger.Info("Writing unit test logs", "dir", sink.LogDir())
	}

	var reps []reporting.Reporter
	if cfg.TAP {
		reps = append(reps, reporting.NewTAP(out, cfg.Verbosity, cfg.ShowTime))
	} else {
		reps = append(reps, reporting.NewConsole(out, reporting.ConsoleOptions{
			Verbosity: cfg.Verbosity,
			Colorize:  colorize,
			ShowTime:  cfg.ShowTime,
			NoSummary: cfg.NoSummary,
		}))
	}
	if xmlFile != nil {
		reps = append(reps, reporting.NewXML(xmlFile, cliCtx.App.Name, logger))
	}
	reps = append(reps, s.extra...)

	isolation := cfg.Isolation
	if isolation == types.IsolationAuto {
		isolation = s.isolation
	}

	firstSeq := 1
	if cfg.Worker() {
		firstSeq = cfg.WorkerSeq
	}

	r, err := runner.New(runner.Config{
		Registry:  reg,
		Selection: sel,
		Skip:      cfg.Skip,
		Isolation: isolation,
		Verbosity: cfg.Verbosity,
		Colorize:  colorize,
		TAP:       cfg.TAP,
		ShowTime:  cfg.ShowTime,
		TimerKind: cfg.TimerKind,
		Setup:     s.setup,
		Teardown:  s.teardown,
		Reporter:  reporting.NewMulti(reps...),
		FileLog:   sink,
		Output:    out,
		ErrOutput: s.errOut,
		Worker:    cfg.Worker(),
		FirstSeq:  firstSeq,
		Clock:     s.clock,
		Log:       logger,
		RunID:     runID,
	})
	if err != nil {
		return err
	}

	result, err := r.Run(cliCtx.Context)
	if err != nil {
		metrics.RecordErrorDetails("test_run", err)
		return err
	}

	if cfg.Worker() && len(result.Outcomes) == 1 &&
		result.Outcomes[0].Status == types.TestStatusAborted {
		return &workerAbortedError{}
	}
	if result.Stats.Failed > 0 {
		return NewTestFailureError(result.Stats.Failed, result.Stats.Executed)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func programName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "unit"
	}
	return filepath.Base(args[0])
}
