package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"code.cloudfoundry.org/clock"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-unit/logging"
	"github.com/ethereum-optimism/infra/op-unit/metrics"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/reporting"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Backend executes one test and produces its outcome. The returned
// error is an engine failure (spawn trouble, canceled run); test
// failures are carried inside the outcome.
type Backend interface {
	Run(ctx context.Context, seq int, tc types.TestCase) (types.TestOutcome, error)
}

// Result captures a completed run.
type Result struct {
	Stats    types.RunStats
	Outcomes []types.TestOutcome
}

// Config holds configuration for creating a new runner.
type Config struct {
	Registry  *registry.Registry
	Selection *registry.Selection // nil selects nothing, which runs everything unless Skip is set
	Skip      bool                // run the complement of the selection
	Isolation types.IsolationMode
	Verbosity int
	Colorize  bool
	TAP       bool
	ShowTime  bool
	TimerKind types.TimerKind
	Setup     func() // runs before every test, in the process executing it
	Teardown  func() // runs after every test, same process as Setup
	Reporter  reporting.Reporter
	FileLog   *logging.FileSink // optional per-test log splitting
	Output    io.Writer         // report stream, also inherited by workers
	ErrOutput io.Writer
	Worker    bool // this process is a single-test child
	FirstSeq  int  // sequence number of the first executed test
	Clock     clock.Clock
	Log       log.Logger
	RunID     string
}

// Runner walks the effective test list in registration order, feeding
// one test at a time to the chosen backend and aggregating outcomes.
type Runner struct {
	reg       *registry.Registry
	effective []int
	backend   Backend
	mode      types.IsolationMode
	rep       reporting.Reporter
	fileLog   *logging.FileSink
	worker    bool
	firstSeq  int
	clock     clock.Clock
	log       log.Logger
	runID     string
	tracer    trace.Tracer
}

// New validates cfg and builds the runner, resolving the isolation
// mode for this run up front.
func New(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = reporting.NewMulti()
	}
	if cfg.Selection == nil {
		cfg.Selection = registry.NewSelection(cfg.Registry.Len())
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}
	if !cfg.TimerKind.IsValid() {
		cfg.TimerKind = types.TimerReal
	}
	if cfg.FirstSeq <= 0 {
		cfg.FirstSeq = 1
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}

	effective := cfg.Selection.Effective(cfg.Skip)
	mode := ResolveIsolation(cfg.Isolation, len(effective), cfg.Log)
	timer := NewTimer(cfg.TimerKind, cfg.Clock)

	var backend Backend
	if mode == types.IsolationAlways {
		sub, err := NewSubprocess(cfg.Reporter, timer, WorkerOptions{
			Verbosity: cfg.Verbosity,
			Colorize:  cfg.Colorize,
			TAP:       cfg.TAP,
			ShowTime:  cfg.ShowTime,
			TimerKind: cfg.TimerKind,
		}, cfg.Output, cfg.ErrOutput, cfg.Log)
		if err != nil {
			return nil, err
		}
		backend = sub
	} else {
		backend = NewInline(cfg.Reporter, timer, cfg.Setup, cfg.Teardown)
	}

	cfg.Log.Debug("New unit test runner", "run_id", cfg.RunID,
		"planned", len(effective), "isolation", mode, "timer", cfg.TimerKind)

	return &Runner{
		reg:       cfg.Registry,
		effective: effective,
		backend:   backend,
		mode:      mode,
		rep:       cfg.Reporter,
		fileLog:   cfg.FileLog,
		worker:    cfg.Worker,
		firstSeq:  cfg.FirstSeq,
		clock:     cfg.Clock,
		log:       cfg.Log,
		runID:     cfg.RunID,
		tracer:    otel.Tracer("test runner"),
	}, nil
}

// IsolationMode reports the mode resolved for this run.
func (r *Runner) IsolationMode() types.IsolationMode {
	return r.mode
}

// Run executes the effective test list in order. It stops early only
// when ctx is canceled or a backend reports an engine failure; test
// failures never interrupt the walk.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "unit test run")
	defer span.End()

	start := r.clock.Now()
	r.log.Debug("Running unit tests", "run_id", r.runID)

	if !r.worker {
		r.rep.RunStarted(types.RunPlan{
			RunID:   r.runID,
			Names:   r.reg.Names(),
			Planned: len(r.effective),
		})
	}

	stats := types.RunStats{RunID: r.runID, Registered: r.reg.Len()}
	outcomes := make([]types.TestOutcome, 0, len(r.effective))

	seq := r.firstSeq
	for _, idx := range r.effective {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tc := r.reg.Case(idx)

		testCtx, testSpan := r.tracer.Start(ctx, fmt.Sprintf("test %s", tc.Name))
		if r.fileLog != nil {
			r.fileLog.BeginTest(seq, tc.Name)
		}
		out, err := r.backend.Run(testCtx, seq, tc)
		if r.fileLog != nil {
			r.fileLog.EndTest(out.Status)
		}
		testSpan.End()
		if err != nil {
			return nil, fmt.Errorf("running test %s: %w", tc.Name, err)
		}

		outcomes = append(outcomes, out)
		stats.Executed++
		if out.Status.Failed() {
			stats.Failed++
		}
		if !r.worker {
			metrics.RecordTest(r.runID, out.Name, out.Status, out.Duration)
		}
		seq++
	}

	stats.Duration = r.clock.Since(start)

	if !r.worker {
		metrics.RecordRun(r.runID, stats)
		r.rep.Summary(stats, outcomes)
		if r.fileLog != nil {
			if err := r.fileLog.LogSummary(stats); err != nil {
				r.log.Error("Failed to write run summary", "err", err)
			}
		}
	}
	r.log.Debug("Unit test run complete", "run_id", r.runID,
		"run", stats.Executed, "failed", stats.Failed, "duration", stats.Duration)

	return &Result{Stats: stats, Outcomes: outcomes}, nil
}
