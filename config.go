package unit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-unit/flags"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Config carries the fully resolved settings for one invocation of the
// test binary. Precedence per knob: explicit CLI flag or environment
// variable, then the config file, then the flag default.
type Config struct {
	Patterns  []string // positional name patterns
	Skip      bool     // run the complement of the patterns
	List      bool     // list tests and exit
	Isolation types.IsolationMode
	Verbosity int
	TAP       bool
	ShowTime  bool
	TimerKind types.TimerKind
	Color     types.ColorMode
	NoSummary bool
	XMLPath   string
	LogDir    string
	LogLevel  string
	WorkerSeq int // sequence number carried by --worker, -1 otherwise
}

// Worker reports whether this process was spawned to run a single test.
func (c *Config) Worker() bool {
	return c.WorkerSeq > 0
}

// fileDefaults mirrors the YAML config file. Pointer fields tell absent
// keys apart from zero values.
type fileDefaults struct {
	Verbosity *int    `yaml:"verbosity"`
	Color     *string `yaml:"color"`
	Exec      *string `yaml:"exec"`
	Timer     *string `yaml:"timer"`
	Tap       *bool   `yaml:"tap"`
	XMLOutput *string `yaml:"xml_output"`
	LogDir    *string `yaml:"log_dir"`
	NoSummary *bool   `yaml:"no_summary"`
}

func loadFileDefaults(path string) (*fileDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fd fileDefaults
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fd); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fd, nil
}

// NewConfig assembles the configuration from the parsed command line
// and the optional config file.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	fd := &fileDefaults{}
	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		loaded, err := loadFileDefaults(path)
		if err != nil {
			return nil, NewUsageError("%v", err)
		}
		fd = loaded
		logger.Debug("Loaded flag defaults", "config", path)
	}

	cfg := &Config{
		Patterns:  ctx.Args().Slice(),
		Skip:      ctx.Bool(flags.Skip.Name),
		List:      ctx.Bool(flags.List.Name),
		LogLevel:  ctx.String(flags.LogLevel.Name),
		WorkerSeq: ctx.Int(flags.Worker.Name),
	}

	cfg.Isolation = types.IsolationMode(stringSetting(ctx, flags.Exec.Name, fd.Exec))
	if ctx.Bool(flags.NoExec.Name) {
		cfg.Isolation = types.IsolationNever
	}

	cfg.TimerKind = types.TimerReal
	cfg.ShowTime = ctx.Bool(flags.Time.Name)
	if timer := stringSetting(ctx, flags.Timer.Name, fd.Timer); timer != "" {
		cfg.TimerKind = types.TimerKind(timer)
		cfg.ShowTime = true
	}

	// An exact level first, then one step per -v, and quiet wins.
	cfg.Verbosity = intSetting(ctx, flags.Verbosity.Name, fd.Verbosity)
	cfg.Verbosity += ctx.Count(flags.Verbose.Name)
	if ctx.Bool(flags.Quiet.Name) {
		cfg.Verbosity = 0
	}

	cfg.Color = types.ColorMode(stringSetting(ctx, flags.Color.Name, fd.Color))
	if ctx.Bool(flags.NoColor.Name) {
		cfg.Color = types.ColorNever
	}

	cfg.TAP = boolSetting(ctx, flags.TAP.Name, fd.Tap)
	cfg.NoSummary = boolSetting(ctx, flags.NoSummary.Name, fd.NoSummary)
	cfg.XMLPath = stringSetting(ctx, flags.XMLOutput.Name, fd.XMLOutput)
	cfg.LogDir = stringSetting(ctx, flags.LogDir.Name, fd.LogDir)

	if cfg.Worker() {
		// A worker runs exactly one test in process and stays silent
		// beyond that test's own lines, whatever the inherited flags or
		// environment say. The parent owns the report files.
		cfg.Isolation = types.IsolationNever
		cfg.NoSummary = true
		cfg.List = false
		cfg.XMLPath = ""
		cfg.LogDir = ""
	}

	return cfg, nil
}

// Check validates the resolved configuration.
func (c *Config) Check() error {
	if !c.Isolation.IsValid() {
		return NewUsageError("invalid --exec value %q (want 'auto', 'always' or 'never')", string(c.Isolation))
	}
	if !c.TimerKind.IsValid() {
		return NewUsageError("invalid --timer value %q (want 'real' or 'cpu')", string(c.TimerKind))
	}
	if !c.Color.IsValid() {
		return NewUsageError("invalid --color value %q (want 'auto', 'always' or 'never')", string(c.Color))
	}
	if c.Verbosity < 0 {
		return NewUsageError("verbosity cannot be negative")
	}
	if c.Worker() && len(c.Patterns) != 1 {
		return NewUsageError("--worker needs exactly one test name")
	}
	return nil
}

// stringSetting resolves one knob: the config file default applies only
// when the flag was not set explicitly (command line or environment).
func stringSetting(ctx *cli.Context, name string, def *string) string {
	if !ctx.IsSet(name) && def != nil {
		return *def
	}
	return ctx.String(name)
}

func boolSetting(ctx *cli.Context, name string, def *bool) bool {
	if !ctx.IsSet(name) && def != nil {
		return *def
	}
	return ctx.Bool(name)
}

func intSetting(ctx *cli.Context, name string, def *int) int {
	if !ctx.IsSet(name) && def != nil {
		return *def
	}
	return ctx.Int(name)
}
