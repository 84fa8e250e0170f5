package unit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-unit/flags"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// parseConfig runs the real flag set over args and assembles the Config
// the way Suite.run does.
func parseConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var cfg *Config
	var cfgErr error
	app := &cli.App{
		Name:  "demo",
		Flags: flags.Flags,
		Action: func(ctx *cli.Context) error {
			cfg, cfgErr = NewConfig(ctx, log.New())
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"demo"}, args...)))
	return cfg, cfgErr
}

func mustParseConfig(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg, err := parseConfig(t, args...)
	require.NoError(t, err)
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := mustParseConfig(t)

	assert.Empty(t, cfg.Patterns)
	assert.False(t, cfg.Skip)
	assert.False(t, cfg.List)
	assert.Equal(t, types.IsolationAuto, cfg.Isolation)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.False(t, cfg.TAP)
	assert.False(t, cfg.ShowTime)
	assert.Equal(t, types.TimerReal, cfg.TimerKind)
	assert.Equal(t, types.ColorAuto, cfg.Color)
	assert.False(t, cfg.NoSummary)
	assert.Empty(t, cfg.XMLPath)
	assert.Empty(t, cfg.LogDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Worker())
	assert.NoError(t, cfg.Check())
}

func TestConfigPatterns(t *testing.T) {
	cfg := mustParseConfig(t, "alpha", "beta*")
	assert.Equal(t, []string{"alpha", "beta*"}, cfg.Patterns)

	cfg = mustParseConfig(t, "--skip", "alpha")
	assert.True(t, cfg.Skip)
	assert.Equal(t, []string{"alpha"}, cfg.Patterns)
}

func TestConfigVerbosity(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"default", nil, 2},
		{"one v", []string{"-v"}, 3},
		{"two v", []string{"-v", "-v"}, 4},
		{"exact", []string{"--verbosity=0"}, 0},
		{"exact plus v", []string{"--verbosity=1", "-v"}, 2},
		{"quiet", []string{"-q"}, 0},
		{"quiet beats v", []string{"-v", "-q"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParseConfig(t, tt.args...).Verbosity)
		})
	}
}

func TestConfigTimerImpliesTime(t *testing.T) {
	cfg := mustParseConfig(t, "--time")
	assert.True(t, cfg.ShowTime)
	assert.Equal(t, types.TimerReal, cfg.TimerKind)

	cfg = mustParseConfig(t, "--timer=cpu")
	assert.True(t, cfg.ShowTime)
	assert.Equal(t, types.TimerCPU, cfg.TimerKind)

	cfg = mustParseConfig(t, "--timer=real")
	assert.True(t, cfg.ShowTime)
	assert.Equal(t, types.TimerReal, cfg.TimerKind)
}

func TestConfigIsolation(t *testing.T) {
	assert.Equal(t, types.IsolationNever, mustParseConfig(t, "--no-exec").Isolation)
	assert.Equal(t, types.IsolationNever, mustParseConfig(t, "-E").Isolation)
	assert.Equal(t, types.IsolationAlways, mustParseConfig(t, "--exec=always").Isolation)
	assert.Equal(t, types.IsolationNever, mustParseConfig(t, "--exec=never").Isolation)
}

func TestConfigColor(t *testing.T) {
	assert.Equal(t, types.ColorAlways, mustParseConfig(t, "--color=always").Color)
	assert.Equal(t, types.ColorNever, mustParseConfig(t, "--no-color").Color)
	assert.Equal(t, types.ColorNever, mustParseConfig(t, "--color=always", "--no-color").Color)
}

func TestConfigWorkerOverrides(t *testing.T) {
	cfg := mustParseConfig(t,
		"--worker=7", "--exec=always", "--xml-output=report.xml", "--log-dir=logs", "--list",
		"--", "alpha")

	assert.True(t, cfg.Worker())
	assert.Equal(t, 7, cfg.WorkerSeq)
	assert.Equal(t, []string{"alpha"}, cfg.Patterns)
	assert.Equal(t, types.IsolationNever, cfg.Isolation)
	assert.True(t, cfg.NoSummary)
	assert.False(t, cfg.List)
	assert.Empty(t, cfg.XMLPath, "a worker never writes the report files")
	assert.Empty(t, cfg.LogDir)
	assert.NoError(t, cfg.Check())
}

func TestConfigWorkerNeedsOneName(t *testing.T) {
	err := mustParseConfig(t, "--worker=3").Check()
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "--worker needs exactly one test name")

	err = mustParseConfig(t, "--worker=3", "--", "a", "b").Check()
	require.Error(t, err)
}

func TestConfigCheckRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"exec", []string{"--exec=sometimes"}, `invalid --exec value "sometimes"`},
		{"timer", []string{"--timer=lunar"}, `invalid --timer value "lunar"`},
		{"color", []string{"--color=pink"}, `invalid --color value "pink"`},
		{"verbosity", []string{"--verbosity=-1"}, "verbosity cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustParseConfig(t, tt.args...).Check()
			require.Error(t, err)
			assert.True(t, IsUsageError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opunit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfigFileDefaults(t *testing.T) {
	path := writeConfigFile(t, `
verbosity: 3
tap: true
exec: never
timer: cpu
color: never
xml_output: from-file.xml
log_dir: from-file-logs
no_summary: true
`)

	cfg := mustParseConfig(t, "--config="+path)
	assert.Equal(t, 3, cfg.Verbosity)
	assert.True(t, cfg.TAP)
	assert.Equal(t, types.IsolationNever, cfg.Isolation)
	assert.Equal(t, types.TimerCPU, cfg.TimerKind)
	assert.True(t, cfg.ShowTime, "a timer choice in the file implies timing")
	assert.Equal(t, types.ColorNever, cfg.Color)
	assert.Equal(t, "from-file.xml", cfg.XMLPath)
	assert.Equal(t, "from-file-logs", cfg.LogDir)
	assert.True(t, cfg.NoSummary)
	assert.NoError(t, cfg.Check())
}

func TestConfigFileYieldsToCommandLine(t *testing.T) {
	path := writeConfigFile(t, "verbosity: 3\nexec: never\n")

	cfg := mustParseConfig(t, "--config="+path, "--verbosity=1", "--exec=always")
	assert.Equal(t, 1, cfg.Verbosity)
	assert.Equal(t, types.IsolationAlways, cfg.Isolation)
}

func TestConfigFileVerbosityStacksWithV(t *testing.T) {
	path := writeConfigFile(t, "verbosity: 3\n")

	cfg := mustParseConfig(t, "--config="+path, "-v")
	assert.Equal(t, 4, cfg.Verbosity)
}

func TestConfigFileUnknownKey(t *testing.T) {
	path := writeConfigFile(t, "bogus: 1\n")

	_, err := parseConfig(t, "--config="+path)
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfigFileMissing(t *testing.T) {
	_, err := parseConfig(t, "--config="+filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigFileEmpty(t *testing.T) {
	path := writeConfigFile(t, "")

	cfg := mustParseConfig(t, "--config="+path)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.Equal(t, types.IsolationAuto, cfg.Isolation)
}
