// Package flags defines the command line surface of a test binary.
package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "OPUNIT"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Skip = &cli.BoolFlag{
		Name:    "skip",
		Aliases: []string{"s"},
		Usage:   "Run every registered unit test except the named ones",
		EnvVars: prefixEnvVars("SKIP"),
	}
	Exec = &cli.StringFlag{
		Name:    "exec",
		Value:   "auto",
		Usage:   "Run each unit test in a subprocess ('always', 'never' or 'auto')",
		EnvVars: prefixEnvVars("EXEC"),
	}
	NoExec = &cli.BoolFlag{
		Name:    "no-exec",
		Aliases: []string{"E"},
		Usage:   "Same as --exec=never",
		EnvVars: prefixEnvVars("NO_EXEC"),
	}
	Time = &cli.BoolFlag{
		Name:    "time",
		Aliases: []string{"t"},
		Usage:   "Display the duration of each unit test",
		EnvVars: prefixEnvVars("TIME"),
	}
	Timer = &cli.StringFlag{
		Name:    "timer",
		Usage:   "Duration source, 'real' or 'cpu'; implies --time",
		EnvVars: prefixEnvVars("TIMER"),
	}
	TAP = &cli.BoolFlag{
		Name:    "tap",
		Usage:   "Produce TAP-compliant output",
		EnvVars: prefixEnvVars("TAP"),
	}
	XMLOutput = &cli.StringFlag{
		Name:    "xml-output",
		Aliases: []string{"x"},
		Usage:   "Write a JUnit XML report into the given file",
		EnvVars: prefixEnvVars("XML_OUTPUT"),
	}
	List = &cli.BoolFlag{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List all unit tests and exit",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Make the output more verbose, may be repeated",
	}
	Verbosity = &cli.IntFlag{
		Name:    "verbosity",
		Value:   2,
		Usage:   "Set the verbosity level exactly (0-3)",
		EnvVars: prefixEnvVars("VERBOSITY"),
	}
	Quiet = &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Same as --verbosity=0",
		EnvVars: prefixEnvVars("QUIET"),
	}
	Color = &cli.StringFlag{
		Name:    "color",
		Value:   "auto",
		Usage:   "Colorize the console output ('always', 'never' or 'auto')",
		EnvVars: prefixEnvVars("COLOR"),
	}
	NoColor = &cli.BoolFlag{
		Name:    "no-color",
		Usage:   "Same as --color=never",
		EnvVars: prefixEnvVars("NO_COLOR"),
	}
	NoSummary = &cli.BoolFlag{
		Name:    "no-summary",
		Usage:   "Suppress the summary printed at the end of the run",
		EnvVars: prefixEnvVars("NO_SUMMARY"),
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Usage:   "Load flag defaults from a YAML file",
		EnvVars: prefixEnvVars("CONFIG"),
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Usage:   "Mirror the report into per-run log files under the given directory",
		EnvVars: prefixEnvVars("LOG_DIR"),
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		Usage:   "The lowest engine log level that will be output",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
	// Worker is set by the parent process when it spawns a child to run
	// a single unit test. The value is the test's sequence number.
	Worker = &cli.IntFlag{
		Name:   "worker",
		Value:  -1,
		Hidden: true,
	}
)

var selectionFlags = []cli.Flag{
	Skip,
	Exec,
	NoExec,
	List,
}

var outputFlags = []cli.Flag{
	Time,
	Timer,
	TAP,
	XMLOutput,
	Verbose,
	Verbosity,
	Quiet,
	Color,
	NoColor,
	NoSummary,
}

var configFlags = []cli.Flag{
	ConfigFile,
	LogDir,
	LogLevel,
}

var internalFlags = []cli.Flag{
	Worker,
}

var Flags []cli.Flag

func init() {
	Flags = append(Flags, selectionFlags...)
	Flags = append(Flags, outputFlags...)
	Flags = append(Flags, configFlags...)
	Flags = append(Flags, internalFlags...)
}
