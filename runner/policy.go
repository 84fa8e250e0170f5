package runner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// debuggerProcs are parent process names indicating the suite runs
// under a debugger or tracer, where per-test child processes are a
// nuisance to step through.
var debuggerProcs = map[string]bool{
	"dlv":         true,
	"gdb":         true,
	"lldb":        true,
	"lldb-server": true,
	"strace":      true,
	"ltrace":      true,
}

// ResolveIsolation turns the configured isolation mode into the
// concrete choice for this run. Auto prefers isolation but backs off
// for single-test runs, attached debuggers and race-enabled builds.
func ResolveIsolation(mode types.IsolationMode, planned int, logger log.Logger) types.IsolationMode {
	switch mode {
	case types.IsolationAlways, types.IsolationNever:
		return mode
	}
	if planned <= 1 {
		return types.IsolationNever
	}
	if debuggerAttached() {
		logger.Debug("Debugger detected, running unit tests in process")
		return types.IsolationNever
	}
	if raceEnabled {
		logger.Debug("Race detector enabled, running unit tests in process")
		return types.IsolationNever
	}
	return types.IsolationAlways
}

func debuggerAttached() bool {
	return tracerPID() != 0 || parentIsDebugger()
}

// tracerPID reads the tracing process from /proc/self/status. Zero
// means no tracer, including on systems without procfs.
func tracerPID() int {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	return parseTracerPID(string(data))
}

func parseTracerPID(status string) int {
	for _, line := range strings.Split(status, "\n") {
		rest, ok := strings.CutPrefix(line, "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0
		}
		return pid
	}
	return 0
}

// parentIsDebugger covers platforms without procfs by checking the
// name of the parent process.
func parentIsDebugger() bool {
	parent, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return false
	}
	name, err := parent.Name()
	if err != nil {
		return false
	}
	return debuggerProcs[strings.ToLower(filepath.Base(name))]
}
