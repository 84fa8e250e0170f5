// Package logging builds the engine's diagnostic logger and mirrors
// test output into per-run log files. Diagnostic logs go to the error
// stream so they never interleave with the report on stdout.
package logging

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"
)

// New creates a terminal-format logger at the named level writing to w.
func New(level string, w io.Writer, color bool) (log.Logger, error) {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, lvl, color)), nil
}
