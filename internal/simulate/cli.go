package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/pmv/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initialises the logger, mirroring output to logFile when set.
// The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closeFn = func() { _ = f.Close() }
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`PMV Match Simulator
===================

Plays a synthetic match against a running tracker and verifies /stats.

Usage:
  go run ./cmd/simulate-match [options]

Options:
  -url string        Base URL of the service (default "http://localhost:8080")
  -players int       Players on the roster (default 12)
  -games int         Sessions to start (default 3)
  -events int        Events per session (default 500)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -retry-rate float  Share of submissions resent with the same key (default 0.1)
  -seed uint         Seed for the action mix (default: clock)
  -timeout duration  HTTP request timeout (default 30s)
  -output string     Write the generated submissions as JSON
  -log string        Mirror log output to this file
  -verbose           Log every submission
  -help              Show this help message

Examples:
  go run ./cmd/simulate-match -games 5 -events 2000 -workers 16
  go run ./cmd/simulate-match -seed 42 -output match.json
`)
}
