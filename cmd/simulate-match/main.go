package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/pmv/internal/simulate"
)

// Default configuration constants.
const (
	defaultPlayers   = 12
	defaultGames     = 3
	defaultEvents    = 500
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultRetryRate = 0.1
	defaultTimeout   = 30 * time.Second
	defaultRunLimit  = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL of the service")
		players   = flag.Int("players", defaultPlayers, "Players on the roster")
		games     = flag.Int("games", defaultGames, "Sessions to start")
		events    = flag.Int("events", defaultEvents, "Events per session")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent submitters")
		retryRate = flag.Float64("retry-rate", defaultRetryRate, "Share of submissions resent with the same Idempotency-Key")
		seed      = flag.Uint64("seed", 0, "Seed for the action mix (0 uses the clock)")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output    = flag.String("output", "", "Write the generated submissions as JSON")
		logFile   = flag.String("log", "", "Mirror log output to this file")
		verbose   = flag.Bool("verbose", false, "Log every submission")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:    *baseURL,
		Players:    *players,
		Games:      *games,
		Events:     *events,
		Workers:    *workers,
		RetryRate:  *retryRate,
		Seed:       *seed,
		Timeout:    *timeout,
		OutputFile: *output,
		Verbose:    *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		closeLog()
		os.Exit(1)
	}
}
