// Package simulate drives a running tracker over HTTP with a synthetic match
// and checks that the served stats agree with the submitted events.
package simulate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for a simulated match.
type Config struct {
	BaseURL    string        // Base URL of the service
	Players    int           // Distinct players on the roster
	Games      int           // Sessions to start
	Events     int           // Events per session
	Workers    int           // Concurrent submitters
	RetryRate  float64       // Share of submissions resent with the same Idempotency-Key
	Seed       uint64        // Seed for the action mix; 0 picks one from the clock
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON dump of the submissions
	Verbose    bool          // Log every submission
}

// Validate checks the numeric bounds of c.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Players <= 0:
		return fmt.Errorf("%w: players must be positive", ErrInvalidConfig)
	case c.Games <= 0:
		return fmt.Errorf("%w: games must be positive", ErrInvalidConfig)
	case c.Events <= 0:
		return fmt.Errorf("%w: events must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.RetryRate < 0 || c.RetryRate > 1:
		return fmt.Errorf("%w: retry rate must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// Submission is one generated event.
type Submission struct {
	Key    string `json:"idempotency_key"`
	Game   int    `json:"game"`
	Player string `json:"player"`
	Action string `json:"action"`
	Retry  bool   `json:"retry"`
}

// Report summarises a run.
type Report struct {
	Games     []int64
	Submitted int
	Created   int
	Replayed  int
	Failed    int
	Players   int
	StartTime time.Time
	Duration  time.Duration
}
