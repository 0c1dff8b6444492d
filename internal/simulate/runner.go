package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/okian/pmv/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const directoryPermission = 0o750

// Run plays a simulated match against cfg.BaseURL and verifies the stats the
// server derives from it.
func Run(ctx context.Context, cfg *Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	log := logger.Get().Named("simulate")
	report := Report{StartTime: time.Now()}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Info(ctx, "starting simulated match",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("games", cfg.Games),
		logger.Int("events_per_game", cfg.Events),
		logger.Int("workers", cfg.Workers),
		logger.Float64("retry_rate", cfg.RetryRate),
		logger.Int64("seed", int64(seed)),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return report, fmt.Errorf("service health check failed: %w", err)
	}

	subs := Generate(cfg, rand.New(rand.NewPCG(seed, seed>>1)))
	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	for g := 0; g < cfg.Games; g++ {
		id, err := client.StartGame(ctx)
		if err != nil {
			return report, err
		}
		report.Games = append(report.Games, id)
	}

	var created, replayed, failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for _, s := range subs {
		eg.Go(func() error {
			gameID := report.Games[s.Game]
			ev, _, err := client.PostEvent(egCtx, s, gameID)
			if err != nil {
				failed.Add(1)
				return err
			}
			created.Add(1)
			if cfg.Verbose {
				log.Debug(egCtx, "event submitted",
					logger.Int64("event_id", ev.ID),
					logger.String("player", s.Player),
					logger.String("action", s.Action),
				)
			}
			if !s.Retry {
				return nil
			}
			again, wasReplay, err := client.PostEvent(egCtx, s, gameID)
			if err != nil {
				failed.Add(1)
				return err
			}
			if !wasReplay || again.ID != ev.ID {
				failed.Add(1)
				return fmt.Errorf("%w: retry of %s created event %d instead of replaying %d", ErrMismatch, s.Key, again.ID, ev.ID)
			}
			replayed.Add(1)
			return nil
		})
	}
	err := eg.Wait()

	report.Submitted = len(subs)
	report.Created = int(created.Load())
	report.Replayed = int(replayed.Load())
	report.Failed = int(failed.Load())
	if err != nil {
		report.Duration = time.Since(report.StartTime)
		return report, fmt.Errorf("event submission failed: %w", err)
	}

	got, err := client.Stats(ctx, report.Games)
	if err != nil {
		return report, err
	}
	want := expectedStats(subs)
	report.Players = len(got)
	report.Duration = time.Since(report.StartTime)
	if err := Verify(want, got); err != nil {
		return report, err
	}

	displayReport(ctx, log, report)
	return report, nil
}

func saveSubmissions(filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, b, 0o600); err != nil {
		return fmt.Errorf("write submissions: %w", err)
	}
	return nil
}

func displayReport(ctx context.Context, log logger.Logger, r Report) {
	var eventsPerSecond float64
	if r.Duration > 0 {
		eventsPerSecond = float64(r.Created) / r.Duration.Seconds()
	}
	log.Info(ctx, "simulation completed",
		logger.Any("games", r.Games),
		logger.Int("submitted", r.Submitted),
		logger.Int("created", r.Created),
		logger.Int("replayed", r.Replayed),
		logger.Int("failed", r.Failed),
		logger.Int("players", r.Players),
		logger.Duration("duration", r.Duration),
		logger.Float64("events_per_second", eventsPerSecond),
	)
}
