// Package watch re-checks a bibliography whenever it changes on disk
// and on a fixed schedule, exposing Prometheus metrics about the runs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// CheckFunc runs one bibliography check. trigger identifies what
// caused the run (startup, file, schedule).
type CheckFunc func(ctx context.Context, trigger string) (Outcome, error)

// Outcome carries the counts a check produced, for metrics.
type Outcome struct {
	Entries  int
	Errors   int
	Warnings int
	Infos    int
}

// Service ties the file watcher, the scheduler and the metrics
// endpoint together.
type Service struct {
	path     string
	interval time.Duration
	debounce time.Duration
	listen   string
	check    CheckFunc
	recorder *Recorder
	logger   *slog.Logger
}

// NewService builds a watch service for the given bibliography.
// listen may be empty to disable the metrics endpoint.
func NewService(path string, interval, debounce time.Duration, listen string, check CheckFunc) *Service {
	return &Service{
		path:     path,
		interval: interval,
		debounce: debounce,
		listen:   listen,
		check:    check,
		recorder: NewRecorder(nil),
		logger:   slog.Default().With("component", "watch"),
	}
}

// Run blocks until ctx is cancelled. A check runs immediately at
// startup, then after every settled file change and on each interval
// tick. Check failures are logged, not fatal: a transient parse error
// must not kill the watcher.
func (s *Service) Run(ctx context.Context) error {
	watcher, err := NewFileWatcher(s.path, s.debounce)
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.Start(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	ticks := make(chan struct{}, 1)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("periodic-check"),
	); err != nil {
		return fmt.Errorf("failed to schedule periodic check: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Error("scheduler shutdown failed", "error", err)
		}
	}()

	var metricsSrv *http.Server
	if s.listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.recorder.Handler())
		metricsSrv = &http.Server{Addr: s.listen, Handler: mux}
		go func() {
			s.logger.Info("metrics endpoint listening", "addr", s.listen)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	s.logger.Info("watching bibliography", "path", s.path, "interval", s.interval)
	s.runCheck(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch mode stopping")
			return nil
		case <-watcher.Changed():
			s.runCheck(ctx, "file")
		case <-ticks:
			s.runCheck(ctx, "schedule")
		}
	}
}

func (s *Service) runCheck(ctx context.Context, trigger string) {
	start := time.Now()
	outcome, err := s.check(ctx, trigger)
	s.recorder.IncCheck(trigger)
	s.recorder.ObserveCheckDuration(time.Since(start))
	if err != nil {
		s.logger.Error("check failed", "trigger", trigger, "error", err)
		return
	}
	s.recorder.SetEntries(outcome.Entries)
	s.recorder.SetIssueCounts(outcome.Errors, outcome.Warnings, outcome.Infos)
	s.logger.Info("check completed",
		"trigger", trigger,
		"entries", outcome.Entries,
		"errors", outcome.Errors,
		"warnings", outcome.Warnings,
		"duration", time.Since(start).Round(time.Millisecond))
}
