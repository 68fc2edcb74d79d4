package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mw_harvester/config"
	"mw_harvester/services"
)

// Runner performs one complete harvest.
type Runner interface {
	Run(ctx context.Context, maxPages int) (*services.ExportResult, error)
}

type Scheduler struct {
	cfg      config.SchedulerConfig
	runner   Runner
	maxPages int
	logger   *zap.Logger
	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(cfg config.SchedulerConfig, runner Runner, maxPages int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:      cfg,
		runner:   runner,
		maxPages: maxPages,
		logger:   logger.With(zap.String("component", "scheduler")),
		cron:     cron.New(),
		stopCh:   make(chan struct{}),
	}
}

// Start registers the configured schedule. Cron takes precedence over the interval.
func (s *Scheduler) Start(ctx context.Context) error {
	switch {
	case s.cfg.Cron != "":
		s.logger.Info("starting scheduler", zap.String("cron", s.cfg.Cron))
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.runOnce(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	case s.cfg.Interval > 0:
		s.logger.Info("starting scheduler", zap.Duration("interval", s.cfg.Interval))
		s.ticker = time.NewTicker(s.cfg.Interval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.runOnce(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	default:
		s.logger.Info("no schedule configured, runs only on trigger")
	}
	return nil
}

// Stop halts the schedule and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		cronCtx := s.cron.Stop()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		<-cronCtx.Done()
		s.wg.Wait()
	})
}

// TriggerNow runs a harvest immediately in the caller's goroutine.
func (s *Scheduler) TriggerNow(ctx context.Context) (*services.ExportResult, error) {
	return s.runner.Run(ctx, s.maxPages)
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.runner.Run(ctx, s.maxPages)
	switch {
	case errors.Is(err, services.ErrRunInProgress):
		s.logger.Warn("previous run still in progress, skipping")
	case err != nil:
		s.logger.Error("scheduled run error", zap.Error(err))
	default:
		s.logger.Info("scheduled run complete", zap.Int("records", res.Records), zap.Duration("duration", res.Duration))
	}
}
