package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mw_harvester/models"
)

// SiteDelay separates consecutive handlers in one run.
const SiteDelay = 3 * time.Second

// RunRecorder persists per-handler run history. Failures are logged only.
type RunRecorder interface {
	CreateRun(run *models.ScrapeRun) (int64, error)
	UpdateRun(run *models.ScrapeRun) error
	Log(runID *int64, level models.LogLevel, message, siteID string) error
}

// Orchestrator runs handlers sequentially and aggregates their records.
type Orchestrator struct {
	handlers []Handler
	recorder RunRecorder
	logger   *zap.Logger
	sleep    func(time.Duration)
}

func NewOrchestrator(handlers []Handler, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		handlers: handlers,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

func (o *Orchestrator) SetRecorder(r RunRecorder) {
	o.recorder = r
}

func (o *Orchestrator) SiteIDs() []string {
	ids := make([]string, len(o.handlers))
	for i, h := range o.handlers {
		ids[i] = h.ID()
	}
	return ids
}

// RunAll runs every handler in order and concatenates their records. A
// handler that errors or panics contributes nothing; the rest still run.
func (o *Orchestrator) RunAll(ctx context.Context, maxPages int) []models.PropertyRecord {
	var all []models.PropertyRecord

	for i, h := range o.handlers {
		if i > 0 {
			o.sleep(SiteDelay)
		}
		if err := ctx.Err(); err != nil {
			o.logger.Warn("run cancelled", zap.String("next_site", h.ID()), zap.Error(err))
			break
		}
		all = append(all, o.runHandler(ctx, h, maxPages)...)
	}

	return all
}

func (o *Orchestrator) runHandler(ctx context.Context, h Handler, maxPages int) []models.PropertyRecord {
	siteID := h.ID()
	run := &models.ScrapeRun{
		SiteID:    siteID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	var runID *int64
	if o.recorder != nil {
		id, err := o.recorder.CreateRun(run)
		if err != nil {
			o.logger.Warn("record run failed", zap.String("site", siteID), zap.Error(err))
		} else {
			run.ID = id
			runID = &id
		}
	}

	o.log(runID, models.LogLevelInfo, "Starting scrape", siteID)

	res, err := scrapeSafely(ctx, h, maxPages)

	now := time.Now()
	run.FinishedAt = &now
	run.Pages = res.Pages
	run.StopReason = string(res.Stop)

	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(runID, models.LogLevelWarn, fmt.Sprintf("Scrape failed, records dropped: %v", err), siteID)
		res.Records = nil
	} else {
		run.Status = models.RunStatusCompleted
		run.ListingsFound = len(res.Records)
		o.log(runID, models.LogLevelInfo, fmt.Sprintf("Completed: %d records", len(res.Records)), siteID)
	}

	if runID != nil {
		if err := o.recorder.UpdateRun(run); err != nil {
			o.logger.Warn("update run failed", zap.String("site", siteID), zap.Error(err))
		}
	}
	return res.Records
}

// scrapeSafely converts a handler panic into an error.
func scrapeSafely(ctx context.Context, h Handler, maxPages int) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", h.ID(), r)
		}
	}()

	if r, ok := h.(runner); ok {
		return r.Run(ctx, maxPages), nil
	}
	records, err := h.Scrape(ctx, maxPages)
	return Result{Records: records}, err
}

func (o *Orchestrator) log(runID *int64, level models.LogLevel, message, siteID string) {
	switch level {
	case models.LogLevelError:
		o.logger.Error(message, zap.String("site", siteID))
	case models.LogLevelWarn:
		o.logger.Warn(message, zap.String("site", siteID))
	default:
		o.logger.Info(message, zap.String("site", siteID))
	}
	if o.recorder != nil && runID != nil {
		if err := o.recorder.Log(runID, level, message, siteID); err != nil {
			o.logger.Debug("store log line failed", zap.Error(err))
		}
	}
}
