package scraper

import (
	"context"

	"go.uber.org/zap"

	"mw_harvester/config"
	"mw_harvester/models"
)

// Handler scrapes one source.
type Handler interface {
	ID() string
	Scrape(ctx context.Context, maxPages int) ([]models.PropertyRecord, error)
}

// runner is implemented by handlers that can report pages and stop reason.
type runner interface {
	Run(ctx context.Context, maxPages int) Result
}

func NewHandler(siteCfg *config.SiteConfig, fetcher Fetcher, logger *zap.Logger) (Handler, error) {
	a, err := NewAdapter(siteCfg, fetcher, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewHandlers builds one handler per profile, preserving order.
func NewHandlers(sites []*config.SiteConfig, fetcher Fetcher, logger *zap.Logger) ([]Handler, error) {
	handlers := make([]Handler, 0, len(sites))
	for _, site := range sites {
		h, err := NewHandler(site, fetcher, logger)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}
