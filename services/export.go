package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mw_harvester/models"
	"mw_harvester/storage"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("export already running")

// Aggregator produces the records of one full harvest.
type Aggregator interface {
	RunAll(ctx context.Context, maxPages int) []models.PropertyRecord
}

// Mirror is a secondary sink. Its failures are logged, never returned.
type Mirror struct {
	Name string
	Sink storage.Sink
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type ExportResult struct {
	Records   int           `json:"records"`
	BySource  []SourceCount `json:"by_source"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ExportService runs the harvest and hands the result to the primary CSV sink
// and then to every mirror.
type ExportService struct {
	aggregator Aggregator
	primary    storage.Sink
	mirrors    []Mirror
	logger     *zap.Logger

	mu sync.Mutex

	lastMu sync.RWMutex
	last   *ExportResult
}

func NewExportService(aggregator Aggregator, primary storage.Sink, logger *zap.Logger, mirrors ...Mirror) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		aggregator: aggregator,
		primary:    primary,
		mirrors:    mirrors,
		logger:     logger,
	}
}

// Run harvests every source and writes the export. Only a primary sink failure
// is returned; an empty harvest is logged and leaves no file behind.
func (s *ExportService) Run(ctx context.Context, maxPages int) (*ExportResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	started := time.Now()
	s.logger.Info("export started", zap.Int("max_pages", maxPages))

	records := s.aggregator.RunAll(ctx, maxPages)
	result := &ExportResult{
		Records:   len(records),
		BySource:  CountBySource(records),
		StartedAt: started,
	}

	s.logger.Info("Summary by source", zap.Int("total", len(records)))
	for _, c := range result.BySource {
		s.logger.Info("source summary", zap.String("site", c.Source), zap.Int("records", c.Count))
	}

	if err := s.primary.Write(ctx, records); err != nil {
		if !errors.Is(err, storage.ErrNothingToWrite) {
			return nil, fmt.Errorf("write export: %w", err)
		}
		s.logger.Warn("no properties to save")
	}

	for _, m := range s.mirrors {
		if err := m.Sink.Write(ctx, records); err != nil {
			if errors.Is(err, storage.ErrNothingToWrite) {
				continue
			}
			s.logger.Warn("mirror write failed", zap.String("sink", m.Name), zap.Error(err))
		}
	}

	result.Duration = time.Since(started)
	s.lastMu.Lock()
	s.last = result
	s.lastMu.Unlock()
	s.logger.Info("export finished", zap.Int("records", result.Records), zap.Duration("duration", result.Duration))
	return result, nil
}

// Last returns the result of the most recent successful run, or nil.
func (s *ExportService) Last() *ExportResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// CountBySource tallies records per source in order of first appearance.
func CountBySource(records []models.PropertyRecord) []SourceCount {
	var counts []SourceCount
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Source]
		if !ok {
			i = len(counts)
			index[r.Source] = i
			counts = append(counts, SourceCount{Source: r.Source})
		}
		counts[i].Count++
	}
	return counts
}
