package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mw_harvester/models"
)

// CSVSink writes a full export to Path, replacing any previous file.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Write(_ context.Context, records []models.PropertyRecord) error {
	if len(records) == 0 {
		return ErrNothingToWrite
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod csv: %w", err)
	}
	if err := encodeCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}
