package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"mw_harvester/identity"
	"mw_harvester/models"
)

// ErrNothingToWrite is returned by sinks given no records. It is a warning,
// not a failure.
var ErrNothingToWrite = errors.New("no records to write")

type Sink interface {
	Write(ctx context.Context, records []models.PropertyRecord) error
}

type fingerprinted struct {
	Fingerprint string
	Record      models.PropertyRecord
}

// uniqueListings fingerprints records and keeps the first of each
// fingerprint, so one batch bumps times_seen at most once per listing.
func uniqueListings(records []models.PropertyRecord) []fingerprinted {
	seen := make(map[string]struct{}, len(records))
	out := make([]fingerprinted, 0, len(records))
	for _, r := range records {
		fp := identity.Fingerprint(r)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, fingerprinted{Fingerprint: fp, Record: r})
	}
	return out
}

// encodeCSV writes the header row and one row per record in column order.
func encodeCSV(w io.Writer, records []models.PropertyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
