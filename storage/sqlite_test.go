package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mw_harvester/identity"
	"mw_harvester/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecords() []models.PropertyRecord {
	plot := models.NewPropertyRecord("atsogo", "https://atsogo.mw/listings/properties")
	plot.Title = "Plot for sale in Area 49"
	plot.PropertyType = models.PropertyTypePlot
	plot.TransactionType = models.TransactionForSale
	plot.Location = "AREA 49, LILONGWE"
	plot.Price = "25000000"

	flat := models.NewPropertyRecord("nyumba24", "https://www.nyumba24.com")
	flat.Title = "Flat to rent"
	flat.Location = "Limbe, Blantyre"
	flat.Price = "300000"
	flat.TransactionType = models.TransactionForRent

	return []models.PropertyRecord{plot, flat}
}

func TestSQLiteStore_WriteUpserts(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }
	require.NoError(t, store.Write(ctx, sampleRecords()))

	second := first.Add(24 * time.Hour)
	store.now = func() time.Time { return second }
	again := sampleRecords()[:1]
	again[0].URL = "https://atsogo.mw/listings/properties?page=2"
	require.NoError(t, store.Write(ctx, again))

	all, err := store.GetListings("", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)

	plot := all[0]
	assert.Equal(t, "atsogo", plot.Source)
	assert.Equal(t, 2, plot.TimesSeen)
	assert.True(t, plot.FirstSeenAt.Equal(first))
	assert.True(t, plot.LastSeenAt.Equal(second))
	assert.Equal(t, "https://atsogo.mw/listings/properties?page=2", plot.URL)
	assert.Equal(t, models.PropertyTypePlot, plot.PropertyType)
	assert.Len(t, plot.Fingerprint, 32)

	rent, err := store.GetListings("nyumba24", 10)
	require.NoError(t, err)
	require.Len(t, rent, 1)
	assert.Equal(t, 1, rent[0].TimesSeen)
	assert.Equal(t, models.TransactionForRent, rent[0].TransactionType)
}

func TestSQLiteStore_WriteCollapsesDuplicatesInBatch(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	plot := sampleRecords()[0]
	nested := plot
	nested.URL = "https://atsogo.mw/listings/properties?page=3"
	require.NoError(t, store.Write(ctx, []models.PropertyRecord{plot, nested}))

	all, err := store.GetListings("atsogo", 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].TimesSeen)
	assert.Equal(t, plot.URL, all[0].URL)
}

func TestUniqueListings(t *testing.T) {
	recs := sampleRecords()
	got := uniqueListings(append(recs, recs[0], recs[1]))

	require.Len(t, got, len(recs))
	for i, l := range got {
		assert.Equal(t, recs[i], l.Record)
		assert.Equal(t, identity.Fingerprint(recs[i]), l.Fingerprint)
	}
	assert.Empty(t, uniqueListings(nil))
}

func TestSQLiteStore_WriteEmpty(t *testing.T) {
	store := newTestSQLite(t)
	assert.ErrorIs(t, store.Write(context.Background(), nil), ErrNothingToWrite)
}

func TestSQLiteStore_Runs(t *testing.T) {
	store := newTestSQLite(t)

	run := &models.ScrapeRun{SiteID: "atsogo", StartedAt: time.Now(), Status: models.RunStatusRunning}
	id, err := store.CreateRun(run)
	require.NoError(t, err)
	run.ID = id

	require.NoError(t, store.Log(&id, models.LogLevelInfo, "Starting scrape", "atsogo"))
	require.NoError(t, store.Log(&id, models.LogLevelWarn, "fetch failed", "atsogo"))

	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	run.Pages = 3
	run.StopReason = "no-next"
	run.ListingsFound = 42
	require.NoError(t, store.UpdateRun(run))

	other := &models.ScrapeRun{SiteID: "sgw", StartedAt: time.Now(), Status: models.RunStatusRunning}
	_, err = store.CreateRun(other)
	require.NoError(t, err)

	runs, err := store.GetRecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "sgw", runs[0].SiteID)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Equal(t, "atsogo", runs[1].SiteID)
	assert.Equal(t, models.RunStatusCompleted, runs[1].Status)
	assert.Equal(t, 3, runs[1].Pages)
	assert.Equal(t, "no-next", runs[1].StopReason)
	assert.Equal(t, 42, runs[1].ListingsFound)
	assert.NotNil(t, runs[1].FinishedAt)

	logs, err := store.GetLogs(id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LogLevelWarn, logs[1].Level)
	assert.Equal(t, "fetch failed", logs[1].Message)
}

func TestSQLiteStore_SiteStats(t *testing.T) {
	store := newTestSQLite(t)
	require.NoError(t, store.Write(context.Background(), sampleRecords()))

	for _, site := range []string{"atsogo", "atsogo", "nyumba24"} {
		_, err := store.CreateRun(&models.ScrapeRun{SiteID: site, StartedAt: time.Now(), Status: models.RunStatusCompleted})
		require.NoError(t, err)
	}

	stats, err := store.GetSiteStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "atsogo", stats[0].SiteID)
	assert.Equal(t, 1, stats[0].TotalListings)
	assert.Equal(t, string(models.RunStatusCompleted), stats[0].LastRunStatus)
	assert.NotNil(t, stats[0].LastRunAt)
	assert.Equal(t, "nyumba24", stats[1].SiteID)
}
