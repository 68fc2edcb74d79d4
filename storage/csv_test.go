package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mw_harvester/models"
)

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malawi_properties.csv")
	sink := NewCSVSink(path)

	records := sampleRecords()
	records[0].Description = "Corner plot, \"fenced\"\nwith borehole"
	require.NoError(t, sink.Write(context.Background(), records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, records[0].Row(), rows[1])
	assert.Equal(t, "Corner plot, \"fenced\"\nwith borehole", rows[1][10])
	assert.Equal(t, []string{"nyumba24", "Flat to rent", "", "For Rent", "Limbe, Blantyre", "300000", "", "", "", "", "", "https://www.nyumba24.com"}, rows[2])
}

func TestCSVSink_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := NewCSVSink(path).Write(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNothingToWrite)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCSVSink_ReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, sampleRecords()))
	require.NoError(t, sink.Write(ctx, sampleRecords()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "nyumba24")
}

func TestCSVSink_BadDir(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, sink.Write(context.Background(), sampleRecords()))
}
