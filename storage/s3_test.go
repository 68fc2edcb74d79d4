package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mw_harvester/config"
)

func TestExportKey(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "exports/malawi_properties_20250304T050607Z.csv", exportKey("exports/", ts))
	assert.Equal(t, "exports/malawi_properties_20250304T050607Z.csv", exportKey("exports", ts))
	assert.Equal(t, "malawi_properties_20250304T050607Z.csv", exportKey("", ts))
}

func TestS3Uploader_Write(t *testing.T) {
	var gotPath, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := NewS3Uploader(context.Background(), config.S3Config{
		Bucket:          "harvest",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Prefix:          "exports/",
	})
	require.NoError(t, err)
	u.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	require.NoError(t, u.Write(context.Background(), sampleRecords()))
	assert.Equal(t, "/harvest/exports/malawi_properties_20250304T050607Z.csv", gotPath)
	assert.Equal(t, "text/csv", gotType)
	assert.True(t, strings.HasPrefix(gotBody, "source,title,property_type"), gotBody)

	assert.ErrorIs(t, u.Write(context.Background(), nil), ErrNothingToWrite)
}
