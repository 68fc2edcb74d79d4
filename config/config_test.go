package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func siteIDs(sites []*SiteConfig) []string {
	ids := make([]string, len(sites))
	for i, s := range sites {
		ids[i] = s.ID
	}
	return ids
}

func TestDefaultSites_Valid(t *testing.T) {
	sites := DefaultSites()
	assert.Equal(t, []string{"atsogo", "sgw", "knightfrank", "nyumba24", "reynolds", "4321property"}, siteIDs(sites))
	for _, s := range sites {
		s.applyDefaults()
		assert.NoError(t, s.Validate(), s.ID)
	}
}

func TestLoadSites_MissingDir(t *testing.T) {
	sites, err := LoadSites(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Len(t, sites, 6)
}

func TestLoadSites_Overlay(t *testing.T) {
	dir := t.TempDir()
	writeSite(t, dir, "b_sgw.yaml", "id: sgw\ntimeout_sec: 45\n")
	writeSite(t, dir, "a_new.yaml", `
id: malawihomes
base_urls: ["https://example.mw/homes"]
paginated: true
next_link_text: "Next"
selectors: ["div.home-card"]
category: keywords
`)
	writeSite(t, dir, "c_off.yaml", "id: reynolds\ndisabled: true\n")
	writeSite(t, dir, "notes.txt", "ignored")

	sites, err := LoadSites(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"atsogo", "sgw", "knightfrank", "nyumba24", "4321property", "malawihomes"}, siteIDs(sites))

	sgw := findSite(sites, "sgw")
	assert.Equal(t, 45*time.Second, sgw.Timeout())
	assert.Len(t, sgw.BaseURLs, 3)
	assert.True(t, sgw.HeuristicFallback)

	added := findSite(sites, "malawihomes")
	assert.Equal(t, "page", added.PageParam)
	assert.Equal(t, "separate", added.BedBath)
	assert.Equal(t, 25*time.Second, added.Timeout())
	assert.Equal(t, "h1, h2, h3, h4, h5, h6", added.HeadingSelector())
}

func TestLoadSites_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no id", body: "name: x\n"},
		{name: "bad css", body: "id: x\nbase_urls: [\"https://x.mw\"]\nselectors: [\"div[\"]\n"},
		{name: "bad xpath", body: "id: x\nbase_urls: [\"https://x.mw\"]\nselectors: [\"xpath://div[\"]\n"},
		{name: "bad enum", body: "id: x\nbase_urls: [\"https://x.mw\"]\nselectors: [\"div\"]\ncategory: vibes\n"},
		{name: "no url", body: "id: x\nselectors: [\"div\"]\n"},
		{name: "bad gazetteer", body: "id: x\nbase_urls: [\"https://x.mw\"]\nselectors: [\"div\"]\ngazetteer: atlantis\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSite(t, dir, "x.yaml", tt.body)
			_, err := LoadSites(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())
	t.Setenv("OUTPUT_PATH", "out.csv")
	t.Setenv("DB_PATH", "")
	t.Setenv("SCRAPE_INTERVAL", "2h")
	t.Setenv("HOST_RATE_LIMIT", "0.5")
	t.Setenv("S3_BUCKET", "exports")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out.csv", cfg.OutputPath)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.Scheduler.Interval)
	assert.True(t, cfg.Scheduler.Daemon())
	assert.Equal(t, 0.5, cfg.Fetch.HostRateLimit)
	assert.True(t, cfg.S3.Enabled())
	assert.NotNil(t, cfg.Site("atsogo"))
	assert.Nil(t, cfg.Site("zillow"))
}

func TestLoad_BadInterval(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())
	t.Setenv("SCRAPE_INTERVAL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
