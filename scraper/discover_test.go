package scraper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mw_harvester/config"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func loadDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(loadFixture(t, name)))
	require.NoError(t, err)
	return doc
}

func TestDiscover_FirstNonEmptySelectorWins(t *testing.T) {
	doc := loadDoc(t, "generic.html")
	cascade := []string{"div.nothing-here", `div[class*="property"]`, "section"}

	got := NewDiscoverer().Discover(doc, cascade, true)
	assert.Equal(t, TierSelector, got.Tier)
	assert.Equal(t, `div[class*="property"]`, got.Selector)
	assert.Equal(t, 3, got.Len())
}

func TestDiscover_Heuristic(t *testing.T) {
	doc := loadDoc(t, "heuristic.html")

	got := NewDiscoverer().Discover(doc, []string{".property-card"}, true)
	require.Equal(t, TierHeuristic, got.Tier)
	require.Equal(t, 1, got.Len())
	assert.Contains(t, got.Elements.Text(), "Three bedroom house in Zomba")
}

func TestDiscover_HeuristicDisabled(t *testing.T) {
	doc := loadDoc(t, "heuristic.html")

	got := NewDiscoverer().Discover(doc, []string{".property-card"}, false)
	assert.Equal(t, TierNone, got.Tier)
	assert.Zero(t, got.Len())
}

func TestDiscover_HeuristicThreshold(t *testing.T) {
	short := `<div>house plot land</div>`
	long := `<div>` + strings.Repeat("x", 51) + ` sale</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>` + short + long + `</body></html>`))
	require.NoError(t, err)

	got := NewDiscoverer().Discover(doc, nil, true)
	require.Equal(t, 1, got.Len())
	assert.Contains(t, got.Elements.Text(), "sale")
}

func TestDiscover_XPath(t *testing.T) {
	doc := loadDoc(t, "nyumba.html")
	site := findDefault(t, "nyumba24")

	got := NewDiscoverer().Discover(doc, site.Selectors, site.HeuristicFallback)
	require.Equal(t, TierSelector, got.Tier)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "article", goquery.NodeName(got.Elements))
}

func TestDiscover_BadXPathMatchesNothing(t *testing.T) {
	doc := loadDoc(t, "generic.html")

	got := NewDiscoverer().Discover(doc, []string{config.XPathPrefix + "//div["}, false)
	assert.Zero(t, got.Len())
}

func findDefault(t *testing.T, id string) *config.SiteConfig {
	t.Helper()
	for _, s := range config.DefaultSites() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("no built-in site %s", id)
	return nil
}
