package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"mw_harvester/config"
)

type Tier string

const (
	TierNone      Tier = "none"
	TierSelector  Tier = "selector"
	TierHeuristic Tier = "heuristic"
)

var defaultKeywords = []string{"mk", "price", "bed", "bath", "house", "plot", "land", "rent", "sale"}

// Discovery is the set of candidate listing elements found in a page.
type Discovery struct {
	Elements *goquery.Selection
	Tier     Tier
	Selector string
}

func (d Discovery) Len() int {
	if d.Elements == nil {
		return 0
	}
	return d.Elements.Length()
}

// Discoverer locates listing containers. Selectors are tried in order and the
// first non-empty result is used on its own; only when all of them come up
// empty, and the caller allows it, are plain divs scored on their text.
type Discoverer struct {
	MinTextLength int
	Keywords      []string
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{MinTextLength: 50, Keywords: defaultKeywords}
}

func (d *Discoverer) Discover(doc *goquery.Document, cascade []string, heuristic bool) Discovery {
	for _, sel := range cascade {
		if found := query(doc, sel); found.Length() > 0 {
			return Discovery{Elements: found, Tier: TierSelector, Selector: sel}
		}
	}

	if heuristic {
		found := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return d.looksLikeListing(s.Text())
		})
		if found.Length() > 0 {
			return Discovery{Elements: found, Tier: TierHeuristic}
		}
	}

	return Discovery{Elements: doc.FindNodes(), Tier: TierNone}
}

func (d *Discoverer) looksLikeListing(text string) bool {
	text = strings.ToLower(text)
	if utf8.RuneCountInString(text) <= d.MinTextLength {
		return false
	}
	for _, kw := range d.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// query evaluates one cascade entry as CSS, or as XPath when it carries the
// xpath: prefix. An invalid XPath matches nothing.
func query(doc *goquery.Document, sel string) *goquery.Selection {
	expr, ok := strings.CutPrefix(sel, config.XPathPrefix)
	if !ok {
		return doc.Find(sel)
	}

	var nodes []*html.Node
	for _, root := range doc.Nodes {
		found, err := htmlquery.QueryAll(root, expr)
		if err != nil {
			return doc.FindNodes()
		}
		nodes = append(nodes, found...)
	}
	return doc.FindNodes(nodes...)
}
