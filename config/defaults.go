package config

import (
	"mw_harvester/extract"
	"mw_harvester/models"
)

// genericSelectors is the cascade shared by sources built on common
// real-estate themes. The first selector with any match wins.
var genericSelectors = []string{
	`div[class*="property"]`,
	`div[class*="listing"]`,
	`div[class*="item"]`,
	`article[class*="property"]`,
	`article[class*="listing"]`,
	`.property-item`,
	`.listing-item`,
	`.property-card`,
	`.listing-card`,
}

// cardXPath selects div and article elements whose class mentions a listing
// word in any letter case.
const cardXPath = XPathPrefix + `//*[self::div or self::article][` +
	`contains(translate(@class, 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'property') or ` +
	`contains(translate(@class, 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'listing') or ` +
	`contains(translate(@class, 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'item') or ` +
	`contains(translate(@class, 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'card')]`

func headings(n int) []string {
	all := []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	return append([]string(nil), all[:n]...)
}

func selectors() []string {
	return append([]string(nil), genericSelectors...)
}

// DefaultSites returns fresh copies of the built-in profiles in run order.
func DefaultSites() []*SiteConfig {
	return []*SiteConfig{
		{
			ID:                  "atsogo",
			Name:                "Atsogo",
			BaseURLs:            []string{"https://atsogo.mw/listings/properties"},
			Paginated:           true,
			PageParam:           "page",
			NextLinkText:        "Next",
			TimeoutSec:          25,
			Selectors:           []string{"div.property_item"},
			Headings:            []string{"h3"},
			BedBath:             string(extract.BedBathCombined),
			Category:            string(extract.CategoryTokens),
			Gazetteer:           "districts_upper",
			GazetteerIgnoreCase: false,
		},
		{
			ID:   "sgw",
			Name: "SGW",
			BaseURLs: []string{
				"https://sgw.mw",
				"https://sgw.mw/properties",
				"https://sgw.mw/listings",
			},
			TimeoutSec:          30,
			Selectors:           selectors(),
			HeuristicFallback:   true,
			Headings:            headings(4),
			BedBath:             string(extract.BedBathSeparate),
			Category:            string(extract.CategoryKeywords),
			Gazetteer:           "places",
			GazetteerIgnoreCase: true,
			RequireTitleOrPrice: true,
			TransactionKeywords: extract.DefaultTransactionKeywords,
			PropertyKeywords:    extract.DefaultPropertyKeywords,
		},
		{
			ID:                  "knightfrank",
			Name:                "Knight Frank",
			BaseURLs:            []string{"https://www.knightfrank.mw"},
			TimeoutSec:          30,
			Selectors:           selectors(),
			HeuristicFallback:   true,
			Headings:            headings(5),
			BedBath:             string(extract.BedBathSeparate),
			Category:            string(extract.CategoryNone),
			Gazetteer:           "places",
			GazetteerIgnoreCase: true,
			RequireTitleOrPrice: true,
		},
		{
			ID:                  "nyumba24",
			Name:                "Nyumba24",
			BaseURLs:            []string{"https://www.nyumba24.com"},
			TimeoutSec:          25,
			Selectors:           []string{cardXPath},
			Headings:            headings(6),
			BedBath:             string(extract.BedBathSeparate),
			Category:            string(extract.CategoryKeywords),
			Gazetteer:           "places",
			GazetteerIgnoreCase: true,
			RequireTitleOrPrice: true,
			TransactionKeywords: []extract.KeywordSet{
				{Value: string(models.TransactionForRent), Keywords: []string{"rent"}},
				{Value: string(models.TransactionForSale), Keywords: []string{"sale"}},
			},
		},
		{
			ID:                  "reynolds",
			Name:                "Reynolds",
			BaseURLs:            []string{"https://reynolds.mw"},
			TimeoutSec:          30,
			Selectors:           selectors(),
			HeuristicFallback:   true,
			Headings:            headings(5),
			BedBath:             string(extract.BedBathSeparate),
			Category:            string(extract.CategoryNone),
			Gazetteer:           "places",
			GazetteerIgnoreCase: true,
			RequireTitleOrPrice: true,
		},
		{
			ID:                  "4321property",
			Name:                "4321 Property",
			BaseURLs:            []string{"https://www.4321property.com/malawi"},
			TimeoutSec:          30,
			Selectors:           selectors(),
			HeuristicFallback:   true,
			Headings:            headings(5),
			BedBath:             string(extract.BedBathSeparate),
			Category:            string(extract.CategoryNone),
			Gazetteer:           "places",
			GazetteerIgnoreCase: true,
			RequireTitleOrPrice: true,
		},
	}
}
