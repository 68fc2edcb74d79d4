package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"gopkg.in/yaml.v3"

	"mw_harvester/extract"
)

// XPathPrefix marks a selector that is evaluated as XPath instead of CSS.
const XPathPrefix = "xpath:"

const (
	defaultTimeout   = 25 * time.Second
	defaultPageParam = "page"
)

// SiteConfig is the declarative profile of one listing source. Adding a
// source with the same markup conventions as an existing one is a new
// profile, not new code.
type SiteConfig struct {
	ID                  string               `yaml:"id"`
	Name                string               `yaml:"name"`
	BaseURLs            []string             `yaml:"base_urls"`
	Paginated           bool                 `yaml:"paginated"`
	PageParam           string               `yaml:"page_param"`
	NextLinkText        string               `yaml:"next_link_text"`
	TimeoutSec          int                  `yaml:"timeout_sec"`
	Selectors           []string             `yaml:"selectors"`
	HeuristicFallback   bool                 `yaml:"heuristic_fallback"`
	Headings            []string             `yaml:"headings"`
	DescriptionSelector string               `yaml:"description_selector"`
	BedBath             string               `yaml:"bed_bath"`
	Category            string               `yaml:"category"`
	Gazetteer           string               `yaml:"gazetteer"`
	GazetteerIgnoreCase bool                 `yaml:"gazetteer_ignore_case"`
	RequireTitleOrPrice bool                 `yaml:"require_title_or_price"`
	TransactionKeywords []extract.KeywordSet `yaml:"transaction_keywords"`
	PropertyKeywords    []extract.KeywordSet `yaml:"property_keywords"`
	Disabled            bool                 `yaml:"disabled"`
}

func (s *SiteConfig) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return defaultTimeout
	}
	return time.Duration(s.TimeoutSec) * time.Second
}

// HeadingSelector is the CSS group used to locate a listing title.
func (s *SiteConfig) HeadingSelector() string {
	return strings.Join(s.Headings, ", ")
}

// Validate checks every selector compiles and every enum field is known.
func (s *SiteConfig) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if len(s.BaseURLs) == 0 {
		errs = append(errs, errors.New("no base_urls"))
	}
	for _, raw := range s.BaseURLs {
		if u, err := url.Parse(raw); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("bad base url %q", raw))
		}
	}
	if len(s.Selectors) == 0 && !s.HeuristicFallback {
		errs = append(errs, errors.New("no selectors and heuristic fallback disabled"))
	}
	for _, sel := range s.Selectors {
		if err := validateSelector(sel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(s.Headings) > 0 {
		if _, err := cascadia.ParseGroup(s.HeadingSelector()); err != nil {
			errs = append(errs, fmt.Errorf("headings: %w", err))
		}
	}
	if s.DescriptionSelector != "" {
		if _, err := cascadia.ParseGroup(s.DescriptionSelector); err != nil {
			errs = append(errs, fmt.Errorf("description_selector: %w", err))
		}
	}
	switch extract.BedBathStrategy(s.BedBath) {
	case extract.BedBathCombined, extract.BedBathSeparate:
	default:
		errs = append(errs, fmt.Errorf("unknown bed_bath %q", s.BedBath))
	}
	switch extract.CategoryStrategy(s.Category) {
	case extract.CategoryTokens, extract.CategoryKeywords, extract.CategoryNone:
	default:
		errs = append(errs, fmt.Errorf("unknown category %q", s.Category))
	}
	if s.Gazetteer != "" {
		if _, err := extract.LookupGazetteer(s.Gazetteer, s.GazetteerIgnoreCase); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("site %s: %w", s.ID, err)
	}
	return nil
}

func validateSelector(sel string) error {
	if expr, ok := strings.CutPrefix(sel, XPathPrefix); ok {
		if _, err := xpath.Compile(expr); err != nil {
			return fmt.Errorf("xpath %q: %w", expr, err)
		}
		return nil
	}
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return fmt.Errorf("selector %q: %w", sel, err)
	}
	return nil
}

func (s *SiteConfig) applyDefaults() {
	if s.PageParam == "" {
		s.PageParam = defaultPageParam
	}
	if s.BedBath == "" {
		s.BedBath = string(extract.BedBathSeparate)
	}
	if s.Category == "" {
		s.Category = string(extract.CategoryNone)
	}
	if len(s.Headings) == 0 {
		s.Headings = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	}
}

// LoadSites returns the built-in profiles overlaid with every *.yaml file in
// dir. A file whose id matches a built-in profile overrides only the keys it
// sets; unknown ids are appended in file name order. Profiles marked disabled
// are dropped.
func LoadSites(dir string) ([]*SiteConfig, error) {
	sites := DefaultSites()

	files, err := siteFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var head struct {
			ID string `yaml:"id"`
		}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if head.ID == "" {
			return nil, fmt.Errorf("%s: missing id", path)
		}

		site := findSite(sites, head.ID)
		if site == nil {
			site = &SiteConfig{}
			sites = append(sites, site)
		}
		if err := yaml.Unmarshal(data, site); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	enabled := sites[:0]
	for _, site := range sites {
		if site.Disabled {
			continue
		}
		site.applyDefaults()
		if err := site.Validate(); err != nil {
			return nil, err
		}
		enabled = append(enabled, site)
	}
	return enabled, nil
}

func siteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func findSite(sites []*SiteConfig, id string) *SiteConfig {
	for _, s := range sites {
		if s.ID == id {
			return s
		}
	}
	return nil
}
