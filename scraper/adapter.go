package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"mw_harvester/config"
	"mw_harvester/extract"
	"mw_harvester/models"
)

// PageDelay separates consecutive page fetches of one source.
const PageDelay = time.Second

// Fetcher returns a page body or an error. An empty body counts as a failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// Result is the outcome of one adapter run.
type Result struct {
	Records []models.PropertyRecord
	Pages   int
	Stop    StopReason
}

// Adapter scrapes one source described by a site profile.
type Adapter struct {
	profile    *config.SiteConfig
	fetcher    Fetcher
	discoverer *Discoverer
	extractor  *extract.Extractor
	logger     *zap.Logger
	sleep      func(time.Duration)
}

func NewAdapter(profile *config.SiteConfig, fetcher Fetcher, logger *zap.Logger) (*Adapter, error) {
	dialect, err := dialectFor(profile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		profile:    profile,
		fetcher:    fetcher,
		discoverer: NewDiscoverer(),
		extractor:  extract.New(dialect, nil),
		logger:     logger.With(zap.String("site", profile.ID)),
		sleep:      time.Sleep,
	}, nil
}

func dialectFor(p *config.SiteConfig) (extract.Dialect, error) {
	d := extract.Dialect{
		BedBath:             extract.BedBathStrategy(p.BedBath),
		Category:            extract.CategoryStrategy(p.Category),
		TransactionKeywords: p.TransactionKeywords,
		PropertyKeywords:    p.PropertyKeywords,
	}
	if p.Gazetteer != "" {
		g, err := extract.LookupGazetteer(p.Gazetteer, p.GazetteerIgnoreCase)
		if err != nil {
			return d, err
		}
		d.Gazetteer = g
	}
	return d, nil
}

func (a *Adapter) ID() string {
	return a.profile.ID
}

func (a *Adapter) Scrape(ctx context.Context, maxPages int) ([]models.PropertyRecord, error) {
	return a.Run(ctx, maxPages).Records, nil
}

// Run walks the source page by page until a stop condition is reached and
// returns the records gathered before it.
func (a *Adapter) Run(ctx context.Context, maxPages int) Result {
	var res Result

	for state := Start(); ; {
		if state.Page > 1 {
			a.sleep(PageDelay)
		}

		outcome, records := a.scrapePage(ctx, state.Page)
		res.Records = append(res.Records, records...)
		res.Pages = state.Page

		state = state.Next(outcome, maxPages, a.profile.Paginated)
		if state.Done() {
			res.Stop = state.Stop
			break
		}
	}

	a.logger.Info("source done",
		zap.Int("records", len(res.Records)),
		zap.Int("pages", res.Pages),
		zap.String("stop", string(res.Stop)))
	return res
}

func (a *Adapter) scrapePage(ctx context.Context, page int) (PageOutcome, []models.PropertyRecord) {
	pageURL, body := a.fetchPage(ctx, page)
	if body == "" {
		return PageOutcome{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		a.logger.Warn("parse failed", zap.Int("page", page), zap.Error(err))
		return PageOutcome{}, nil
	}

	found := a.discoverer.Discover(doc, a.profile.Selectors, a.profile.HeuristicFallback)
	if found.Len() == 0 {
		a.logger.Warn("no listing elements", zap.Int("page", page), zap.String("url", pageURL))
		return PageOutcome{Fetched: true}, nil
	}
	a.logger.Info("discovered elements",
		zap.Int("page", page),
		zap.Int("count", found.Len()),
		zap.String("tier", string(found.Tier)),
		zap.String("selector", found.Selector))

	records := a.extractAll(found.Elements, pageURL)
	a.logger.Info("page extracted", zap.Int("page", page), zap.Int("records", len(records)))

	return PageOutcome{
		Fetched:  true,
		Elements: found.Len(),
		HasNext:  hasNextLink(doc, a.profile.NextLinkText),
	}, records
}

// fetchPage returns the URL that produced a body and the body itself. The
// first page of a non-paginated source falls back through every base URL.
func (a *Adapter) fetchPage(ctx context.Context, page int) (string, string) {
	candidates := a.profile.BaseURLs
	if a.profile.Paginated && len(candidates) > 0 {
		candidates = []string{pageURL(candidates[0], a.profile.PageParam, page)}
	}

	for _, u := range candidates {
		body, err := a.fetcher.Fetch(ctx, u, a.profile.Timeout())
		if err != nil {
			a.logger.Warn("fetch failed", zap.Int("page", page), zap.String("url", u), zap.Error(err))
			continue
		}
		if body == "" {
			a.logger.Warn("empty body", zap.Int("page", page), zap.String("url", u))
			continue
		}
		return u, body
	}
	return "", ""
}

func (a *Adapter) extractAll(elements *goquery.Selection, pageURL string) []models.PropertyRecord {
	var records []models.PropertyRecord
	elements.Each(func(i int, s *goquery.Selection) {
		if rec, ok := a.extractElement(i, s, pageURL); ok {
			records = append(records, rec)
		}
	})
	return records
}

// extractElement turns one element into a record. A panic here costs only
// this element.
func (a *Adapter) extractElement(idx int, s *goquery.Selection, pageURL string) (rec models.PropertyRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("element extraction failed", zap.Int("element", idx), zap.Any("panic", r))
			ok = false
		}
	}()

	rec = models.NewPropertyRecord(a.profile.ID, pageURL)
	if len(a.profile.Headings) > 0 {
		rec.Title = extract.CleanText(s.Find(a.profile.HeadingSelector()).First().Text())
	}
	if a.profile.DescriptionSelector != "" {
		rec.Description = extract.CleanText(s.Find(a.profile.DescriptionSelector).First().Text())
	}
	a.extractor.Extract(s.Text()).Apply(&rec)

	if a.profile.RequireTitleOrPrice && !rec.HasTitleOrPrice() {
		return rec, false
	}
	return rec, true
}

func pageURL(base, param string, page int) string {
	if page <= 1 {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(param, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func hasNextLink(doc *goquery.Document, text string) bool {
	if text == "" {
		return false
	}
	next := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == text
	})
	return next.Length() > 0
}
