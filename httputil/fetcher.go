package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"mw_harvester/config"
)

// ErrTransport wraps every failure to obtain a page body: network errors,
// timeouts and HTTP error statuses alike.
var ErrTransport = errors.New("transport failure")

// Fetcher performs single GETs and returns the body decoded to UTF-8.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limit     rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(client *http.Client, cfg config.FetchConfig) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	limit := rate.Inf
	if cfg.HostRateLimit > 0 {
		limit = rate.Limit(cfg.HostRateLimit)
	}
	return &Fetcher{
		client:    client,
		userAgent: ua,
		limit:     limit,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.limit, 1)
		f.limiters[host] = l
	}
	return l
}

// Fetch GETs rawURL within timeout. A zero timeout leaves only the context
// deadline in force.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: bad url %q", ErrTransport, rawURL)
	}

	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, rawURL, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %s: status %d", ErrTransport, rawURL, resp.StatusCode)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: decode: %v", ErrTransport, rawURL, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read: %v", ErrTransport, rawURL, err)
	}
	return string(body), nil
}
