package httputil

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mw_harvester/config"
)

// NewScrapingClient returns the client used against listing sites, routed
// through the configured proxy when there is one. Timeouts are applied per
// request by the Fetcher.
func NewScrapingClient(proxyCfg config.ProxyConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = 30 * time.Second

	if proxyCfg.URL != "" {
		proxyURL, err := url.Parse(proxyCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{Transport: transport}, nil
}
