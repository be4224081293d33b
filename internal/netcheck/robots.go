package netcheck

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/cache"
)

// robotsTTL bounds how long a host's robots.txt verdict is reused
const robotsTTL = 30 * time.Minute

// RobotsChecker answers whether policy permits fetching a URL. Verdicts
// are cached per host. Fetch failures fail open: an unreachable robots.txt
// never blocks validation.
type RobotsChecker struct {
	cache      cache.Cache
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a robots.txt policy checker
func NewRobotsChecker(lookupCache cache.Cache, userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		cache: lookupCache,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Allowed reports whether rawURL may be fetched under the host's robots.txt
func (r *RobotsChecker) Allowed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	data, err := r.getRobotsData(parsed)
	if err != nil {
		return true
	}

	return data.TestAgent(parsed.Path, r.userAgent)
}

func (r *RobotsChecker) getRobotsData(parsed *url.URL) (*robotstxt.RobotsData, error) {
	key := cache.RobotsKey(parsed.Host)
	if cached, found := r.cache.Get(key); found {
		return cached.(*robotstxt.RobotsData), nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequest(http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.cache.Set(key, data, robotsTTL)
	return data, nil
}
