package netcheck

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/cache"
)

const (
	dnsTTL             = 10 * time.Minute
	certExpiryWarnDays = 30
)

// soft-404 phrase tables. These thresholds are tunable heuristics, not a
// wire contract.
var (
	softFailureTitles = []string{
		"page not found",
		"404",
		"not found",
		"error",
		"does not exist",
		"no longer available",
	}
	softFailureBodyPhrases = []string{
		"page not found",
		"page you requested could not be found",
		"page you are looking for",
		"this page doesn't exist",
		"this page does not exist",
		"content is no longer available",
		"has been removed or is temporarily unavailable",
		"404 error",
	}
)

var ipLiteralPattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// suspiciousTLDs are TLDs disproportionately used in throwaway or abusive
// registrations
var suspiciousTLDs = []string{".zip", ".mov", ".tk", ".ml", ".ga", ".cf", ".gq", ".top", ".xyz"}

// resolveDNS performs an independent DNS lookup for host, consulting the
// shared lookup cache first
func resolveDNS(ctx context.Context, lookupCache cache.Cache, host string) (bool, []string) {
	if host == "" {
		return false, nil
	}

	key := cache.DNSKey(host)
	if cached, found := lookupCache.Get(key); found {
		addrs := cached.([]string)
		return len(addrs) > 0, addrs
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		lookupCache.Set(key, []string{}, dnsTTL)
		return false, nil
	}

	lookupCache.Set(key, addrs, dnsTTL)
	return true, addrs
}

// certInfo is the informational outcome of certificate-chain inspection
type certInfo struct {
	Valid      bool
	ExpiryDays int
	Warning    string
}

// inspectCertificate dials host:443 and inspects the presented leaf
// certificate. The outcome is informational and never changes the link's
// status.
func inspectCertificate(host string, timeout time.Duration) *certInfo {
	if host == "" {
		return nil
	}
	if !strings.Contains(host, ":") {
		host += ":443"
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", host, &tls.Config{})
	if err != nil {
		return &certInfo{Valid: false, Warning: "certificate verification failed: " + err.Error()}
	}
	defer func() { _ = conn.Close() }()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return &certInfo{Valid: false, Warning: "no peer certificate presented"}
	}

	leaf := certs[0]
	days := int(time.Until(leaf.NotAfter).Hours() / 24)
	info := &certInfo{Valid: true, ExpiryDays: days}
	if days < 0 {
		info.Valid = false
		info.Warning = "certificate has expired"
	} else if days <= certExpiryWarnDays {
		info.Warning = "certificate expires soon"
	}
	return info
}

// isSoftFailurePage inspects a 200-response body for signals that the page
// is actually an error page served with a success code
func isSoftFailurePage(body string) bool {
	if body == "" {
		return false
	}

	title := extractTitle(body)
	if title != "" {
		lower := strings.ToLower(title)
		for _, phrase := range softFailureTitles {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}

	lowerBody := strings.ToLower(body)
	for _, phrase := range softFailureBodyPhrases {
		if strings.Contains(lowerBody, phrase) {
			return true
		}
	}
	return false
}

// extractTitle walks the HTML tree and returns the first <title> text
func extractTitle(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

// suspiciousReasons applies URL-shape heuristics and returns the reasons
// that fired. An empty slice means the URL looks ordinary.
func suspiciousReasons(rawURL string) []string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := parsed.Hostname()
	var reasons []string

	if ipLiteralPattern.MatchString(host) {
		reasons = append(reasons, "host is a raw IP address")
	}
	if strings.HasPrefix(host, "xn--") || strings.Contains(host, ".xn--") {
		reasons = append(reasons, "punycode-encoded host")
	}
	if strings.Count(host, ".") >= 5 {
		reasons = append(reasons, "excessive subdomain depth")
	}
	if strings.Count(host, "-") >= 4 {
		reasons = append(reasons, "many hyphens in host")
	}
	if parsed.User != nil {
		reasons = append(reasons, "credentials embedded in URL")
	}
	if len(rawURL) > 200 {
		reasons = append(reasons, "unusually long URL")
	}
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			reasons = append(reasons, "suspicious top-level domain "+tld)
			break
		}
	}
	return reasons
}
