package netcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/cache"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/classify"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/transport"
)

// LiveOptions carries the process-level collaborators a live strategy
// shares across requests
type LiveOptions struct {
	UserAgent    string
	MaxBodyBytes int64
	MaxRedirects int
	Limiter      *Limiter
	Robots       *RobotsChecker // nil unless robots policy is enabled
	LookupCache  cache.Cache
}

// LiveStrategy performs network validation under the authenticated
// transport composed for its request.
type LiveStrategy struct {
	composed *transport.Composed
	checks   model.SubChecks
	retrier  *Retrier
	opts     LiveOptions
}

// NewLiveStrategy builds the live strategy for one request
func NewLiveStrategy(req *model.ValidationRequest, composed *transport.Composed, opts LiveOptions) *LiveStrategy {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1_000_000
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 5
	}
	if opts.LookupCache == nil {
		opts.LookupCache = cache.NewMemoryCache(10*time.Minute, 30*time.Minute)
	}
	return &LiveStrategy{
		composed: composed,
		checks:   req.EffectiveSubChecks(),
		retrier:  NewRetrier(req.MaxRetries),
		opts:     opts,
	}
}

// attemptOutcome is the classified outcome of one network attempt
type attemptOutcome struct {
	status        model.ValidationStatus
	code          int
	message       string
	redirectChain []string
	finalURL      string
	body          string
	elapsed       time.Duration
}

// Validate performs the network attempt for one link, wrapped by the
// retry controller. Only web URLs are fetched; other link types fall back
// to the offline verdict.
func (s *LiveStrategy) Validate(ctx context.Context, candidate model.LinkCandidate, cls classify.Classification) model.ValidationResult {
	if cls.Type != model.LinkTypeWeb {
		offline := &OfflineStrategy{}
		return offline.Validate(ctx, candidate, cls)
	}

	result := model.ValidationResult{
		URL:      candidate.Target,
		LinkType: cls.Type,
		AuthUsed: s.composed.Description,
	}

	if s.opts.Robots != nil && !s.opts.Robots.Allowed(candidate.Target) {
		result.Status = model.StatusSkipped
		result.Message = "disallowed by robots.txt policy"
		return result
	}

	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx, candidate.Target); err != nil {
			result.Status = model.StatusTimeout
			result.Message = fmt.Sprintf("rate limit wait: %v", err)
			return result
		}
	}

	outcome, attempts := s.retrier.Run(ctx, func(ctx context.Context) (attemptOutcome, bool) {
		out := s.attempt(ctx, candidate.Target)
		return out, out.retryEligible()
	})

	result.Status = outcome.status
	result.HTTPStatusCode = outcome.code
	result.Message = outcome.message
	result.RedirectChain = outcome.redirectChain
	result.FinalURL = outcome.finalURL
	result.ResponseTimeMs = outcome.elapsed.Milliseconds()
	result.Attempts = attempts

	s.runSubChecks(ctx, &result, outcome)
	return result
}

// retryEligible distinguishes retryable BROKEN outcomes (5xx, generic
// connection errors) from terminal ones (plain 4xx)
func (o attemptOutcome) retryEligible() bool {
	if !retryableStatus(o.status) {
		return false
	}
	if o.status == model.StatusTimeout {
		return true
	}
	// BROKEN from a 4xx response is terminal; BROKEN from 5xx or from a
	// connection error (code 0) is retryable
	return o.code == 0 || o.code >= 500
}

// attempt issues the HEAD probe and, where required, the one-shot GET
// fallback. The fallback never consumes retry budget.
func (s *LiveStrategy) attempt(ctx context.Context, rawURL string) attemptOutcome {
	out := s.do(ctx, http.MethodHead, rawURL)
	if out.status == "" {
		// Probe got a response; decide whether the HEAD verdict stands
		switch out.code {
		case http.StatusMethodNotAllowed, http.StatusForbidden, http.StatusNotFound:
			out = s.do(ctx, http.MethodGet, rawURL)
		default:
			if out.code >= 200 && out.code < 300 && s.checks.Soft404 {
				// Soft-404 detection needs a body the HEAD probe cannot carry
				out = s.do(ctx, http.MethodGet, rawURL)
			}
		}
	}
	if out.status == "" {
		out.status, out.message = classifyStatusCode(out.code, out.redirectChain)
	}
	return out
}

// do performs a single HTTP exchange and returns either a transport-level
// classified outcome (status set) or a raw response outcome (status empty,
// code set) for the caller to interpret.
func (s *LiveStrategy) do(ctx context.Context, method, rawURL string) attemptOutcome {
	var chain []string
	client := &http.Client{
		Transport: s.composed.RoundTripper,
		Timeout:   s.composed.ReadTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			chain = append(chain, req.URL.String())
			if len(via) >= s.opts.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	start := timeNow()
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return attemptOutcome{status: model.StatusInvalid, message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	elapsed := timeNow().Sub(start)
	if err != nil {
		status, message := classifyNetworkError(err)
		return attemptOutcome{status: status, message: message, elapsed: elapsed, redirectChain: chain}
	}
	defer func() { _ = resp.Body.Close() }()

	out := attemptOutcome{
		code:          resp.StatusCode,
		redirectChain: chain,
		finalURL:      resp.Request.URL.String(),
		elapsed:       elapsed,
	}

	if method == http.MethodGet && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, s.opts.MaxBodyBytes))
		if readErr == nil {
			out.body = string(body)
		}
		out.elapsed = timeNow().Sub(start)
	}

	return out
}

// classifyStatusCode maps an HTTP response code onto the closed status
// taxonomy
func classifyStatusCode(code int, chain []string) (model.ValidationStatus, string) {
	switch {
	case code >= 200 && code < 300:
		if len(chain) > 0 {
			return model.StatusRedirect, fmt.Sprintf("followed %d redirect(s)", len(chain))
		}
		return model.StatusWorking, ""
	case code >= 300 && code < 400:
		return model.StatusRedirect, "redirect not followed (limit reached)"
	case code == http.StatusUnauthorized:
		return model.StatusAuthRequired, "authentication required"
	case code == http.StatusForbidden:
		return model.StatusBlocked, "access forbidden"
	case code == http.StatusNotFound:
		return model.StatusBroken, "not found"
	case code == http.StatusTooManyRequests:
		return model.StatusRateLimited, "rate limited by server"
	case code >= 400 && code < 500:
		return model.StatusBroken, fmt.Sprintf("client error %d", code)
	case code >= 500:
		return model.StatusBroken, fmt.Sprintf("server error %d", code)
	default:
		return model.StatusUnknown, fmt.Sprintf("unexpected status %d", code)
	}
}

// classifyNetworkError maps a transport-level error onto the closed status
// taxonomy. DNS, TLS, and refusal outcomes are never retried.
func classifyNetworkError(err error) (model.ValidationStatus, string) {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.StatusDNSFailed, fmt.Sprintf("DNS resolution failed: %v", dnsErr)
	}

	if isTLSError(err) {
		return model.StatusSSLError, fmt.Sprintf("TLS error: %v", err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return model.StatusBlocked, "connection refused"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.StatusTimeout, fmt.Sprintf("timed out: %v", netErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.StatusTimeout, "timed out"
	}

	return model.StatusBroken, fmt.Sprintf("connection error: %v", err)
}

func isTLSError(err error) bool {
	var hostnameErr x509.HostnameError
	var unknownAuthErr x509.UnknownAuthorityError
	var certErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &hostnameErr) || errors.As(err, &unknownAuthErr) ||
		errors.As(err, &certErr) || errors.As(err, &recordErr) {
		return true
	}
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") ||
		strings.Contains(msg, "certificate")
}

// runSubChecks applies depth-dependent extras after the primary verdict.
// Soft-404 demotes WORKING to BROKEN; everything else is informational.
func (s *LiveStrategy) runSubChecks(ctx context.Context, result *model.ValidationResult, outcome attemptOutcome) {
	if s.checks.Soft404 && result.Status == model.StatusWorking && outcome.body != "" {
		if isSoftFailurePage(outcome.body) {
			result.IsSoftFailurePage = true
			result.Status = model.StatusBroken
			result.Message = "success status but page body indicates an error"
		}
	}

	if s.checks.Suspicious {
		if reasons := suspiciousReasons(result.URL); len(reasons) > 0 {
			result.IsSuspicious = true
			result.SuspiciousReasons = reasons
		}
	}

	if result.Status != model.StatusWorking && result.Status != model.StatusRedirect {
		return
	}

	parsed, err := url.Parse(result.URL)
	if err != nil {
		return
	}

	if s.checks.DNS {
		resolved, addrs := resolveDNS(ctx, s.opts.LookupCache, parsed.Hostname())
		result.DNSResolved = resolved
		result.DNSAddresses = addrs
	}

	if s.checks.Certificate && parsed.Scheme == "https" {
		if info := inspectCertificate(parsed.Host, s.composed.ConnectTimeout); info != nil {
			valid := info.Valid
			result.CertValid = &valid
			if info.Valid {
				days := info.ExpiryDays
				result.CertExpiryDays = &days
			}
			if info.Warning != "" {
				if result.Message != "" {
					result.Message += "; "
				}
				result.Message += info.Warning
			}
		}
	}
}
