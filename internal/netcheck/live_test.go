package netcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/cache"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/transport"
)

func newLiveChecker(t *testing.T, req *model.ValidationRequest) *Checker {
	t.Helper()
	req.Normalize()
	composed, err := transport.Compose(req.Auth, 2*time.Second)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	opts := LiveOptions{
		UserAgent:   "linksentry-test/1.0",
		LookupCache: cache.NewMemoryCache(time.Minute, time.Minute),
	}
	return NewChecker(req, composed, opts)
}

func checkOne(t *testing.T, req *model.ValidationRequest, target string) model.ValidationResult {
	t.Helper()
	checker := newLiveChecker(t, req)
	return checker.Check(context.Background(), model.LinkCandidate{Target: target})
}

func TestLive_Working(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, MaxRetries: 1}, server.URL)

	if result.Status != model.StatusWorking {
		t.Errorf("Status = %v, want WORKING (%s)", result.Status, result.Message)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if result.AuthUsed != "none" {
		t.Errorf("AuthUsed = %q, want none", result.AuthUsed)
	}
	if result.CheckedAt.IsZero() {
		t.Error("CheckedAt not set")
	}
}

func TestLive_NotFoundIsTerminal(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, MaxRetries: 3}, server.URL+"/missing")

	if result.Status != model.StatusBroken {
		t.Errorf("Status = %v, want BROKEN", result.Status)
	}
	if result.HTTPStatusCode != http.StatusNotFound {
		t.Errorf("HTTPStatusCode = %d, want 404", result.HTTPStatusCode)
	}
	if result.Attempts != 1 {
		t.Errorf("404 must not be retried, attempts = %d", result.Attempts)
	}
	// HEAD probe plus the one-shot GET fallback, no retry cost
	if hits.Load() != 2 {
		t.Errorf("Expected exactly 2 requests (probe + fallback), got %d", hits.Load())
	}
}

func TestLive_ServerErrorIsRetried(t *testing.T) {
	var heads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		heads.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, MaxRetries: 2}, server.URL)

	if result.Status != model.StatusBroken {
		t.Errorf("Status = %v, want BROKEN", result.Status)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want maxRetries+1 = 3", result.Attempts)
	}
}

func TestLive_HeadNotAllowedFallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive}, server.URL)

	if result.Status != model.StatusWorking {
		t.Errorf("Status = %v, want WORKING after GET fallback", result.Status)
	}
	if result.Attempts != 1 {
		t.Errorf("Fallback must not consume retries, attempts = %d", result.Attempts)
	}
}

func TestLive_RedirectChainRecorded(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/landed", http.StatusMovedPermanently)
	}))
	defer redirecting.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive}, redirecting.URL)

	if result.Status != model.StatusRedirect {
		t.Errorf("Status = %v, want REDIRECT", result.Status)
	}
	if len(result.RedirectChain) == 0 {
		t.Error("Expected redirect chain to be recorded")
	}
	if result.FinalURL != final.URL+"/landed" {
		t.Errorf("FinalURL = %q, want %q", result.FinalURL, final.URL+"/landed")
	}
}

func TestLive_StatusCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.ValidationStatus
	}{
		{"unauthorized", http.StatusUnauthorized, model.StatusAuthRequired},
		{"forbidden", http.StatusForbidden, model.StatusBlocked},
		{"rate limited", http.StatusTooManyRequests, model.StatusRateLimited},
		{"gone", http.StatusGone, model.StatusBroken},
		{"bad gateway", http.StatusBadGateway, model.StatusBroken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive}, server.URL)
			if result.Status != tt.want {
				t.Errorf("code %d: Status = %v, want %v", tt.code, result.Status, tt.want)
			}
			if result.HTTPStatusCode != tt.code {
				t.Errorf("HTTPStatusCode = %d, want %d", result.HTTPStatusCode, tt.code)
			}
		})
	}
}

func TestLive_SoftFailureDemotion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("<html><head><title>Page Not Found</title></head><body>Sorry.</body></html>"))
		}
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{
		Mode:      model.ModeLive,
		ScanDepth: model.DepthThorough,
	}, server.URL)

	if !result.IsSoftFailurePage {
		t.Error("Expected soft-failure page to be detected")
	}
	if result.Status != model.StatusBroken {
		t.Errorf("Status = %v, want BROKEN after soft-404 demotion", result.Status)
	}
}

func TestLive_StandardDepthSkipsSoft404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("<html><head><title>Page Not Found</title></head></html>"))
		}
	}))
	defer server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, ScanDepth: model.DepthStandard}, server.URL)

	if result.Status != model.StatusWorking {
		t.Errorf("Status = %v, want WORKING at standard depth", result.Status)
	}
}

func TestLive_ConnectionRefusedIsBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, MaxRetries: 3}, url)

	if result.Status != model.StatusBlocked {
		t.Errorf("Status = %v, want BLOCKED for connection refused (%s)", result.Status, result.Message)
	}
	if result.Attempts != 1 {
		t.Errorf("Refusals must not be retried, attempts = %d", result.Attempts)
	}
}

func TestLive_SuspiciousURLFlagged(t *testing.T) {
	// Host resolves nowhere, but suspicious heuristics are applied to the
	// URL shape regardless of the network verdict
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// httptest URLs use 127.0.0.1 which trips the raw-IP heuristic
	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive, ScanDepth: model.DepthThorough}, server.URL)

	if !result.IsSuspicious {
		t.Error("Expected raw-IP URL to be flagged suspicious")
	}
	if len(result.SuspiciousReasons) == 0 {
		t.Error("Expected suspicious reasons to be attached")
	}
}

func TestLive_NonWebTypesFallBackToOffline(t *testing.T) {
	result := checkOne(t, &model.ValidationRequest{Mode: model.ModeLive}, "mailto:user@example.com")

	if result.Status != model.StatusWorking {
		t.Errorf("Status = %v, want WORKING for format-valid mail link", result.Status)
	}
	if result.Attempts != 0 {
		t.Errorf("Mail links must not produce network attempts, got %d", result.Attempts)
	}
	if result.LinkType != model.LinkTypeMail {
		t.Errorf("LinkType = %v, want mail", result.LinkType)
	}
}
