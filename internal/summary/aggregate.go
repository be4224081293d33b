package summary

import (
	"net/url"
	"strings"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// Aggregate reduces a result list into a ValidationSummary. It is a pure
// function, recomputed from the full list rather than maintained
// incrementally.
func Aggregate(results []model.ValidationResult) model.ValidationSummary {
	s := model.ValidationSummary{
		Total:              len(results),
		CountsByStatus:     make(map[model.ValidationStatus]int),
		CountsByDomain:     make(map[string]int),
		CountsByCategory:   make(map[model.DomainCategory]int),
		CountsByStatusCode: make(map[int]int),
	}

	var timed int64 // results that carry a response time
	var totalMs int64
	reachable := 0

	for _, r := range results {
		s.CountsByStatus[r.Status]++
		if r.Status.Reachable() {
			reachable++
		}
		if r.HTTPStatusCode != 0 {
			s.CountsByStatusCode[r.HTTPStatusCode]++
		}

		if host := hostOf(r.URL); host != "" {
			s.CountsByDomain[host]++
			s.CountsByCategory[Categorize(host)]++
		}

		if r.ResponseTimeMs > 0 {
			if timed == 0 || r.ResponseTimeMs < s.MinResponseTimeMs {
				s.MinResponseTimeMs = r.ResponseTimeMs
			}
			if r.ResponseTimeMs > s.MaxResponseTimeMs {
				s.MaxResponseTimeMs = r.ResponseTimeMs
			}
			totalMs += r.ResponseTimeMs
			timed++
		}
	}

	if timed > 0 {
		s.AvgResponseTimeMs = float64(totalMs) / float64(timed)
	}
	if s.Total > 0 {
		s.SuccessRate = float64(reachable) / float64(s.Total) * 100
	}
	return s
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// internalSuffixes mark hosts that belong to private or corporate
// namespaces rather than the public DNS
var internalSuffixes = []string{".local", ".internal", ".corp", ".lan", ".intranet"}

// Categorize maps a host onto the coarse reporting category table
func Categorize(host string) model.DomainCategory {
	host = strings.ToLower(host)

	if host == "" {
		return model.CategoryOther
	}
	if !strings.Contains(host, ".") {
		return model.CategoryInternal
	}
	for _, suffix := range internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.CategoryInternal
		}
	}

	switch {
	case strings.HasSuffix(host, ".gov"), strings.HasSuffix(host, ".mil"),
		strings.Contains(host, ".gov."):
		return model.CategoryGovernment
	case strings.HasSuffix(host, ".edu"), strings.Contains(host, ".edu."),
		strings.Contains(host, ".ac."):
		return model.CategoryEducational
	case strings.HasSuffix(host, ".com"), strings.HasSuffix(host, ".biz"),
		strings.Contains(host, ".co."):
		return model.CategoryCommercial
	case strings.HasSuffix(host, ".org"), strings.HasSuffix(host, ".net"):
		return model.CategoryOrganizational
	default:
		return model.CategoryOther
	}
}
