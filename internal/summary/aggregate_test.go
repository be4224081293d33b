package summary

import (
	"math"
	"testing"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

func TestAggregate_CountsMatchTotal(t *testing.T) {
	results := []model.ValidationResult{
		{URL: "https://a.example.com/x", Status: model.StatusWorking, HTTPStatusCode: 200, ResponseTimeMs: 100},
		{URL: "https://a.example.com/y", Status: model.StatusBroken, HTTPStatusCode: 404, ResponseTimeMs: 50},
		{URL: "https://b.example.org/z", Status: model.StatusRedirect, HTTPStatusCode: 200, ResponseTimeMs: 300},
		{URL: "not a url", Status: model.StatusInvalid},
	}

	s := Aggregate(results)

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	sum := 0
	for _, n := range s.CountsByStatus {
		sum += n
	}
	if sum != s.Total {
		t.Errorf("Status counts sum to %d, want %d", sum, s.Total)
	}
	if s.CountsByStatus[model.StatusWorking] != 1 || s.CountsByStatus[model.StatusBroken] != 1 {
		t.Errorf("Unexpected status counts: %v", s.CountsByStatus)
	}
	if s.CountsByDomain["a.example.com"] != 2 {
		t.Errorf("Domain counts: %v", s.CountsByDomain)
	}
	if s.CountsByStatusCode[200] != 2 || s.CountsByStatusCode[404] != 1 {
		t.Errorf("Status code counts: %v", s.CountsByStatusCode)
	}
}

func TestAggregate_ResponseTimes(t *testing.T) {
	results := []model.ValidationResult{
		{URL: "https://x.com", Status: model.StatusWorking, ResponseTimeMs: 100},
		{URL: "https://x.com", Status: model.StatusWorking, ResponseTimeMs: 300},
		{URL: "https://x.com", Status: model.StatusInvalid}, // no timing
	}

	s := Aggregate(results)

	if s.MinResponseTimeMs != 100 || s.MaxResponseTimeMs != 300 {
		t.Errorf("min/max = %d/%d, want 100/300", s.MinResponseTimeMs, s.MaxResponseTimeMs)
	}
	if s.AvgResponseTimeMs != 200 {
		t.Errorf("avg = %f, want 200", s.AvgResponseTimeMs)
	}
}

func TestAggregate_SuccessRate(t *testing.T) {
	results := []model.ValidationResult{
		{URL: "https://x.com/1", Status: model.StatusWorking},
		{URL: "https://x.com/2", Status: model.StatusRedirect},
		{URL: "https://x.com/3", Status: model.StatusBroken},
	}

	s := Aggregate(results)
	want := 2.0 / 3.0 * 100
	if math.Abs(s.SuccessRate-want) > 0.001 {
		t.Errorf("SuccessRate = %f, want %f", s.SuccessRate, want)
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	if s.Total != 0 || s.SuccessRate != 0 {
		t.Errorf("Empty aggregate: %+v", s)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		host string
		want model.DomainCategory
	}{
		{"www.nasa.gov", model.CategoryGovernment},
		{"army.mil", model.CategoryGovernment},
		{"data.gov.uk", model.CategoryGovernment},
		{"mit.edu", model.CategoryEducational},
		{"ox.ac.uk", model.CategoryEducational},
		{"shop.example.com", model.CategoryCommercial},
		{"news.co.jp", model.CategoryCommercial},
		{"wikipedia.org", model.CategoryOrganizational},
		{"example.net", model.CategoryOrganizational},
		{"fileserver", model.CategoryInternal},
		{"wiki.corp", model.CategoryInternal},
		{"printer.local", model.CategoryInternal},
		{"example.de", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := Categorize(tt.host); got != tt.want {
				t.Errorf("Categorize(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}
