package model

import "time"

// ValidationStatus is the closed failure/success taxonomy. Every result
// ends in exactly one terminal status; PENDING only exists before a link
// has been processed.
type ValidationStatus string

const (
	StatusPending      ValidationStatus = "PENDING"
	StatusWorking      ValidationStatus = "WORKING"
	StatusRedirect     ValidationStatus = "REDIRECT"
	StatusBroken       ValidationStatus = "BROKEN"
	StatusTimeout      ValidationStatus = "TIMEOUT"
	StatusBlocked      ValidationStatus = "BLOCKED"
	StatusDNSFailed    ValidationStatus = "DNS_FAILED"
	StatusSSLError     ValidationStatus = "SSL_ERROR"
	StatusInvalid      ValidationStatus = "INVALID"
	StatusAuthRequired ValidationStatus = "AUTH_REQUIRED"
	StatusRateLimited  ValidationStatus = "RATE_LIMITED"
	StatusUnknown      ValidationStatus = "UNKNOWN"
	StatusSkipped      ValidationStatus = "SKIPPED"
)

// Terminal reports whether s is a terminal status
func (s ValidationStatus) Terminal() bool {
	return s != StatusPending && s != ""
}

// Reachable reports whether s counts toward the success rate
func (s ValidationStatus) Reachable() bool {
	return s == StatusWorking || s == StatusRedirect
}

// ValidationResult is the record produced for one link. It is owned by the
// validation run that produced it and immutable once appended to a job.
type ValidationResult struct {
	URL      string           `json:"url"`
	LinkType LinkType         `json:"link_type,omitempty"`
	Status   ValidationStatus `json:"status"`

	HTTPStatusCode int      `json:"http_status_code,omitempty"`
	Message        string   `json:"message,omitempty"`
	RedirectChain  []string `json:"redirect_chain,omitempty"`
	FinalURL       string   `json:"final_url,omitempty"`

	ResponseTimeMs int64 `json:"response_time_ms"`
	Attempts       int   `json:"attempts"`

	DNSResolved  bool     `json:"dns_resolved,omitempty"`
	DNSAddresses []string `json:"dns_addresses,omitempty"`

	CertValid      *bool `json:"cert_valid,omitempty"`
	CertExpiryDays *int  `json:"cert_expiry_days,omitempty"`

	IsSoftFailurePage bool     `json:"is_soft_failure_page,omitempty"`
	IsSuspicious      bool     `json:"is_suspicious,omitempty"`
	SuspiciousReasons []string `json:"suspicious_reasons,omitempty"`

	AuthUsed string `json:"auth_used,omitempty"`

	Excluded        bool   `json:"excluded,omitempty"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`

	DisplayText        string    `json:"display_text,omitempty"`
	SourceLocationHint string    `json:"source_location_hint,omitempty"`
	CheckedAt          time.Time `json:"checked_at"`
}

// DomainCategory is a coarse host classification used only for reporting
// roll-ups
type DomainCategory string

const (
	CategoryGovernment     DomainCategory = "government"
	CategoryEducational    DomainCategory = "educational"
	CategoryCommercial     DomainCategory = "commercial"
	CategoryOrganizational DomainCategory = "organizational"
	CategoryInternal       DomainCategory = "internal"
	CategoryOther          DomainCategory = "other"
)

// ValidationSummary is a pure reduction over a result list. It is derived
// by the aggregator and never hand-constructed.
type ValidationSummary struct {
	Total int `json:"total"`

	CountsByStatus     map[ValidationStatus]int `json:"counts_by_status"`
	CountsByDomain     map[string]int           `json:"counts_by_domain"`
	CountsByCategory   map[DomainCategory]int   `json:"counts_by_category"`
	CountsByStatusCode map[int]int              `json:"counts_by_status_code"`

	MinResponseTimeMs int64   `json:"min_response_time_ms"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	MaxResponseTimeMs int64   `json:"max_response_time_ms"`

	SuccessRate float64 `json:"success_rate"`
}

// FallbackResult is the verdict shape returned by the optional
// browser-automation collaborator for links the live strategy marked
// BLOCKED or TIMEOUT.
type FallbackResult struct {
	URL            string           `json:"url"`
	Status         ValidationStatus `json:"status"`
	HTTPStatusCode int              `json:"http_status_code,omitempty"`
	FinalURL       string           `json:"final_url,omitempty"`
}
