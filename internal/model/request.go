package model

import "time"

// Mode selects whether a request touches the network
type Mode string

const (
	ModeOffline Mode = "offline" // classification + format checks only
	ModeLive    Mode = "live"    // network validation
)

// ScanDepth is a named thoroughness preset controlling which optional
// sub-checks run
type ScanDepth string

const (
	DepthQuick    ScanDepth = "quick"    // offline-equivalent, regardless of mode
	DepthStandard ScanDepth = "standard" // network checks, no extras
	DepthThorough ScanDepth = "thorough" // DNS, certificate, soft-404, suspicious-URL
)

// AuthConfig describes the credential mechanisms composed onto the live
// transport. A client certificate takes priority over integrated SSO when
// both are configured.
type AuthConfig struct {
	ClientCertFile string `json:"client_cert_file,omitempty" yaml:"client_cert_file,omitempty"`
	ClientKeyFile  string `json:"client_key_file,omitempty" yaml:"client_key_file,omitempty"`
	CABundleFile   string `json:"ca_bundle_file,omitempty" yaml:"ca_bundle_file,omitempty"`
	ProxyURL       string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty"`
	UseSSO         bool   `json:"use_sso,omitempty" yaml:"use_sso,omitempty"`
	SSOToken       string `json:"-" yaml:"-"` // pre-acquired Negotiate token, never serialized
	InsecureTLS    bool   `json:"insecure_tls,omitempty" yaml:"insecure_tls,omitempty"`
}

// ValidationRequest describes one validation run over a list of link
// candidates.
type ValidationRequest struct {
	Links     []LinkCandidate `json:"links"`
	Mode      Mode            `json:"mode"`
	ScanDepth ScanDepth       `json:"scan_depth"`

	TimeoutSeconds int `json:"timeout_seconds"`
	MaxRetries     int `json:"max_retries"`
	BatchSize      int `json:"batch_size,omitempty"`

	Auth       AuthConfig      `json:"auth,omitempty"`
	Exclusions []ExclusionRule `json:"exclusions,omitempty"`

	// Per-sub-check overrides. Nil means "use the scan-depth default".
	CheckDNS         *bool `json:"check_dns,omitempty"`
	CheckCertificate *bool `json:"check_certificate,omitempty"`
	CheckSoft404     *bool `json:"check_soft404,omitempty"`
	CheckSuspicious  *bool `json:"check_suspicious,omitempty"`

	RespectRobots bool `json:"respect_robots,omitempty"`
}

// Normalize fills zero values with defaults and clamps nonsense
func (r *ValidationRequest) Normalize() {
	if r.Mode == "" {
		r.Mode = ModeLive
	}
	if r.ScanDepth == "" {
		r.ScanDepth = DepthStandard
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = 10
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 100
	}
}

// Timeout returns the configured per-attempt timeout as a duration
func (r *ValidationRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// SubChecks resolves the effective sub-check set from scan depth plus
// explicit overrides
type SubChecks struct {
	DNS         bool
	Certificate bool
	Soft404     bool
	Suspicious  bool
}

// EffectiveSubChecks applies scan-depth defaults, then overrides
func (r *ValidationRequest) EffectiveSubChecks() SubChecks {
	checks := SubChecks{}
	if r.ScanDepth == DepthThorough {
		checks = SubChecks{DNS: true, Certificate: true, Soft404: true, Suspicious: true}
	}
	if r.CheckDNS != nil {
		checks.DNS = *r.CheckDNS
	}
	if r.CheckCertificate != nil {
		checks.Certificate = *r.CheckCertificate
	}
	if r.CheckSoft404 != nil {
		checks.Soft404 = *r.CheckSoft404
	}
	if r.CheckSuspicious != nil {
		checks.Suspicious = *r.CheckSuspicious
	}
	return checks
}

// Offline reports whether the request must avoid network I/O. Quick depth
// forces offline behavior regardless of mode.
func (r *ValidationRequest) Offline() bool {
	return r.Mode == ModeOffline || r.ScanDepth == DepthQuick
}
