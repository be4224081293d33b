package model

import "time"

// Config is the full process configuration tree. The CLI layers viper
// flags and LINKSENTRY_* environment variables on top of these defaults.
type Config struct {
	HTTP        HTTPConfig        `json:"http" yaml:"http"`
	Retry       RetryConfig       `json:"retry" yaml:"retry"`
	Jobs        JobsConfig        `json:"jobs" yaml:"jobs"`
	RateLimit   RateLimitConfig   `json:"rate_limit" yaml:"rate_limit"`
	Auth        AuthConfig        `json:"auth" yaml:"auth"`
	Exclusions  []ExclusionRule   `json:"exclusions" yaml:"exclusions"`
	Output      OutputConfig      `json:"output" yaml:"output"`
}

// HTTPConfig controls the live strategy's transport budgets
type HTTPConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent      string `json:"user_agent" yaml:"user_agent"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes"`
	MaxRedirects   int    `json:"max_redirects" yaml:"max_redirects"`
	RespectRobots  bool   `json:"respect_robots" yaml:"respect_robots"`
}

// RetryConfig bounds the retry/backoff controller
type RetryConfig struct {
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// JobsConfig bounds the in-memory job table
type JobsConfig struct {
	TTL         time.Duration `json:"ttl" yaml:"ttl"`
	MaxJobs     int           `json:"max_jobs" yaml:"max_jobs"`
	MaxParallel int           `json:"max_parallel" yaml:"max_parallel"`
}

// RateLimitConfig paces requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// OutputConfig controls CLI rendering. JSON, when set, is the path the
// check command writes its results/summary file to.
type OutputConfig struct {
	Verbose bool   `json:"verbose" yaml:"verbose"`
	JSON    string `json:"json" yaml:"json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds: 10,
			UserAgent:      "linksentry/1.0 (+https://github.com/nicholasgeorgeson-prog/linksentry)",
			MaxBodyBytes:   1_000_000,
			MaxRedirects:   5,
			RespectRobots:  false,
		},
		Retry: RetryConfig{
			MaxRetries: 2,
		},
		Jobs: JobsConfig{
			TTL:         time.Hour,
			MaxJobs:     100,
			MaxParallel: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 4,
			Burst:             4,
		},
	}
}
