package model

import "time"

// MatchType selects the matching semantics of an exclusion rule
type MatchType string

const (
	MatchExact    MatchType = "exact"    // case-insensitive full-string equality
	MatchPrefix   MatchType = "prefix"   // case-insensitive prefix
	MatchSuffix   MatchType = "suffix"   // case-insensitive suffix
	MatchContains MatchType = "contains" // case-insensitive substring
	MatchPattern  MatchType = "pattern"  // regular-expression search
)

// ExclusionRule is one user-defined policy rule. Rules are evaluated in
// list order and the first match wins. TreatAsValid turns a match into a
// synthetic WORKING result instead of a skip.
type ExclusionRule struct {
	Pattern      string    `json:"pattern" yaml:"pattern"`
	MatchType    MatchType `json:"match_type" yaml:"match_type"`
	Reason       string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	TreatAsValid bool      `json:"treat_as_valid" yaml:"treat_as_valid"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}
