package exclude

import (
	"regexp"
	"strings"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// Outcome is the verdict of the first matching exclusion rule
type Outcome struct {
	TreatAsValid bool
	Reason       string
}

// Engine evaluates links against an ordered rule list. Pattern rules are
// compiled once at construction; rules whose patterns do not compile are
// dropped.
type Engine struct {
	rules    []model.ExclusionRule
	patterns []*regexp.Regexp // index-aligned with rules; nil for non-pattern rules
}

// NewEngine builds an engine from an ordered rule list
func NewEngine(rules []model.ExclusionRule) *Engine {
	e := &Engine{}
	for _, rule := range rules {
		var re *regexp.Regexp
		if rule.MatchType == model.MatchPattern {
			compiled, err := regexp.Compile(rule.Pattern)
			if err != nil {
				continue
			}
			re = compiled
		}
		e.rules = append(e.rules, rule)
		e.patterns = append(e.patterns, re)
	}
	return e
}

// Evaluate returns the outcome of the first rule matching url, or nil if
// no rule matches. Evaluation order is rule-list order.
func (e *Engine) Evaluate(url string) *Outcome {
	for i, rule := range e.rules {
		if e.matches(i, rule, url) {
			return &Outcome{TreatAsValid: rule.TreatAsValid, Reason: rule.Reason}
		}
	}
	return nil
}

func (e *Engine) matches(idx int, rule model.ExclusionRule, url string) bool {
	lowerURL := strings.ToLower(url)
	lowerPat := strings.ToLower(rule.Pattern)

	switch rule.MatchType {
	case model.MatchExact:
		return lowerURL == lowerPat
	case model.MatchPrefix:
		return strings.HasPrefix(lowerURL, lowerPat)
	case model.MatchSuffix:
		return strings.HasSuffix(lowerURL, lowerPat)
	case model.MatchContains:
		return strings.Contains(lowerURL, lowerPat)
	case model.MatchPattern:
		return e.patterns[idx] != nil && e.patterns[idx].MatchString(url)
	default:
		return false
	}
}

// Result synthesizes the terminal ValidationResult for an excluded link.
// TreatAsValid yields WORKING; otherwise SKIPPED. No network work happens
// for the link either way.
func (o *Outcome) Result(candidate model.LinkCandidate, linkType model.LinkType) model.ValidationResult {
	status := model.StatusSkipped
	message := "excluded by rule"
	if o.TreatAsValid {
		status = model.StatusWorking
		message = "excluded by rule, treated as valid"
	}
	if o.Reason != "" {
		message = o.Reason
	}
	return model.ValidationResult{
		URL:                candidate.Target,
		LinkType:           linkType,
		Status:             status,
		Message:            message,
		Excluded:           true,
		ExclusionReason:    o.Reason,
		DisplayText:        candidate.DisplayText,
		SourceLocationHint: candidate.SourceLocationHint,
	}
}
