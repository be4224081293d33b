package exclude

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// ruleFile is the on-disk shape of an exclusion rules file
type ruleFile struct {
	Rules []model.ExclusionRule `yaml:"rules"`
}

// LoadRules reads an ordered exclusion rule list from a YAML file
func LoadRules(path string) ([]model.ExclusionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	for i, rule := range file.Rules {
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	return file.Rules, nil
}

func validateRule(rule model.ExclusionRule) error {
	if rule.Pattern == "" {
		return fmt.Errorf("empty pattern")
	}
	switch rule.MatchType {
	case model.MatchPattern:
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", rule.Pattern, err)
		}
		return nil
	case model.MatchExact, model.MatchPrefix, model.MatchSuffix, model.MatchContains:
		return nil
	default:
		return fmt.Errorf("unknown match type %q", rule.MatchType)
	}
}
