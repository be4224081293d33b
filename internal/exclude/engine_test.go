package exclude

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

func TestEngine_MatchTypes(t *testing.T) {
	tests := []struct {
		name    string
		rule    model.ExclusionRule
		url     string
		matched bool
	}{
		{"exact match", model.ExclusionRule{Pattern: "https://example.com/page", MatchType: model.MatchExact}, "https://EXAMPLE.com/page", true},
		{"exact miss", model.ExclusionRule{Pattern: "https://example.com/page", MatchType: model.MatchExact}, "https://example.com/page2", false},
		{"prefix", model.ExclusionRule{Pattern: "https://intranet.", MatchType: model.MatchPrefix}, "https://INTRANET.corp/home", true},
		{"suffix", model.ExclusionRule{Pattern: ".pdf", MatchType: model.MatchSuffix}, "https://example.com/doc.PDF", true},
		{"contains", model.ExclusionRule{Pattern: "internal.example.com", MatchType: model.MatchContains}, "https://internal.example.com/page", true},
		{"pattern", model.ExclusionRule{Pattern: `example\.(org|net)`, MatchType: model.MatchPattern}, "https://example.org/x", true},
		{"pattern miss", model.ExclusionRule{Pattern: `example\.(org|net)`, MatchType: model.MatchPattern}, "https://example.com/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine([]model.ExclusionRule{tt.rule})
			outcome := engine.Evaluate(tt.url)
			if (outcome != nil) != tt.matched {
				t.Errorf("Evaluate(%q) matched=%v, want %v", tt.url, outcome != nil, tt.matched)
			}
		})
	}
}

func TestEngine_FirstMatchWins(t *testing.T) {
	engine := NewEngine([]model.ExclusionRule{
		{Pattern: "example.com", MatchType: model.MatchContains, Reason: "first", TreatAsValid: true},
		{Pattern: "example.com/secret", MatchType: model.MatchContains, Reason: "second", TreatAsValid: false},
	})

	outcome := engine.Evaluate("https://example.com/secret")
	if outcome == nil {
		t.Fatal("Expected a match")
	}
	if outcome.Reason != "first" {
		t.Errorf("Expected first rule to win, got reason %q", outcome.Reason)
	}
	if !outcome.TreatAsValid {
		t.Error("Expected first rule's TreatAsValid to apply")
	}
}

func TestEngine_NoMatch(t *testing.T) {
	engine := NewEngine([]model.ExclusionRule{
		{Pattern: "other.com", MatchType: model.MatchContains},
	})
	if outcome := engine.Evaluate("https://example.com"); outcome != nil {
		t.Errorf("Expected no match, got %+v", outcome)
	}
}

func TestEngine_BadPatternDropped(t *testing.T) {
	engine := NewEngine([]model.ExclusionRule{
		{Pattern: "([unclosed", MatchType: model.MatchPattern},
		{Pattern: "example.com", MatchType: model.MatchContains, Reason: "ok"},
	})
	outcome := engine.Evaluate("https://example.com")
	if outcome == nil || outcome.Reason != "ok" {
		t.Errorf("Expected bad pattern to be dropped and next rule to match, got %+v", outcome)
	}
}

func TestOutcome_Result(t *testing.T) {
	candidate := model.LinkCandidate{Target: "https://internal.example.com/page", DisplayText: "link"}

	valid := (&Outcome{TreatAsValid: true, Reason: "allow-listed"}).Result(candidate, model.LinkTypeWeb)
	if valid.Status != model.StatusWorking {
		t.Errorf("TreatAsValid outcome status = %v, want WORKING", valid.Status)
	}
	if !valid.Excluded || valid.ExclusionReason != "allow-listed" {
		t.Errorf("Expected excluded result with reason, got %+v", valid)
	}

	skipped := (&Outcome{TreatAsValid: false}).Result(candidate, model.LinkTypeWeb)
	if skipped.Status != model.StatusSkipped {
		t.Errorf("Skip outcome status = %v, want SKIPPED", skipped.Status)
	}
	if skipped.Attempts != 0 {
		t.Errorf("Excluded result should have zero attempts, got %d", skipped.Attempts)
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - pattern: internal.example.com
    match_type: contains
    reason: intranet hosts are always reachable
    treat_as_valid: true
  - pattern: '\.local$'
    match_type: pattern
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].MatchType != model.MatchContains || !rules[0].TreatAsValid {
		t.Errorf("First rule parsed wrong: %+v", rules[0])
	}
}

func TestLoadRules_RejectsUnknownMatchType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := "rules:\n  - pattern: x\n    match_type: glob\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("Expected error for unknown match type")
	}
}

func TestLoadRules_RejectsUncompilablePattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := "rules:\n  - pattern: '([unclosed'\n    match_type: pattern\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRules(path)
	if err == nil {
		t.Fatal("Expected error for uncompilable pattern rule")
	}
	if !strings.Contains(err.Error(), "rule 1") {
		t.Errorf("Error should name the offending rule: %v", err)
	}
}
