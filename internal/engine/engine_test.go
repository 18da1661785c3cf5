package engine

import (
	"testing"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

func builtinsByID(t *testing.T, ids ...string) []rules.Rule {
	t.Helper()
	byID := map[string]rules.Rule{}
	for _, rule := range rules.Builtins() {
		byID[rule.ID] = rule
	}
	var out []rules.Rule
	for _, id := range ids {
		rule, ok := byID[id]
		if !ok {
			t.Fatalf("Unknown builtin %s", id)
		}
		out = append(out, rule)
	}
	return out
}

func TestAnalyzeEndToEnd(t *testing.T) {
	src := `const password = "supersecret123";
try {
  risky();
} catch (e) {}
`
	unit := extractor.SourceUnit{Text: src, Language: language.JavaScript}
	active := builtinsByID(t, "hardcoded-secret", "empty-catch")

	report := New(nil).Analyze(unit, active, nil)

	if report.Degraded {
		t.Errorf("Scan should not be degraded: %v", report.Errors)
	}
	if len(report.Findings) != 3 {
		t.Fatalf("Expected 3 findings (secret, catch, unused var), got %d: %+v",
			len(report.Findings), report.Findings)
	}

	// Severity-descending: critical secret, high catch, info unused variable.
	if report.Findings[0].RuleID != "hardcoded-secret" || report.Findings[0].Line != 1 {
		t.Errorf("Expected hardcoded-secret on line 1 first, got %+v", report.Findings[0])
	}
	if report.Findings[1].RuleID != "empty-catch" || report.Findings[1].Line != 4 {
		t.Errorf("Expected empty-catch on line 4 second, got %+v", report.Findings[1])
	}
	if report.Findings[2].RuleID != "unused-variable" {
		t.Errorf("Expected unused-variable last, got %+v", report.Findings[2])
	}

	if report.Score != 60 {
		t.Errorf("Expected score 60 (100-25-15), got %d", report.Score)
	}

	if report.Facts == nil || len(report.Facts.Variables) != 1 {
		t.Errorf("Expected structural facts with one variable, got %+v", report.Facts)
	}
}

func TestAnalyzeMergesExternalFindings(t *testing.T) {
	unit := extractor.SourceUnit{Text: "eval(input);\n", Language: language.JavaScript}
	active := builtinsByID(t, "eval-usage")
	external := []finding.Finding{
		{ID: "review-1", Source: finding.SourceReview, Title: "Race Condition",
			Severity: config.SeverityCritical, Line: 30, Category: "concurrency"},
		{ID: "review-2", Source: finding.SourceReview, Title: "eval usage",
			Severity: config.SeverityHigh, Line: 1, Category: "security"},
	}

	report := New(nil).Analyze(unit, active, external)

	if len(report.Findings) != 2 {
		t.Fatalf("Expected 2 findings after dedup, got %d", len(report.Findings))
	}
	if report.Findings[0].ID != "review-1" {
		t.Errorf("Expected the external critical finding first, got %s", report.Findings[0].ID)
	}
	if report.Findings[1].RuleID != "eval-usage" {
		t.Errorf("Expected the rule finding to survive dedup, got %+v", report.Findings[1])
	}
}

func TestAnalyzeReportsSkippedRules(t *testing.T) {
	unit := extractor.SourceUnit{Text: "eval(input);\n", Language: language.JavaScript}
	active := []rules.Rule{{ID: "broken", Name: "Broken", Pattern: "[", Enabled: true}}

	report := New(nil).Analyze(unit, active, nil)
	if len(report.SkippedRules) != 1 || report.SkippedRules[0] != "broken" {
		t.Errorf("Expected broken rule reported as skipped, got %v", report.SkippedRules)
	}
}

func TestAnalyzeEmptySource(t *testing.T) {
	unit := extractor.SourceUnit{Text: "", Language: language.TypeScript}
	report := New(nil).Analyze(unit, builtinsByID(t, "eval-usage"), nil)

	if len(report.Findings) != 0 {
		t.Errorf("Expected no findings for empty source, got %d", len(report.Findings))
	}
	if report.Score != 100 {
		t.Errorf("Expected perfect score for empty source, got %d", report.Score)
	}
}
