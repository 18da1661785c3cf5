package main

import (
	"testing"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/engine"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

func TestFullScanPipeline(t *testing.T) {
	registry, err := rules.NewRegistry(rules.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	src := `const apiKey = "sk-1234567890ab";
try { risky(); } catch (e) {}
`
	unit := extractor.SourceUnit{Text: src, Language: language.JavaScript}
	active := registry.ActiveRulesFor(language.JavaScript)

	report := engine.New(nil).Analyze(unit, active, nil)

	if report.Degraded {
		t.Errorf("Scan should not be degraded: %v", report.Errors)
	}
	if len(report.Findings) == 0 {
		t.Fatal("Expected findings from the builtin rule set")
	}

	var critical, high bool
	for _, f := range report.Findings {
		if f.RuleID == "hardcoded-secret" && f.Severity == config.SeverityCritical && f.Line == 1 {
			critical = true
		}
		if f.RuleID == "empty-catch" && f.Severity == config.SeverityHigh && f.Line == 2 {
			high = true
		}
	}
	if !critical {
		t.Error("Expected a critical hardcoded-secret finding on line 1")
	}
	if !high {
		t.Error("Expected a high empty-catch finding on line 2")
	}
	if report.Score >= 100 {
		t.Errorf("Score should reflect weighted findings, got %d", report.Score)
	}
}
