package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/engine"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
)

func sampleReports() []FileReport {
	return []FileReport{
		{
			File: "src/app.js",
			Report: &engine.ScanReport{
				Score: 60,
				Findings: []finding.Finding{
					{
						ID:       "hardcoded-secret-1-6",
						RuleID:   "hardcoded-secret",
						Source:   finding.SourceRule,
						Title:    "Hardcoded Secret",
						Severity: config.SeverityCritical,
						Line:     1,
						Column:   6,
						Category: "security",
						Snippet:  `const password = "supersecret123";`,
					},
					{
						ID:       "review-1",
						Source:   finding.SourceReview,
						Title:    "Race Condition",
						Severity: config.SeverityHigh,
						Line:     30,
						Category: "concurrency",
					},
					{
						ID:       "unused-variable-1-6",
						RuleID:   "unused-variable",
						Source:   finding.SourceRule,
						Title:    "Unused Variable",
						Severity: config.SeverityInfo,
						Line:     1,
						Column:   6,
						Category: "code-quality",
					},
				},
			},
		},
	}
}

func TestGenerateTextReport(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.txt")
	cfg := &config.Config{Format: "text", Severity: "info", OutputFile: outFile}

	if err := New(cfg, nil).Generate(sampleReports()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"=== CodeSentinel Report ===",
		"src/app.js",
		"Architecture score: 60/100",
		"Hardcoded Secret",
		"CRITICAL: 1",
		"line 1, col 6",
		"Source: external review",
		"Unused Variable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text report missing %q", want)
		}
	}
}

func TestGenerateTextSeverityFilter(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.txt")
	cfg := &config.Config{Format: "text", Severity: "high", OutputFile: outFile}

	if err := New(cfg, nil).Generate(sampleReports()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	data, _ := os.ReadFile(outFile)
	out := string(data)

	if !strings.Contains(out, "Hardcoded Secret") {
		t.Error("Critical finding must survive the high filter")
	}
	if !strings.Contains(out, "Race Condition") {
		t.Error("High finding must survive the high filter")
	}
	if strings.Contains(out, "Unused Variable") {
		t.Error("Info finding must be filtered out at high severity")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.json")
	cfg := &config.Config{Format: "json", Severity: "info", OutputFile: outFile}

	if err := New(cfg, nil).Generate(sampleReports()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}

	var decoded []FileReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSON report does not parse: %v", err)
	}
	if len(decoded) != 1 || decoded[0].File != "src/app.js" {
		t.Fatalf("Unexpected decoded report: %+v", decoded)
	}
	if decoded[0].Report.Score != 60 {
		t.Errorf("Expected score 60, got %d", decoded[0].Report.Score)
	}
	if len(decoded[0].Report.Findings) != 3 {
		t.Errorf("Expected 3 findings, got %d", len(decoded[0].Report.Findings))
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	cfg := &config.Config{Format: "xml"}
	if err := New(cfg, nil).Generate(sampleReports()); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
