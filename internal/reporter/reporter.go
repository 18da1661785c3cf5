package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/engine"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
)

// FileReport pairs a scanned file with its engine report.
type FileReport struct {
	File   string             `json:"file"`
	Report *engine.ScanReport `json:"report"`
}

// Reporter renders scan reports
type Reporter struct {
	config *config.Config
	logger *zap.Logger
}

// New creates a new reporter instance
func New(cfg *config.Config, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{config: cfg, logger: logger}
}

// Generate renders the reports in the configured format and writes them to
// the output file or stdout.
func (r *Reporter) Generate(reports []FileReport) error {
	var output string
	var err error

	switch strings.ToLower(r.config.Format) {
	case "json":
		output, err = r.generateJSON(reports)
	case "text", "":
		output, err = r.generateText(reports)
	default:
		return fmt.Errorf("unsupported output format: %s", r.config.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if r.config.OutputFile != "" {
		if err := os.WriteFile(r.config.OutputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write report to file: %w", err)
		}
		r.logger.Info("Report written", zap.String("file", r.config.OutputFile))
	} else {
		fmt.Print(output)
	}
	return nil
}

// generateText generates a human-readable text report
func (r *Reporter) generateText(reports []FileReport) (string, error) {
	var sb strings.Builder
	minSeverity := config.ParseSeverity(r.config.Severity)

	sb.WriteString("=== CodeSentinel Report ===\n\n")

	for _, fr := range reports {
		findings := filterBySeverity(fr.Report.Findings, minSeverity)

		sb.WriteString(fmt.Sprintf("%s\n", fr.File))
		sb.WriteString(fmt.Sprintf("  Architecture score: %d/100\n", fr.Report.Score))
		if fr.Report.Degraded {
			sb.WriteString("  NOTE: analysis degraded, structural facts incomplete\n")
			for _, e := range fr.Report.Errors {
				sb.WriteString(fmt.Sprintf("    %s\n", e))
			}
		}
		if len(fr.Report.SkippedRules) > 0 {
			sb.WriteString(fmt.Sprintf("  Skipped rules: %s\n", strings.Join(fr.Report.SkippedRules, ", ")))
		}

		counts := severityCounts(findings)
		for sev := config.SeverityCritical; sev >= config.SeverityInfo; sev-- {
			if counts[sev] > 0 {
				sb.WriteString(fmt.Sprintf("  %s: %d\n", strings.ToUpper(sev.String()), counts[sev]))
			}
		}

		if len(findings) == 0 {
			sb.WriteString("  No findings at or above the requested severity.\n\n")
			continue
		}

		sb.WriteString("\n")
		for i, f := range findings {
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, f.Title))
			sb.WriteString(fmt.Sprintf("      Severity: %s\n", strings.ToUpper(f.Severity.String())))
			sb.WriteString(fmt.Sprintf("      Location: line %d, col %d\n", f.Line, f.Column))
			sb.WriteString(fmt.Sprintf("      Category: %s\n", f.Category))
			if f.RuleID != "" {
				sb.WriteString(fmt.Sprintf("      Rule: %s\n", f.RuleID))
			}
			if f.Source == finding.SourceReview {
				sb.WriteString("      Source: external review\n")
			}
			if f.Description != "" {
				sb.WriteString(fmt.Sprintf("      Description: %s\n", f.Description))
			}
			if f.Snippet != "" {
				sb.WriteString(fmt.Sprintf("      Code: %s\n", f.Snippet))
			}
			if f.Suggestion != "" {
				sb.WriteString(fmt.Sprintf("      Suggestion: %s\n", f.Suggestion))
			}
			for _, ref := range f.References {
				sb.WriteString(fmt.Sprintf("      Ref: %s\n", ref))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// generateJSON generates a JSON report
func (r *Reporter) generateJSON(reports []FileReport) (string, error) {
	minSeverity := config.ParseSeverity(r.config.Severity)

	filtered := make([]FileReport, len(reports))
	for i, fr := range reports {
		clone := *fr.Report
		clone.Findings = filterBySeverity(fr.Report.Findings, minSeverity)
		filtered[i] = FileReport{File: fr.File, Report: &clone}
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func filterBySeverity(findings []finding.Finding, min config.SeverityLevel) []finding.Finding {
	var out []finding.Finding
	for _, f := range findings {
		if f.Severity >= min {
			out = append(out, f)
		}
	}
	return out
}

func severityCounts(findings []finding.Finding) map[config.SeverityLevel]int {
	counts := make(map[config.SeverityLevel]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
