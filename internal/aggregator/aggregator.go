package aggregator

import (
	"sort"
	"strings"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
)

// Report is the aggregated output of one scan: findings ordered by severity
// (descending, ties keep discovery order) plus the architecture score.
type Report struct {
	Findings []finding.Finding `json:"findings"`
	Score    int               `json:"score"`
}

// Merge combines rule findings with optionally supplied external findings
// into one deduplicated, severity-sorted report. It is a pure function with
// no state between calls.
//
// An external finding is dropped when its title matches an existing
// finding's title case-insensitively, or when it shares both line number and
// category with an existing finding. The score is computed from the final
// deduplicated list, never from pre-merge partials.
func Merge(ruleFindings, externalFindings []finding.Finding) Report {
	merged := make([]finding.Finding, 0, len(ruleFindings)+len(externalFindings))
	merged = append(merged, ruleFindings...)

	for _, ext := range externalFindings {
		if isDuplicate(&ext, merged) {
			continue
		}
		merged = append(merged, ext)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Severity > merged[j].Severity
	})

	return Report{
		Findings: merged,
		Score:    Score(merged),
	}
}

// isDuplicate applies the cross-source dedup rule.
func isDuplicate(ext *finding.Finding, existing []finding.Finding) bool {
	title := ext.NormalizedTitle()
	for i := range existing {
		if existing[i].NormalizedTitle() == title {
			return true
		}
		if ext.Line != 0 && existing[i].Line == ext.Line &&
			strings.EqualFold(existing[i].Category, ext.Category) {
			return true
		}
	}
	return false
}

// Score computes the 0-100 architecture score from weighted severity
// counts: 25 per critical, 15 per high, 5 per medium, floored at zero.
func Score(findings []finding.Finding) int {
	score := 100
	for i := range findings {
		switch findings[i].Severity {
		case config.SeverityCritical:
			score -= 25
		case config.SeverityHigh:
			score -= 15
		case config.SeverityMedium:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
