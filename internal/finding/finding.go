package finding

import (
	"strings"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
)

// Source identifies where a finding came from.
const (
	SourceRule   = "rule"
	SourceReview = "review"
)

// Finding represents a single reported issue instance
type Finding struct {
	ID          string               `json:"id"`
	RuleID      string               `json:"rule_id,omitempty"`
	Source      string               `json:"source"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Severity    config.SeverityLevel `json:"severity"`
	Line        int                  `json:"line"`
	Column      int                  `json:"column"`
	EndLine     int                  `json:"end_line,omitempty"`
	EndColumn   int                  `json:"end_column,omitempty"`
	Category    string               `json:"category"`
	Suggestion  string               `json:"suggestion,omitempty"`
	References  []string             `json:"references,omitempty"`
	Snippet     string               `json:"snippet,omitempty"`
}

// NormalizedTitle returns the title lowered and trimmed for cross-source
// deduplication.
func (f *Finding) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(f.Title))
}
