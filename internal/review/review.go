package review

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
)

// ParseFindings decodes an external reviewer payload into findings. The
// payload is either a JSON array of finding objects or semi-structured text
// following a fixed label grammar; both forms are accepted interchangeably.
// A payload that yields no findings in either form is a parse failure; the
// caller degrades to rule-based results alone.
func ParseFindings(payload string) ([]finding.Finding, error) {
	trimmed := stripFences(payload)
	if trimmed == "" {
		return nil, fmt.Errorf("empty review payload")
	}

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if out, err := parseJSON(trimmed); err == nil && len(out) > 0 {
			return out, nil
		}
	}

	out := parseLabeled(trimmed)
	if len(out) == 0 {
		return nil, fmt.Errorf("review payload is neither valid JSON nor labeled issue text")
	}
	return out, nil
}

// jsonFinding accepts the reviewer's field synonyms side by side.
type jsonFinding struct {
	Severity     string     `json:"severity"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	IssueSummary string     `json:"issue_summary"`
	Description  string     `json:"description"`
	Line         jsonNumber `json:"line"`
	WhyProblem   string     `json:"whyProblem"`
	WhyRisky     string     `json:"why_risky"`
	BestPractice string     `json:"bestPractice"`
	CorrectBest  string     `json:"correct_best_practice"`
	Category     string     `json:"category"`
	Framework    string     `json:"framework"`
	Platform     string     `json:"platform"`
}

// jsonNumber tolerates line numbers arriving as numbers or strings.
type jsonNumber int

func (n *jsonNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = jsonNumber(v)
	return nil
}

func parseJSON(payload string) ([]finding.Finding, error) {
	var items []jsonFinding
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		// A single object is accepted as a one-item array.
		var one jsonFinding
		if err2 := json.Unmarshal([]byte(payload), &one); err2 != nil {
			return nil, err
		}
		items = []jsonFinding{one}
	}

	var out []finding.Finding
	for _, item := range items {
		f := finding.Finding{
			Source:      finding.SourceReview,
			Title:       firstNonEmpty(item.Title, item.IssueSummary),
			Description: firstNonEmpty(item.Description, item.WhyProblem, item.WhyRisky),
			Severity:    ParseReviewSeverity(item.Severity),
			Line:        int(item.Line),
			Category:    firstNonEmpty(item.Category, item.Type),
			Suggestion:  firstNonEmpty(item.BestPractice, item.CorrectBest),
		}
		if f.Title == "" {
			continue
		}
		if platform := firstNonEmpty(item.Platform, item.Framework); platform != "" {
			f.References = append(f.References, "Platform: "+platform)
		}
		f.ID = fmt.Sprintf("review-%d", len(out)+1)
		out = append(out, f)
	}
	return out, nil
}

// labeled-text grammar: longest labels first so "Issue Summary:" wins over
// "Issue:".
var labels = []struct {
	prefix string
	field  string
}{
	{"correct best practice:", "suggestion"},
	{"best practice:", "suggestion"},
	{"issue summary:", "title"},
	{"issue:", "title"},
	{"why risky:", "why"},
	{"why:", "why"},
	{"description:", "description"},
	{"platform:", "platform"},
	{"severity:", "severity"},
	{"category:", "category"},
	{"line:", "line"},
}

type labeledBlock map[string]string

func parseLabeled(payload string) []finding.Finding {
	var out []finding.Finding
	block := labeledBlock{}
	current := ""

	flush := func() {
		if f, ok := blockToFinding(block, len(out)+1); ok {
			out = append(out, f)
		}
		block = labeledBlock{}
		current = ""
	}

	for _, raw := range strings.Split(payload, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimLeft(line, "-*• \t")
		line = trimListNumber(line)

		if line == "" || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "===") {
			current = ""
			continue
		}

		matched := false
		lower := strings.ToLower(line)
		for _, l := range labels {
			if strings.HasPrefix(lower, l.prefix) {
				if _, seen := block[l.field]; seen {
					flush()
				}
				block[l.field] = strings.TrimSpace(line[len(l.prefix):])
				current = l.field
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// Unlabeled line: continuation of the current field's value.
		if current != "" {
			block[current] = strings.TrimSpace(block[current] + " " + line)
		}
	}
	flush()

	return out
}

func blockToFinding(block labeledBlock, idx int) (finding.Finding, bool) {
	title := block["title"]
	if title == "" {
		return finding.Finding{}, false
	}
	f := finding.Finding{
		ID:          fmt.Sprintf("review-%d", idx),
		Source:      finding.SourceReview,
		Title:       title,
		Description: firstNonEmpty(block["description"], block["why"]),
		Severity:    ParseReviewSeverity(block["severity"]),
		Category:    block["category"],
		Suggestion:  block["suggestion"],
	}
	if line, err := strconv.Atoi(strings.TrimSpace(block["line"])); err == nil {
		f.Line = line
	}
	if block["platform"] != "" {
		f.References = append(f.References, "Platform: "+block["platform"])
	}
	return f, true
}

// ParseReviewSeverity maps a reviewer severity word onto the canonical
// scale. Both the critical/high/medium/low/info and the error/warning/info
// schemes are accepted.
func ParseReviewSeverity(s string) config.SeverityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return config.SeverityCritical
	case "high", "error":
		return config.SeverityHigh
	case "medium", "warning", "warn":
		return config.SeverityMedium
	case "low":
		return config.SeverityLow
	case "info", "informational", "note":
		return config.SeverityInfo
	default:
		return config.SeverityMedium
	}
}

// ToReviewSeverity maps a canonical severity onto the reviewer's
// error/warning/info scheme.
func ToReviewSeverity(level config.SeverityLevel) string {
	switch level {
	case config.SeverityCritical, config.SeverityHigh:
		return "error"
	case config.SeverityMedium, config.SeverityLow:
		return "warning"
	default:
		return "info"
	}
}

// stripFences removes surrounding markdown code fences reviewers tend to
// wrap payloads in.
func stripFences(payload string) string {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func trimListNumber(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
