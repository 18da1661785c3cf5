package matcher

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

// patternCacheSize bounds the lazily populated compiled-pattern cache.
const patternCacheSize = 256

// Matcher scans source text line by line against the active rule set. It is
// deterministic for identical inputs: rules run in the order given, lines in
// document order.
type Matcher struct {
	logger   *zap.Logger
	patterns *lru.Cache[string, *regexp.Regexp]
}

// Result carries the matcher's findings plus the ids of rules skipped
// because their pattern failed to compile.
type Result struct {
	Findings     []finding.Finding
	SkippedRules []string
}

// New creates a new matcher instance
func New(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, *regexp.Regexp](patternCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(fmt.Sprintf("pattern cache init: %v", err))
	}
	return &Matcher{logger: logger, patterns: cache}
}

// Match runs every active rule over the source unit and returns deduplicated
// findings. Structural facts contribute unused-variable findings on top of
// the pattern rules. A rule whose pattern cannot compile is skipped and
// reported in SkippedRules; it never aborts the scan for other rules.
func (m *Matcher) Match(unit extractor.SourceUnit, facts *extractor.Result, active []rules.Rule) *Result {
	res := &Result{}
	lines := strings.Split(unit.Text, "\n")
	seen := make(map[string]struct{})

	for i := range active {
		rule := &active[i]
		re, err := m.compile(rule)
		if err != nil {
			m.logger.Warn("Skipping rule with invalid pattern",
				zap.String("rule", rule.ID),
				zap.Error(err))
			res.SkippedRules = append(res.SkippedRules, rule.ID)
			continue
		}
		m.matchRule(rule, re, lines, seen, res)
	}

	if facts != nil {
		res.Findings = append(res.Findings, m.structuralFindings(facts)...)
	}
	return res
}

// matchRule applies one rule to every line.
func (m *Matcher) matchRule(rule *rules.Rule, re *regexp.Regexp, lines []string, seen map[string]struct{}, res *Result) {
	markerRule := isMarkerRule(rule)

	for i, line := range lines {
		if isCommentOnly(line) && !markerRule {
			continue
		}

		var spans [][]int
		if rule.Global {
			spans = re.FindAllStringIndex(line, -1)
		} else if span := re.FindStringIndex(line); span != nil {
			spans = [][]int{span}
		}
		if len(spans) == 0 {
			continue
		}

		context := contextWindow(lines, i, rule.ContextWindowSize)
		if !contextAllows(rule, context) {
			continue
		}

		for _, span := range spans {
			matched := line[span[0]:span[1]]
			key := fmt.Sprintf("%s:%d:%d:%s", rule.ID, i, span[0], matched)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			res.Findings = append(res.Findings, finding.Finding{
				ID:          fmt.Sprintf("%s-%d-%d", rule.ID, i+1, span[0]),
				RuleID:      rule.ID,
				Source:      finding.SourceRule,
				Title:       rule.Name,
				Description: rule.Message,
				Severity:    rule.Severity,
				Line:        i + 1,
				Column:      span[0],
				EndLine:     i + 1,
				EndColumn:   span[1],
				Category:    rule.Category,
				Suggestion:  rule.Suggestion,
				References:  append([]string(nil), rule.References...),
				Snippet:     strings.TrimSpace(line),
			})
		}
	}
}

// structuralFindings reports variables that are never used after
// declaration, derived from the extractor's usage pass.
func (m *Matcher) structuralFindings(facts *extractor.Result) []finding.Finding {
	var out []finding.Finding
	for i := range facts.Variables {
		v := &facts.Variables[i]
		if !v.IsUnused {
			continue
		}
		out = append(out, finding.Finding{
			ID:          fmt.Sprintf("unused-variable-%d-%d", v.Loc.Line, v.Loc.Column),
			RuleID:      "unused-variable",
			Source:      finding.SourceRule,
			Title:       "Unused Variable",
			Description: fmt.Sprintf("Variable %q is declared but never used", v.Name),
			Severity:    config.SeverityInfo,
			Line:        v.Loc.Line,
			Column:      v.Loc.Column,
			Category:    "code-quality",
			Suggestion:  "Remove the declaration or use the value",
		})
	}
	return out
}

// compile returns the compiled pattern for a rule, populating the cache
// lazily on first use. The cache is keyed by pattern text so an updated
// rule never sees a stale compilation.
func (m *Matcher) compile(rule *rules.Rule) (*regexp.Regexp, error) {
	if re, ok := m.patterns.Get(rule.Pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return nil, err
	}
	m.patterns.Add(rule.Pattern, re)
	return re, nil
}

// contextWindow joins the lines around index i per the rule's window size.
// With no window the line itself is the context.
func contextWindow(lines []string, i, window int) string {
	if window <= 0 {
		return lines[i]
	}
	start := i - window
	if start < 0 {
		start = 0
	}
	end := i + window + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// contextAllows applies the rule's inclusion and exclusion markers to the
// context string. Inclusion is any-of by default; RequireAllContext demands
// every marker. Any exclusion marker present vetoes the match.
func contextAllows(rule *rules.Rule, context string) bool {
	if len(rule.RequiresContext) > 0 {
		if rule.RequireAllContext {
			for _, marker := range rule.RequiresContext {
				if !strings.Contains(context, marker) {
					return false
				}
			}
		} else {
			found := false
			for _, marker := range rule.RequiresContext {
				if strings.Contains(context, marker) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, marker := range rule.ExcludeInContext {
		if strings.Contains(context, marker) {
			return false
		}
	}
	return true
}

// isCommentOnly reports whether a line holds nothing but comment syntax.
func isCommentOnly(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

// isMarkerRule reports whether a rule targets end-of-line marker comments
// and therefore must still see comment-only lines.
func isMarkerRule(rule *rules.Rule) bool {
	id := strings.ToLower(rule.ID + " " + rule.Name)
	return strings.Contains(id, "todo") || strings.Contains(id, "fixme")
}
