package matcher

import (
	"strings"
	"testing"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

func unit(src string) extractor.SourceUnit {
	return extractor.SourceUnit{Text: src, Language: language.JavaScript}
}

func evalRule() rules.Rule {
	return rules.Rule{
		ID:       "eval-usage",
		Name:     "Eval Usage",
		Category: "security",
		Severity: config.SeverityHigh,
		Pattern:  `eval\s*\(`,
		Global:   true,
		Enabled:  true,
	}
}

func TestMatchGlobalFindsEveryOccurrence(t *testing.T) {
	m := New(nil)
	res := m.Match(unit("eval(a); eval(b);"), nil, []rules.Rule{evalRule()})

	if len(res.Findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(res.Findings))
	}
	if res.Findings[0].Column != 0 || res.Findings[1].Column != 9 {
		t.Errorf("Expected columns 0 and 9, got %d and %d",
			res.Findings[0].Column, res.Findings[1].Column)
	}
	for _, f := range res.Findings {
		if f.Line != 1 {
			t.Errorf("Expected line 1, got %d", f.Line)
		}
		if f.RuleID != "eval-usage" {
			t.Errorf("Expected rule id eval-usage, got %s", f.RuleID)
		}
	}
}

func TestMatchNonGlobalStopsAtFirst(t *testing.T) {
	rule := evalRule()
	rule.Global = false

	res := New(nil).Match(unit("eval(a); eval(b);"), nil, []rules.Rule{rule})
	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 finding for non-global rule, got %d", len(res.Findings))
	}
	if res.Findings[0].Column != 0 {
		t.Errorf("Expected first occurrence at column 0, got %d", res.Findings[0].Column)
	}
}

func TestMatchDeduplicates(t *testing.T) {
	// The same rule supplied twice must not double-report.
	res := New(nil).Match(unit("eval(a);"), nil, []rules.Rule{evalRule(), evalRule()})
	if len(res.Findings) != 1 {
		t.Errorf("Expected deduplicated single finding, got %d", len(res.Findings))
	}
}

func TestMatchSkipsCommentOnlyLines(t *testing.T) {
	src := "// eval(disabled)\n/* eval(also) */\neval(live);"
	res := New(nil).Match(unit(src), nil, []rules.Rule{evalRule()})

	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(res.Findings))
	}
	if res.Findings[0].Line != 3 {
		t.Errorf("Expected finding on line 3, got %d", res.Findings[0].Line)
	}
}

func TestMatchMarkerRuleSeesComments(t *testing.T) {
	todo := rules.Rule{
		ID:       "todo-comment",
		Name:     "TODO Marker Comment",
		Category: "maintenance",
		Severity: config.SeverityInfo,
		Pattern:  `(?i)\b(todo|fixme|hack)\b`,
		Global:   true,
		Enabled:  true,
	}
	res := New(nil).Match(unit("// TODO: handle timeouts"), nil, []rules.Rule{todo})
	if len(res.Findings) != 1 {
		t.Fatalf("TODO rules must match inside comment-only lines, got %d findings", len(res.Findings))
	}
	if res.Findings[0].Column != 3 {
		t.Errorf("Expected column 3, got %d", res.Findings[0].Column)
	}
}

func TestMatchRequiresContext(t *testing.T) {
	rule := rules.Rule{
		ID:                "raw-query",
		Name:              "Raw Query With Request Data",
		Category:          "security",
		Severity:          config.SeverityCritical,
		Pattern:           `query\s*\(`,
		Global:            true,
		ContextWindowSize: 2,
		RequiresContext:   []string{"req.", "request."},
		Enabled:           true,
	}

	withContext := "const id = req.params.id;\nconst sql = build(id);\ndb.query(sql);"
	res := New(nil).Match(unit(withContext), nil, []rules.Rule{rule})
	if len(res.Findings) != 1 {
		t.Errorf("Expected match when a context marker is in the window, got %d", len(res.Findings))
	}

	withoutContext := "const sql = build(42);\ndb.query(sql);"
	res = New(nil).Match(unit(withoutContext), nil, []rules.Rule{rule})
	if len(res.Findings) != 0 {
		t.Errorf("Expected no match without context markers, got %d", len(res.Findings))
	}
}

func TestMatchRequireAllContext(t *testing.T) {
	rule := rules.Rule{
		ID:                "both-markers",
		Name:              "Both Markers",
		Severity:          config.SeverityMedium,
		Pattern:           `sink\(`,
		ContextWindowSize: 1,
		RequiresContext:   []string{"alpha", "beta"},
		RequireAllContext: true,
		Enabled:           true,
	}

	oneMarker := "alpha()\nsink(x)"
	if res := New(nil).Match(unit(oneMarker), nil, []rules.Rule{rule}); len(res.Findings) != 0 {
		t.Errorf("Expected no match with one of two required markers, got %d", len(res.Findings))
	}

	bothMarkers := "alpha()\nsink(x)\nbeta()"
	if res := New(nil).Match(unit(bothMarkers), nil, []rules.Rule{rule}); len(res.Findings) != 1 {
		t.Errorf("Expected match with both markers present, got %d", len(res.Findings))
	}
}

func TestMatchExcludeInContext(t *testing.T) {
	rule := rules.Rule{
		ID:               "insecure-http",
		Name:             "Insecure HTTP URL",
		Category:         "security",
		Severity:         config.SeverityMedium,
		Pattern:          `http://[^\s"']+`,
		Global:           true,
		ExcludeInContext: []string{"localhost", "127.0.0.1"},
		Enabled:          true,
	}

	res := New(nil).Match(unit(`fetch("http://api.example.com");`), nil, []rules.Rule{rule})
	if len(res.Findings) != 1 {
		t.Errorf("Expected match for remote http url, got %d", len(res.Findings))
	}

	res = New(nil).Match(unit(`fetch("http://localhost:3000");`), nil, []rules.Rule{rule})
	if len(res.Findings) != 0 {
		t.Errorf("Exclusion marker should veto the match, got %d", len(res.Findings))
	}
}

func TestMatchSkipsInvalidPattern(t *testing.T) {
	broken := rules.Rule{ID: "broken", Name: "Broken", Pattern: "[", Enabled: true}

	res := New(nil).Match(unit("eval(a);"), nil, []rules.Rule{broken, evalRule()})
	if len(res.SkippedRules) != 1 || res.SkippedRules[0] != "broken" {
		t.Errorf("Expected broken rule to be skipped, got %v", res.SkippedRules)
	}
	if len(res.Findings) != 1 {
		t.Errorf("Remaining rules must still run, got %d findings", len(res.Findings))
	}
}

func TestMatchStructuralUnusedVariable(t *testing.T) {
	facts := &extractor.Result{
		Variables: []extractor.VariableDecl{
			{Name: "unused", Kind: extractor.KindNoReassign, Loc: extractor.Location{Line: 3, Column: 6}, IsUnused: true},
			{Name: "used", Loc: extractor.Location{Line: 4, Column: 6}, Usages: []extractor.Location{{Line: 5}}},
		},
	}
	res := New(nil).Match(unit("const unused = 5;"), facts, nil)

	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 structural finding, got %d", len(res.Findings))
	}
	f := res.Findings[0]
	if f.RuleID != "unused-variable" || f.Title != "Unused Variable" {
		t.Errorf("Unexpected structural finding: %+v", f)
	}
	if f.Severity != config.SeverityInfo {
		t.Errorf("Expected info severity, got %v", f.Severity)
	}
	if f.Line != 3 || f.Column != 6 {
		t.Errorf("Expected declaration location 3:6, got %d:%d", f.Line, f.Column)
	}
}

func TestContextWindow(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}

	if got := contextWindow(lines, 2, 0); got != "c" {
		t.Errorf("Window 0 should be the line itself, got %q", got)
	}
	if got := contextWindow(lines, 2, 1); got != "b\nc\nd" {
		t.Errorf("Window 1 around c = %q", got)
	}
	if got := contextWindow(lines, 0, 2); got != "a\nb\nc" {
		t.Errorf("Window clamped at start = %q", got)
	}
	if got := contextWindow(lines, 4, 3); got != strings.Join(lines[1:], "\n") {
		t.Errorf("Window clamped at end = %q", got)
	}
}

func TestMatchDeterministicOrder(t *testing.T) {
	src := "eval(a);\neval(b);"
	first := New(nil).Match(unit(src), nil, []rules.Rule{evalRule()})
	second := New(nil).Match(unit(src), nil, []rules.Rule{evalRule()})

	if len(first.Findings) != len(second.Findings) {
		t.Fatalf("Runs disagree on finding count: %d vs %d", len(first.Findings), len(second.Findings))
	}
	for i := range first.Findings {
		if first.Findings[i].ID != second.Findings[i].ID {
			t.Errorf("Finding %d differs between identical runs", i)
		}
	}
}
