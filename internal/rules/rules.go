package rules

import (
	"regexp"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
)

// Rule represents a configured pattern-based detector.
type Rule struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Languages         []string             `json:"languages"`
	Category          string               `json:"category"`
	Severity          config.SeverityLevel `json:"severity"`
	Pattern           string               `json:"pattern"`
	Global            bool                 `json:"global"`
	ContextWindowSize int                  `json:"context_window_size"`
	RequiresContext   []string             `json:"requires_context,omitempty"`
	ExcludeInContext  []string             `json:"exclude_in_context,omitempty"`
	RequireAllContext bool                 `json:"require_all_context,omitempty"`
	Message           string               `json:"message"`
	Suggestion        string               `json:"suggestion,omitempty"`
	References        []string             `json:"references,omitempty"`
	Enabled           bool                 `json:"enabled"`
	Builtin           bool                 `json:"builtin"`
}

// AppliesTo reports whether the rule covers the given language. A rule with
// no language list, or one containing the universal tag, covers everything.
func (r *Rule) AppliesTo(lang language.Language) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == language.Universal || l == string(lang) {
			return true
		}
	}
	return false
}

// Validate checks the fields a rule cannot function without. The pattern
// must compile here so a broken rule is rejected at the boundary instead of
// skipped on every scan.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return errEmptyID
	}
	if r.Name == "" {
		return errEmptyName
	}
	if r.Pattern == "" {
		return errEmptyPattern
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy so callers can hand rules across the snapshot
// boundary without sharing slices.
func (r *Rule) Clone() Rule {
	out := *r
	out.Languages = append([]string(nil), r.Languages...)
	out.RequiresContext = append([]string(nil), r.RequiresContext...)
	out.ExcludeInContext = append([]string(nil), r.ExcludeInContext...)
	out.References = append([]string(nil), r.References...)
	return out
}

// Builtins returns fresh copies of the stock rule set.
func Builtins() []Rule {
	out := make([]Rule, len(builtinRules))
	for i := range builtinRules {
		out[i] = builtinRules[i].Clone()
	}
	return out
}

var builtinRules = []Rule{
	{
		ID:         "hardcoded-secret",
		Name:       "Hardcoded Secret",
		Languages:  []string{language.Universal},
		Category:   "security",
		Severity:   config.SeverityCritical,
		Pattern:    `(?i)(api[_-]?key|apikey|secret|token|passwd|password)\s*[:=]\s*["'][^"']{8,}["']`,
		Global:     true,
		Message:    "Credential material is embedded directly in source",
		Suggestion: "Move secrets to environment variables or a secret manager",
		References: []string{"CWE-798", "OWASP A02:2021"},
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "empty-catch",
		Name:       "Empty Catch Block",
		Languages:  []string{language.Universal},
		Category:   "error-handling",
		Severity:   config.SeverityHigh,
		Pattern:    `catch\s*(\([^)]*\))?\s*\{\s*\}`,
		Global:     true,
		Message:    "Errors are silently swallowed by an empty catch block",
		Suggestion: "Log the error or rethrow it so failures stay visible",
		References: []string{"CWE-390"},
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "eval-usage",
		Name:       "Eval Usage",
		Languages:  []string{language.Universal},
		Category:   "security",
		Severity:   config.SeverityHigh,
		Pattern:    `\beval\s*\(`,
		Global:     true,
		Message:    "eval executes arbitrary strings as code",
		Suggestion: "Replace eval with explicit parsing or a lookup table",
		References: []string{"CWE-95"},
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "inner-html",
		Name:       "Unsafe innerHTML Assignment",
		Languages:  []string{language.Universal},
		Category:   "security",
		Severity:   config.SeverityHigh,
		Pattern:    `\.innerHTML\s*=`,
		Global:     true,
		Message:    "Assigning to innerHTML can introduce DOM-based XSS",
		Suggestion: "Use textContent or a sanitizing templating API",
		References: []string{"CWE-79"},
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "document-write",
		Name:       "document.write Usage",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "security",
		Severity:   config.SeverityMedium,
		Pattern:    `document\.write\s*\(`,
		Global:     true,
		Message:    "document.write blocks parsing and enables injection",
		Suggestion: "Build DOM nodes explicitly instead",
		References: []string{"CWE-79"},
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "loose-equality",
		Name:       "Loose Equality Comparison",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "code-quality",
		Severity:   config.SeverityMedium,
		Pattern:    `(^|[^=!<>])(==|!=)([^=]|$)`,
		Global:     true,
		Message:    "== and != coerce types before comparing",
		Suggestion: "Use === and !== for predictable comparisons",
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "var-keyword",
		Name:       "Legacy var Declaration",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "code-quality",
		Severity:   config.SeverityLow,
		Pattern:    `\bvar\s+[A-Za-z_$]`,
		Global:     true,
		Message:    "var is function-scoped and hoisted",
		Suggestion: "Prefer const, or let when reassignment is needed",
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "console-log",
		Name:       "Console Logging Left In",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "code-quality",
		Severity:   config.SeverityLow,
		Pattern:    `console\.(log|debug|info)\s*\(`,
		Global:     true,
		Message:    "Console output should not ship in production code",
		Suggestion: "Use a structured logger or remove the statement",
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "debugger-statement",
		Name:       "Debugger Statement",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "code-quality",
		Severity:   config.SeverityMedium,
		Pattern:    `\bdebugger\b`,
		Global:     true,
		Message:    "debugger halts execution when devtools are open",
		Suggestion: "Remove debugger statements before committing",
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:         "todo-comment",
		Name:       "TODO Marker Comment",
		Languages:  []string{language.Universal},
		Category:   "maintenance",
		Severity:   config.SeverityInfo,
		Pattern:    `(?i)\b(todo|fixme|hack)\b`,
		Global:     true,
		Message:    "Unresolved marker comment",
		Suggestion: "Track the work in an issue and link it, or resolve it",
		Enabled:    true,
		Builtin:    true,
	},
	{
		ID:               "insecure-http",
		Name:             "Insecure HTTP URL",
		Languages:        []string{language.Universal},
		Category:         "security",
		Severity:         config.SeverityMedium,
		Pattern:          `http://[^\s"']+`,
		Global:           true,
		ExcludeInContext: []string{"localhost", "127.0.0.1"},
		Message:          "Plain HTTP transports data unencrypted",
		Suggestion:       "Use https:// endpoints",
		References:       []string{"CWE-319"},
		Enabled:          true,
		Builtin:          true,
	},
	{
		ID:         "alert-call",
		Name:       "Alert Call",
		Languages:  []string{string(language.JavaScript), string(language.TypeScript)},
		Category:   "code-quality",
		Severity:   config.SeverityInfo,
		Pattern:    `\balert\s*\(`,
		Global:     true,
		Message:    "alert blocks the main thread and is unstylable",
		Suggestion: "Use an in-page notification component",
		Enabled:    true,
		Builtin:    true,
	},
}
