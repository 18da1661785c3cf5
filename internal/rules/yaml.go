package rules

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
)

// yamlRule is the YAML wire form of a rule. Severity travels as its string
// name so rule files stay hand-editable.
type yamlRule struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Languages         []string `yaml:"languages,omitempty"`
	Category          string   `yaml:"category"`
	Severity          string   `yaml:"severity"`
	Pattern           string   `yaml:"pattern"`
	Global            bool     `yaml:"global"`
	ContextWindowSize int      `yaml:"context_window_size,omitempty"`
	RequiresContext   []string `yaml:"requires_context,omitempty"`
	ExcludeInContext  []string `yaml:"exclude_in_context,omitempty"`
	RequireAllContext bool     `yaml:"require_all_context,omitempty"`
	Message           string   `yaml:"message"`
	Suggestion        string   `yaml:"suggestion,omitempty"`
	References        []string `yaml:"references,omitempty"`
	Enabled           bool     `yaml:"enabled"`
}

// yamlRuleSet is the document shape for import/export.
type yamlRuleSet struct {
	Rules []yamlRule `yaml:"rules"`
}

// ImportYAML merges rules from a YAML document into the registry. Entries
// with the id of an existing rule replace it; invalid entries are skipped
// with a warning. Returns the number of rules applied.
func (r *Registry) ImportYAML(data []byte) (int, error) {
	var doc yamlRuleSet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse rule document: %w", err)
	}
	if len(doc.Rules) == 0 {
		return 0, fmt.Errorf("rule document contains no rules")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.copyLocked()
	applied := 0
	for _, yr := range doc.Rules {
		rule := yr.toRule()
		if err := rule.Validate(); err != nil {
			r.logger.Warn("Skipping invalid imported rule",
				zap.String("id", yr.ID),
				zap.Error(err))
			continue
		}
		replaced := false
		for i := range next {
			if next[i].ID == rule.ID {
				next[i] = rule
				replaced = true
				break
			}
		}
		if !replaced {
			next = append(next, rule)
		}
		applied++
	}
	if applied == 0 {
		return 0, fmt.Errorf("no valid rules in document")
	}
	if err := r.store.Save(next); err != nil {
		return 0, fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	r.logger.Info("Rules imported", zap.Int("applied", applied))
	return applied, nil
}

// ExportYAML renders the full rule set as a YAML document.
func (r *Registry) ExportYAML() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := yamlRuleSet{Rules: make([]yamlRule, len(r.rules))}
	for i := range r.rules {
		doc.Rules[i] = toYAMLRule(&r.rules[i])
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule set: %w", err)
	}
	return data, nil
}

func (y *yamlRule) toRule() Rule {
	return Rule{
		ID:                y.ID,
		Name:              y.Name,
		Languages:         y.Languages,
		Category:          y.Category,
		Severity:          config.ParseSeverity(y.Severity),
		Pattern:           y.Pattern,
		Global:            y.Global,
		ContextWindowSize: y.ContextWindowSize,
		RequiresContext:   y.RequiresContext,
		ExcludeInContext:  y.ExcludeInContext,
		RequireAllContext: y.RequireAllContext,
		Message:           y.Message,
		Suggestion:        y.Suggestion,
		References:        y.References,
		Enabled:           y.Enabled,
	}
}

func toYAMLRule(r *Rule) yamlRule {
	return yamlRule{
		ID:                r.ID,
		Name:              r.Name,
		Languages:         r.Languages,
		Category:          r.Category,
		Severity:          r.Severity.String(),
		Pattern:           r.Pattern,
		Global:            r.Global,
		ContextWindowSize: r.ContextWindowSize,
		RequiresContext:   r.RequiresContext,
		ExcludeInContext:  r.ExcludeInContext,
		RequireAllContext: r.RequireAllContext,
		Message:           r.Message,
		Suggestion:        r.Suggestion,
		References:        r.References,
		Enabled:           r.Enabled,
	}
}
