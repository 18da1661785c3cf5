package rules

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
)

// Registry holds the process-wide rule configuration. Reads hand out deep
// copies, so mutations never perturb a scan already holding a snapshot.
type Registry struct {
	mu     sync.RWMutex
	store  Store
	rules  []Rule
	logger *zap.Logger
}

// NewRegistry loads the rule set from the store. A store that has never
// been written is seeded with the builtin rules.
func NewRegistry(store Store, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rule store: %w", err)
	}
	if len(loaded) == 0 {
		loaded = Builtins()
		if err := store.Save(loaded); err != nil {
			return nil, fmt.Errorf("failed to seed rule store: %w", err)
		}
		logger.Info("Seeded rule store with builtin rules", zap.Int("count", len(loaded)))
	}
	return &Registry{store: store, rules: loaded, logger: logger}, nil
}

// ActiveRulesFor returns a copy-on-read snapshot of the enabled rules whose
// language set contains lang or is universal.
func (r *Registry) ActiveRulesFor(lang language.Language) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Rule
	for i := range r.rules {
		if r.rules[i].Enabled && r.rules[i].AppliesTo(lang) {
			out = append(out, r.rules[i].Clone())
		}
	}
	return out
}

// All returns a copy of every rule regardless of enabled state.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, len(r.rules))
	for i := range r.rules {
		out[i] = r.rules[i].Clone()
	}
	return out
}

// Add validates and appends a new rule.
func (r *Registry) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule %q: %w", rule.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(rule.ID) >= 0 {
		return fmt.Errorf("rule %q: %w", rule.ID, ErrDuplicate)
	}
	next := append(r.copyLocked(), rule.Clone())
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	r.logger.Info("Rule added", zap.String("id", rule.ID))
	return nil
}

// Update replaces the rule with the same id.
func (r *Registry) Update(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule %q: %w", rule.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(rule.ID)
	if idx < 0 {
		return fmt.Errorf("rule %q: %w", rule.ID, ErrNotFound)
	}
	next := r.copyLocked()
	next[idx] = rule.Clone()
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	r.logger.Info("Rule updated", zap.String("id", rule.ID))
	return nil
}

// Delete removes the rule with the given id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("rule %q: %w", id, ErrNotFound)
	}
	next := r.copyLocked()
	next = append(next[:idx], next[idx+1:]...)
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	r.logger.Info("Rule deleted", zap.String("id", id))
	return nil
}

// Reset restores the builtin rule set, discarding user rules.
func (r *Registry) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := Builtins()
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	r.logger.Info("Rule set reset to builtins", zap.Int("count", len(next)))
	return nil
}

// SetEnabled toggles a rule without replacing its definition.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("rule %q: %w", id, ErrNotFound)
	}
	next := r.copyLocked()
	next[idx].Enabled = enabled
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}
	r.rules = next
	return nil
}

// indexOf and copyLocked require r.mu held.
func (r *Registry) indexOf(id string) int {
	for i := range r.rules {
		if r.rules[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) copyLocked() []Rule {
	out := make([]Rule, len(r.rules))
	for i := range r.rules {
		out[i] = r.rules[i].Clone()
	}
	return out
}
