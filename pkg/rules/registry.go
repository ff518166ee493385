package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"jscodemod/pkg/transform"
)

// Registry holds the known rules by key, in registration order.
type Registry struct {
	rules []transform.Rule
	byKey map[string]transform.Rule
}

// NewRegistry builds a registry. Duplicate keys panic.
func NewRegistry(rules ...transform.Rule) *Registry {
	r := &Registry{byKey: make(map[string]transform.Rule)}
	for _, rule := range rules {
		if _, dup := r.byKey[rule.Key()]; dup {
			panic(fmt.Sprintf("rules: duplicate rule key %q", rule.Key()))
		}
		r.byKey[rule.Key()] = rule
		r.rules = append(r.rules, rule)
	}
	return r
}

// Default returns a registry of every built-in rule.
func Default() *Registry {
	return NewRegistry(ForEachToFor())
}

// All returns the registered rules in registration order.
func (r *Registry) All() []transform.Rule {
	return append([]transform.Rule(nil), r.rules...)
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.rules))
	for i, rule := range r.rules {
		keys[i] = rule.Key()
	}
	return keys
}

// UnknownRuleError reports a key that names no rule.
type UnknownRuleError struct {
	Key        string
	Suggestion string // Closest registered key, or ""
}

func (e *UnknownRuleError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown rule %q (did you mean %q?)", e.Key, e.Suggestion)
	}
	return fmt.Sprintf("unknown rule %q", e.Key)
}

// Lookup finds a rule by key.
func (r *Registry) Lookup(key string) (transform.Rule, error) {
	if rule, ok := r.byKey[key]; ok {
		return rule, nil
	}
	return nil, &UnknownRuleError{Key: key, Suggestion: r.suggest(key)}
}

// Select resolves keys to rules in the order given; no keys selects every
// rule. Blank keys are ignored.
func (r *Registry) Select(keys []string) ([]transform.Rule, error) {
	var selected []transform.Rule
	seen := make(map[string]bool)
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		rule, err := r.Lookup(key)
		if err != nil {
			return nil, err
		}
		selected = append(selected, rule)
	}
	if len(selected) == 0 {
		return r.All(), nil
	}
	return selected, nil
}

// suggest returns the registered key closest to key. Keys that contain the
// typed characters in order win; otherwise the nearest key by edit distance
// within a third of its length.
func (r *Registry) suggest(key string) string {
	keys := r.Keys()
	if len(keys) == 0 || key == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(key, keys)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", -1
	for _, k := range keys {
		d := fuzzy.LevenshteinDistance(strings.ToLower(key), strings.ToLower(k))
		if d <= len(k)/3 && (bestDist < 0 || d < bestDist) {
			best, bestDist = k, d
		}
	}
	return best
}
