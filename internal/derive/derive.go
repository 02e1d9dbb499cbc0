// Package derive implements the configurable token/regex extraction
// strategies used for line numbers and piping classes.
package derive

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/isotools/pcfgen/internal/config"
)

// Rule is a compiled derivation strategy. The zero value derives nothing.
type Rule struct {
	kind      string
	delimiter string
	index     int
	pattern   *regexp.Regexp
	group     int
}

// Compile validates a configured rule and compiles its pattern. An invalid
// regex returns an error here so the caller can log it once and fall back to
// deriving nothing, rather than failing per component.
func Compile(rule config.DeriveRule) (*Rule, error) {
	switch rule.Strategy {
	case config.StrategyToken, "":
		delim := rule.Delimiter
		if delim == "" {
			delim = "-"
		}
		return &Rule{kind: config.StrategyToken, delimiter: delim, index: rule.Index}, nil
	case config.StrategyRegex:
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile derivation pattern %q: %w", rule.Regex, err)
		}
		return &Rule{kind: config.StrategyRegex, pattern: re, group: rule.Group}, nil
	default:
		return nil, fmt.Errorf("unknown derivation strategy %q", rule.Strategy)
	}
}

// Apply derives a value from a component name. It is a pure function of the
// name and the compiled rule; it reports false when nothing can be derived.
func (r *Rule) Apply(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	switch r.kind {
	case config.StrategyToken:
		parts := strings.Split(name, r.delimiter)
		if r.index < 0 || r.index >= len(parts) {
			return "", false
		}
		v := strings.TrimSpace(parts[r.index])
		return v, v != ""
	case config.StrategyRegex:
		m := r.pattern.FindStringSubmatch(name)
		if m == nil || r.group < 0 || r.group >= len(m) {
			return "", false
		}
		v := strings.TrimSpace(m[r.group])
		return v, v != ""
	default:
		return "", false
	}
}
