package derive

import (
	"testing"

	"github.com/isotools/pcfgen/internal/config"
)

func TestTokenStrategy(t *testing.T) {
	rule, err := Compile(config.DeriveRule{Strategy: config.StrategyToken, Delimiter: "-", Index: 2})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	name := `FCSEE-16"-P0511260-11440A1-01`
	got, ok := rule.Apply(name)
	if !ok {
		t.Fatalf("expected a derived value for %s", name)
	}
	if got != "P0511260" {
		t.Errorf("expected P0511260, got %s", got)
	}

	// Same inputs, same output: derivation is pure.
	again, _ := rule.Apply(name)
	if again != got {
		t.Errorf("derivation not deterministic: %s vs %s", got, again)
	}
}

func TestTokenStrategyClassIndex(t *testing.T) {
	rule, err := Compile(config.DeriveRule{Strategy: config.StrategyToken, Delimiter: "-", Index: 3})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, ok := rule.Apply(`FCSEE-16"-P0511260-11440A1-01`)
	if !ok || got != "11440A1" {
		t.Errorf("expected 11440A1, got %q (ok=%v)", got, ok)
	}
}

func TestTokenStrategyOutOfRange(t *testing.T) {
	rule, _ := Compile(config.DeriveRule{Strategy: config.StrategyToken, Delimiter: "-", Index: 9})
	if v, ok := rule.Apply("A-B-C"); ok {
		t.Errorf("expected no value for out-of-range index, got %q", v)
	}
}

func TestRegexStrategy(t *testing.T) {
	rule, err := Compile(config.DeriveRule{
		Strategy: config.StrategyRegex,
		Regex:    `-([A-Z]\d{7})-`,
		Group:    1,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, ok := rule.Apply(`FCSEE-16"-P0511260-11440A1-01`)
	if !ok || got != "P0511260" {
		t.Errorf("expected P0511260, got %q (ok=%v)", got, ok)
	}
}

func TestRegexStrategyInvalidPattern(t *testing.T) {
	_, err := Compile(config.DeriveRule{Strategy: config.StrategyRegex, Regex: `([unclosed`})
	if err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestNilRuleDerivesNothing(t *testing.T) {
	var rule *Rule
	if v, ok := rule.Apply("anything"); ok {
		t.Errorf("nil rule should derive nothing, got %q", v)
	}
}

func TestUnknownStrategy(t *testing.T) {
	if _, err := Compile(config.DeriveRule{Strategy: "duck"}); err == nil {
		t.Fatal("expected an error for an unknown strategy")
	}
}
