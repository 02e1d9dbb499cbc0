package linelist

import (
	"strings"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/derive"
	"github.com/isotools/pcfgen/internal/models"
)

// ensureIndexes lazily builds the two lookup structures. The composite index
// is keyed by service+"-"+sequence and exists only when both join columns are
// mapped; the simple index is keyed by the line-reference column. On a key
// collision the first non-empty row wins.
func (s *Service) ensureIndexes() {
	if s.indexed {
		return
	}
	s.composite = map[string]models.RefRow{}
	s.simple = map[string]models.RefRow{}

	serviceCol, haveService := s.mapping[AttrService]
	sequenceCol, haveSequence := s.mapping[AttrSequence]
	lineCol, haveLine := s.mapping[AttrLine]

	for _, row := range s.rows {
		if haveService && haveSequence {
			svc := row.Get(serviceCol)
			seq := row.Get(sequenceCol)
			if svc != "" && seq != "" {
				key := svc + "-" + seq
				if _, exists := s.composite[key]; !exists {
					s.composite[key] = row
				}
			}
		}
		if haveLine {
			key := row.Get(lineCol)
			if key != "" {
				if _, exists := s.simple[key]; !exists {
					s.simple[key] = row
				}
			}
		}
	}
	s.indexed = true
}

// lineNoRule compiles the configured line-number derivation once. An invalid
// pattern is warned about a single time; derivation then yields nothing.
func (s *Service) lineNoRule() *derive.Rule {
	if s.lineRule != nil || s.lineRuleWarned {
		return s.lineRule
	}
	rule, err := derive.Compile(s.cfg.LineDerivation.LineNo)
	if err != nil {
		s.lineRuleWarned = true
		s.warnf("deriveLineNo", err.Error(), map[string]string{
			"strategy": s.cfg.LineDerivation.LineNo.Strategy,
			"regex":    s.cfg.LineDerivation.LineNo.Regex,
		})
		return nil
	}
	s.lineRule = rule
	return rule
}

// DeriveLineNo derives the line number from a component name using the
// configured strategy.
func (s *Service) DeriveLineNo(name string) (string, bool) {
	return s.lineNoRule().Apply(name)
}

// Resolve finds the reference row for a raw line number: composite key first,
// simple key as fallback.
func (s *Service) Resolve(lineNo string) (models.RefRow, bool) {
	lineNo = strings.TrimSpace(lineNo)
	if lineNo == "" {
		return nil, false
	}
	s.ensureIndexes()
	if row, ok := s.composite[lineNo]; ok {
		return row, true
	}
	if row, ok := s.simple[lineNo]; ok {
		return row, true
	}
	return nil, false
}

// ResolveComponent derives the component's line number and resolves its
// reference row in one step.
func (s *Service) ResolveComponent(c *models.ComponentRecord) (models.RefRow, bool) {
	lineNo, ok := s.DeriveLineNo(c.Name())
	if !ok {
		return nil, false
	}
	return s.Resolve(lineNo)
}

// mixedPreferLiquid reports whether the configured mixed-phase preference
// favours the liquid column.
func (s *Service) mixedPreferLiquid() bool {
	return strings.EqualFold(s.cfg.Linelist.MixedPhasePreference, config.MixedPreferenceLiquid)
}
