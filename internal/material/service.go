// Package material resolves piping-class attributes: class extraction from
// the component name, master-table lookup and material-code mapping.
package material

import (
	"strings"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/derive"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/warn"
)

// Attributes are the resolved physical attributes for a piping class. Fields
// left empty mean the corresponding resolution step failed; callers treat
// that as "no override".
type Attributes struct {
	MaterialCode  string `json:"materialCode"`
	WallThickness string `json:"wallThickness"`
	Corrosion     string `json:"corrosion"`
}

// Service performs the three-step class → material-name → material-code
// resolution against the piping-class master and the material code map.
type Service struct {
	cfg    *config.Config
	sink   warn.Sink
	master *models.RefTable
	codes  *models.RefTable

	rule       *derive.Rule
	ruleWarned bool
}

// NewService creates the material service. Either table may be nil; lookups
// against a nil table simply fail softly.
func NewService(cfg *config.Config, sink warn.Sink, master, codes *models.RefTable) *Service {
	return &Service{cfg: cfg, sink: sink, master: master, codes: codes}
}

func (s *Service) classRule() *derive.Rule {
	if s.rule != nil || s.ruleWarned {
		return s.rule
	}
	rule, err := derive.Compile(s.cfg.LineDerivation.PipingClass)
	if err != nil {
		s.ruleWarned = true
		if s.sink != nil {
			s.sink.Warn(warn.Event("material", "extractClass", err.Error(), map[string]string{
				"strategy": s.cfg.LineDerivation.PipingClass.Strategy,
				"regex":    s.cfg.LineDerivation.PipingClass.Regex,
			}))
		}
		return nil
	}
	s.rule = rule
	return rule
}

// ExtractClass derives the piping class from a component name using its own
// token/regex configuration, independent of line-number derivation.
func (s *Service) ExtractClass(name string) (string, bool) {
	return s.classRule().Apply(name)
}

// Resolve looks up the attributes for an extracted piping class. Any failed
// step leaves the remaining fields empty rather than returning an error.
func (s *Service) Resolve(class string) Attributes {
	class = strings.TrimSpace(class)
	if class == "" || s.master == nil {
		return Attributes{}
	}

	row, ok := s.findMasterRow(class)
	if !ok {
		return Attributes{}
	}

	attrs := Attributes{
		WallThickness: row.Get(s.cfg.Material.WallColumn),
		Corrosion:     row.Get(s.cfg.Material.CorrosionColumn),
	}

	name := row.Get(s.cfg.Material.NameColumn)
	if code, ok := s.mapMaterialCode(name); ok {
		attrs.MaterialCode = code
	}
	return attrs
}

// ResolveForComponent extracts the class from the component name and
// resolves it.
func (s *Service) ResolveForComponent(c *models.ComponentRecord) Attributes {
	class, ok := s.ExtractClass(c.Name())
	if !ok {
		return Attributes{}
	}
	return s.Resolve(class)
}

// findMasterRow matches the class column exactly first (trim-compare,
// case-sensitive), then falls back to a bidirectional starts-with match to
// tolerate suffixed class codes on either side.
func (s *Service) findMasterRow(class string) (models.RefRow, bool) {
	col := s.cfg.Material.ClassColumn
	for _, row := range s.master.Rows {
		if row.Get(col) == class {
			return row, true
		}
	}
	for _, row := range s.master.Rows {
		v := row.Get(col)
		if v == "" {
			continue
		}
		if strings.HasPrefix(class, v) || strings.HasPrefix(v, class) {
			return row, true
		}
	}
	return nil, false
}

// mapMaterialCode normalizes the free-text material name and finds the first
// map entry whose normalized description is a substring of it, or vice versa.
func (s *Service) mapMaterialCode(name string) (string, bool) {
	norm := normalize(name)
	if norm == "" || s.codes == nil {
		return "", false
	}
	for _, row := range s.codes.Rows {
		desc := normalize(row.Get(s.cfg.Material.MapDescColumn))
		if desc == "" {
			continue
		}
		if strings.Contains(norm, desc) || strings.Contains(desc, norm) {
			code := row.Get(s.cfg.Material.MapCodeColumn)
			if code != "" {
				return code, true
			}
		}
	}
	return "", false
}

// normalize strips whitespace and dashes and uppercases, so "CS A106-Gr B"
// and "CSA106GRB" compare equal.
func normalize(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case ' ', '\t', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
