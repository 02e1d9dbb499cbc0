package linelist

import (
	"strings"

	"github.com/isotools/pcfgen/internal/models"
)

// SmartValues are the attribute values resolved from a reference row. Empty
// strings mean the column is unmapped or the cell is blank; the assembler
// injects only non-empty values.
type SmartValues struct {
	Pressure      string
	Temperature   string
	Insulation    string
	HydroPressure string
	Density       string
	PipingClass   string
}

// SmartValuesFor resolves the component's reference row and extracts the
// smart attributes. The second return is false when no row matched.
func (s *Service) SmartValuesFor(c *models.ComponentRecord) (SmartValues, bool) {
	row, ok := s.ResolveComponent(c)
	if !ok {
		return SmartValues{}, false
	}
	return s.Extract(row), true
}

// SmartValuesForLine is SmartValuesFor for a raw line number string.
func (s *Service) SmartValuesForLine(lineNo string) (SmartValues, bool) {
	row, ok := s.Resolve(lineNo)
	if !ok {
		return SmartValues{}, false
	}
	return s.Extract(row), true
}

// Extract pulls the smart attributes out of a resolved reference row.
func (s *Service) Extract(row models.RefRow) SmartValues {
	return SmartValues{
		Pressure:      s.mappedValue(row, AttrPressure),
		Temperature:   s.mappedValue(row, AttrTemperature),
		Insulation:    s.mappedValue(row, AttrInsulation),
		HydroPressure: s.mappedValue(row, AttrHydroPressure),
		Density:       s.Density(row),
		PipingClass:   s.mappedValue(row, AttrPipingClass),
	}
}

func (s *Service) mappedValue(row models.RefRow, attr string) string {
	col, ok := s.mapping[attr]
	if !ok {
		return ""
	}
	return row.Get(col)
}

// Density selects the density value for a reference row from its phase cell.
// Phase labels are free text, so matching is by case-insensitive prefix:
// "G..." selects gas, "M..." mixed (honouring the configured preference with
// the other column as fallback), anything else liquid. An empty selection
// degrades to the configured default gas or liquid constant.
func (s *Service) Density(row models.RefRow) string {
	phase := strings.ToUpper(s.mappedValue(row, AttrPhase))
	gas := s.mappedValue(row, AttrDensityGas)
	liquid := s.mappedValue(row, AttrDensityLiquid)
	mixed := s.mappedValue(row, AttrDensityMixed)

	switch {
	case strings.HasPrefix(phase, "G"):
		if gas == "" {
			return s.cfg.Linelist.DefaultGasDensity
		}
		return gas
	case strings.HasPrefix(phase, "M"):
		first, second := mixed, liquid
		if s.mixedPreferLiquid() {
			first, second = liquid, mixed
		}
		if first != "" {
			return first
		}
		if second != "" {
			return second
		}
		return s.cfg.Linelist.DefaultLiquidDensity
	default:
		if liquid == "" {
			return s.cfg.Linelist.DefaultLiquidDensity
		}
		return liquid
	}
}
