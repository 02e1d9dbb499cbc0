// Package weight resolves rigid types and materials from the weight master:
// NB+length nearest-match lookup and NB+class lookup with cascading wildcard
// fallback.
package weight

import (
	"math"
	"strconv"
	"strings"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/models"
)

// Match levels reported for diagnostics.
const (
	LevelExact     = "exact"
	LevelNearest   = "nearest-length"
	LevelWildcard1 = "wildcard-1"
	LevelWildcard2 = "wildcard-2"
)

// RigidType is the NB+length lookup result.
type RigidType struct {
	Description string `json:"description"`
	Weight      string `json:"weight"`
	MatchLevel  string `json:"matchLevel"`
}

// MaterialMatch is the NB+class lookup result.
type MaterialMatch struct {
	Material      string `json:"material"`
	WallThickness string `json:"wallThickness"`
	MatchLevel    string `json:"matchLevel"`
}

// Service wraps the weight/rigid master table.
type Service struct {
	cfg   *config.Config
	table *models.RefTable
}

// NewService creates the weight service. A nil table makes every lookup miss.
func NewService(cfg *config.Config, table *models.RefTable) *Service {
	return &Service{cfg: cfg, table: table}
}

// ResolveRigidType finds the master row matching the nominal bore (within the
// configured epsilon) whose length differs from the requested length by the
// smallest amount not exceeding the tolerance. Rows may carry their own
// tolerance column; the configured default applies otherwise.
func (s *Service) ResolveRigidType(nominalBore, length float64) (RigidType, bool) {
	if s.table == nil {
		return RigidType{}, false
	}
	ws := s.cfg.Weight

	var best models.RefRow
	bestDiff := math.Inf(1)
	for _, row := range s.table.Rows {
		bore, ok := parseFloat(row.Get(ws.BoreColumn))
		if !ok || math.Abs(bore-nominalBore) > ws.BoreEpsilon {
			continue
		}
		rowLen, ok := parseFloat(row.Get(ws.LengthColumn))
		if !ok {
			continue
		}
		tol := ws.LengthTolerance
		if rowTol, ok := parseFloat(row.Get(ws.ToleranceColumn)); ok {
			tol = rowTol
		}
		diff := math.Abs(rowLen - length)
		if diff > tol {
			continue
		}
		if diff < bestDiff {
			best, bestDiff = row, diff
		}
	}
	if best == nil {
		return RigidType{}, false
	}
	level := LevelNearest
	if bestDiff == 0 {
		level = LevelExact
	}
	return RigidType{
		Description: best.Get(ws.DescColumn),
		Weight:      best.Get(ws.WeightColumn),
		MatchLevel:  level,
	}, true
}

// ResolveMaterial finds the material and wall thickness for a bore and piping
// class. The class is matched at three cascading specificity levels: exact,
// then the class with its last character replaced by a wildcard marker, then
// the last two. The first level with a match wins.
func (s *Service) ResolveMaterial(nominalBore float64, pipingClass string) (MaterialMatch, bool) {
	if s.table == nil {
		return MaterialMatch{}, false
	}
	pipingClass = strings.TrimSpace(pipingClass)
	if pipingClass == "" {
		return MaterialMatch{}, false
	}

	type lookup struct {
		class string
		level string
	}
	keys := []lookup{{pipingClass, LevelExact}}
	if n := len(pipingClass); n >= 1 {
		keys = append(keys, lookup{pipingClass[:n-1] + "*", LevelWildcard1})
		if n >= 2 {
			keys = append(keys, lookup{pipingClass[:n-2] + "*", LevelWildcard2})
		}
	}

	ws := s.cfg.Weight
	for _, key := range keys {
		for _, row := range s.table.Rows {
			bore, ok := parseFloat(row.Get(ws.BoreColumn))
			if !ok || math.Abs(bore-nominalBore) > ws.BoreEpsilon {
				continue
			}
			if row.Get(ws.ClassColumn) != key.class {
				continue
			}
			return MaterialMatch{
				Material:      row.Get(ws.MaterialColumn),
				WallThickness: row.Get(ws.WallColumn),
				MatchLevel:    key.level,
			}, true
		}
	}
	return MaterialMatch{}, false
}

func parseFloat(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
