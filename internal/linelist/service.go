// Package linelist is the reference lookup service over the process linelist
// sheet: header detection, smart column mapping, composite/simple indexes and
// smart attribute resolution.
package linelist

import (
	"sort"
	"strings"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/derive"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/store"
	"github.com/isotools/pcfgen/internal/warn"
)

// Canonical attribute names. These are the keys of the smart mapping and of
// config.SmartKeywords.
const (
	AttrLine          = "line"
	AttrService       = "service"
	AttrSequence      = "sequence"
	AttrPressure      = "pressure"
	AttrTemperature   = "temperature"
	AttrInsulation    = "insulation"
	AttrHydroPressure = "hydroPressure"
	AttrDensityGas    = "densityGas"
	AttrDensityLiquid = "densityLiquid"
	AttrDensityMixed  = "densityMixed"
	AttrPhase         = "phase"
	AttrPipingClass   = "pipingClass"
)

// headerScanLimit caps how many leading rows are scored during header
// detection. No sheet in the domain buries its header deeper.
const headerScanLimit = 25

// keywordWeight is how much one keyword hit outweighs one non-empty cell in
// the header score.
const keywordWeight = 5

// Service resolves reference data for components. Its cache moves through
// three states: empty (no sheet), loaded (header detected, rows split out)
// and indexed (composite/simple lookup maps built). Any change to the rows or
// the mapping drops back to loaded.
type Service struct {
	cfg   *config.Config
	sink  warn.Sink
	store store.MappingStore

	headerRow int
	headers   []string
	rows      []models.RefRow

	mapping map[string]string // canonical attr -> matched header
	userSet map[string]bool   // attrs pinned by the user; never auto-overwritten

	composite map[string]models.RefRow
	simple    map[string]models.RefRow
	indexed   bool

	lineRule       *derive.Rule
	lineRuleWarned bool
}

// NewService creates the lookup service. The mapping store may be nil, in
// which case mappings live only in memory.
func NewService(cfg *config.Config, sink warn.Sink, mappingStore store.MappingStore) *Service {
	return &Service{
		cfg:       cfg,
		sink:      sink,
		store:     mappingStore,
		headerRow: -1,
		mapping:   map[string]string{},
		userSet:   map[string]bool{},
	}
}

// LoadPersistedMappings pulls previously saved user mappings from the store.
// Called once at session start, before LoadSheet.
func (s *Service) LoadPersistedMappings() error {
	if s.store == nil {
		return nil
	}
	saved, err := s.store.Load()
	if err != nil {
		return err
	}
	for attr, column := range saved {
		s.mapping[attr] = column
		s.userSet[attr] = true
	}
	s.invalidate()
	return nil
}

// LoadSheet installs the raw linelist grid: detects the header row, splits
// out the data rows and re-runs auto-mapping. Indexes are dropped.
func (s *Service) LoadSheet(cells [][]string) {
	s.headerRow = s.detectHeaderRow(cells)
	s.headers = nil
	s.rows = nil
	if s.headerRow >= 0 {
		for _, h := range cells[s.headerRow] {
			s.headers = append(s.headers, strings.TrimSpace(h))
		}
		for _, row := range cells[s.headerRow+1:] {
			if rowEmpty(row) {
				continue
			}
			ref := models.RefRow{}
			for i, cell := range row {
				if i >= len(s.headers) || s.headers[i] == "" {
					continue
				}
				ref[s.headers[i]] = strings.TrimSpace(cell)
			}
			s.rows = append(s.rows, ref)
		}
	}
	s.autoMap()
	s.invalidate()
}

// Rows returns the parsed reference rows.
func (s *Service) Rows() []models.RefRow { return s.rows }

// HeaderRow returns the detected header row index, or -1.
func (s *Service) HeaderRow() int { return s.headerRow }

// detectHeaderRow scores each of the first rows by keyword hits plus a weight
// for non-empty cells. The highest score wins, ties broken by first
// occurrence. Returns -1 for an empty sheet.
func (s *Service) detectHeaderRow(cells [][]string) int {
	keywords := s.headerKeywords()
	best, bestScore := -1, 0
	limit := len(cells)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		score := 0
		for _, cell := range cells[i] {
			cell = strings.ToUpper(strings.TrimSpace(cell))
			if cell == "" {
				continue
			}
			score++
			for _, kw := range keywords {
				if strings.Contains(cell, kw) {
					score += keywordWeight
					break
				}
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// headerKeywords merges the built-in domain keywords with every configured
// smart keyword candidate.
func (s *Service) headerKeywords() []string {
	set := map[string]bool{
		"LINE": true, "SERVICE": true, "PRESSURE": true, "CLASS": true,
		"TEMP": true, "FLUID": true, "DENSITY": true, "INSULATION": true,
	}
	for _, candidates := range s.cfg.SmartKeywords {
		for _, c := range candidates {
			set[strings.ToUpper(strings.TrimSpace(c))] = true
		}
	}
	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// autoMap fills the smart mapping from the configured keywords: per
// attribute, an exact case-insensitive header match wins, else the first
// header containing the keyword as a substring. User-set mappings are never
// overwritten.
func (s *Service) autoMap() {
	for attr, candidates := range s.cfg.SmartKeywords {
		if s.userSet[attr] {
			continue
		}
		if col, ok := s.matchHeader(candidates); ok {
			s.mapping[attr] = col
		} else {
			delete(s.mapping, attr)
		}
	}
}

func (s *Service) matchHeader(candidates []string) (string, bool) {
	// Exact pass first over all candidates, then the substring pass: an
	// exact match for a later keyword beats a substring match for an
	// earlier one.
	for _, kw := range candidates {
		for _, h := range s.headers {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(kw)) {
				return h, true
			}
		}
	}
	for _, kw := range candidates {
		needle := strings.ToUpper(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		for _, h := range s.headers {
			if strings.Contains(strings.ToUpper(h), needle) {
				return h, true
			}
		}
	}
	return "", false
}

// Mapping returns a copy of the current smart mapping.
func (s *Service) Mapping() map[string]string {
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

// MappedColumn returns the column mapped to a canonical attribute.
func (s *Service) MappedColumn(attr string) (string, bool) {
	col, ok := s.mapping[attr]
	return col, ok
}

// SetMapping pins a user mapping and persists the user-set entries. User
// mappings survive sheet reloads and are never auto-overwritten.
func (s *Service) SetMapping(attr, column string) error {
	s.mapping[attr] = column
	s.userSet[attr] = true
	s.invalidate()
	return s.persistUserMappings()
}

// ResetMappings clears both the in-memory and the persisted mappings, then
// re-runs auto-mapping against the current sheet.
func (s *Service) ResetMappings() error {
	s.mapping = map[string]string{}
	s.userSet = map[string]bool{}
	s.autoMap()
	s.invalidate()
	if s.store == nil {
		return nil
	}
	return s.store.Reset()
}

func (s *Service) persistUserMappings() error {
	if s.store == nil {
		return nil
	}
	saved := map[string]string{}
	for attr := range s.userSet {
		if col, ok := s.mapping[attr]; ok {
			saved[attr] = col
		}
	}
	return s.store.Save(saved)
}

// invalidate drops the lookup indexes; they are rebuilt lazily on the next
// resolve. Dropping and rebuilding (rather than patching) keeps stale entries
// impossible.
func (s *Service) invalidate() {
	s.composite = nil
	s.simple = nil
	s.indexed = false
}

func (s *Service) warnf(operation, message string, ctx map[string]string) {
	if s.sink != nil {
		s.sink.Warn(warn.Event("linelist", operation, message, ctx))
	}
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
