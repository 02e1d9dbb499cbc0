package models

import (
	"strconv"
	"strings"
	"sync"

	"github.com/isotools/pcfgen/internal/geometry"
)

// OutputType classifies a component row into one of the exchange-format
// component kinds.
type OutputType string

const (
	TypePipe       OutputType = "PIPE"
	TypeBend       OutputType = "BEND"
	TypeTee        OutputType = "TEE"
	TypeValve      OutputType = "VALVE"
	TypeFlange     OutputType = "FLANGE"
	TypeSupport    OutputType = "SUPPORT"
	TypeOlet       OutputType = "OLET"
	TypeReducer    OutputType = "REDUCER"
	TypeGasket     OutputType = "GASKET"
	TypeInstrument OutputType = "INSTRUMENT"
	TypeMisc       OutputType = "MISC-COMPONENT"
)

// typeAliases maps common CAD export spellings to output types.
var typeAliases = map[string]OutputType{
	"PIPE":       TypePipe,
	"TUBE":       TypePipe,
	"BEND":       TypeBend,
	"ELBOW":      TypeBend,
	"ELBO":       TypeBend,
	"TEE":        TypeTee,
	"VALVE":      TypeValve,
	"VALV":       TypeValve,
	"FLANGE":     TypeFlange,
	"FLAN":       TypeFlange,
	"SUPPORT":    TypeSupport,
	"HANGER":     TypeSupport,
	"ATTA":       TypeSupport,
	"OLET":       TypeOlet,
	"WELDOLET":   TypeOlet,
	"SOCKOLET":   TypeOlet,
	"REDUCER":    TypeReducer,
	"REDU":       TypeReducer,
	"GASKET":     TypeGasket,
	"GASK":       TypeGasket,
	"INSTRUMENT": TypeInstrument,
	"INST":       TypeInstrument,
}

// ClassifyType maps a raw type cell to an OutputType. Unknown values become
// MISC-COMPONENT so they still flow through the pipeline.
func ClassifyType(raw string) OutputType {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if t, ok := typeAliases[key]; ok {
		return t
	}
	return TypeMisc
}

// Canonical raw-field names. The row supplier (csvio or any other
// collaborator) normalizes source headers to these before records are built.
const (
	FieldRefno  = "REFNO"
	FieldName   = "NAME"
	FieldType   = "TYPE"
	FieldBore   = "BORE"
	FieldLength = "LENGTH"
	FieldRigid  = "RIGID"
	FieldSkip   = "SKIP"

	prefixStart  = "START"
	prefixEnd    = "END"
	prefixBranch = "BRANCH"
	prefixCentre = "CENTRE"
)

// Point dictionary tags. "0" is the centre point, "1"/"2" the run endpoints,
// "3" the branch point of a TEE or OLET.
const (
	PointCentre = "0"
	PointEnd1   = "1"
	PointEnd2   = "2"
	PointBranch = "3"
)

// PointDict maps a point-index tag to its coordinate.
type PointDict map[string]geometry.Vec3

// ComponentRecord is one row of the component table. Raw holds the verbatim
// normalized fields; everything else is derived from it. Records are created
// once and treated as immutable after topology is built, except for the point
// cache which has an explicit invalidation call.
type ComponentRecord struct {
	Refno string            `json:"refno"`
	Raw   map[string]string `json:"raw"`
	Type  OutputType        `json:"type"`
	Skip  bool              `json:"skip"`

	mu     sync.Mutex
	points PointDict
	cached bool
}

// NewComponentRecord builds a record from normalized raw fields. The type and
// skip flag are classified up front; the point dictionary is computed lazily.
func NewComponentRecord(refno string, raw map[string]string) *ComponentRecord {
	if raw == nil {
		raw = map[string]string{}
	}
	skip := false
	switch strings.ToUpper(strings.TrimSpace(raw[FieldSkip])) {
	case "1", "Y", "YES", "TRUE", "SKIP":
		skip = true
	}
	return &ComponentRecord{
		Refno: refno,
		Raw:   raw,
		Type:  ClassifyType(raw[FieldType]),
		Skip:  skip,
	}
}

// Field returns a trimmed raw field value.
func (c *ComponentRecord) Field(name string) string {
	return strings.TrimSpace(c.Raw[name])
}

// Name returns the component name cell.
func (c *ComponentRecord) Name() string { return c.Field(FieldName) }

// Rigid returns the rigid/remark cell used for START markers and rigid-type
// lookups.
func (c *ComponentRecord) Rigid() string { return c.Field(FieldRigid) }

// NominalBore parses the bore cell.
func (c *ComponentRecord) NominalBore() (float64, bool) {
	return c.floatField(FieldBore)
}

// Length parses the length cell.
func (c *ComponentRecord) Length() (float64, bool) {
	return c.floatField(FieldLength)
}

func (c *ComponentRecord) floatField(name string) (float64, bool) {
	v := c.Field(name)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Coord reads a coordinate triple stored under prefix+"-X"/"-Y"/"-Z".
// It reports false when any axis is absent or unparseable.
func (c *ComponentRecord) Coord(prefix string) (geometry.Vec3, bool) {
	x, okX := c.floatField(prefix + "-X")
	y, okY := c.floatField(prefix + "-Y")
	z, okZ := c.floatField(prefix + "-Z")
	if !okX || !okY || !okZ {
		return geometry.Vec3{}, false
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, true
}

// StartCoord, EndCoord, BranchCoord and CentreCoord read the four canonical
// coordinate triples.
func (c *ComponentRecord) StartCoord() (geometry.Vec3, bool)  { return c.Coord(prefixStart) }
func (c *ComponentRecord) EndCoord() (geometry.Vec3, bool)    { return c.Coord(prefixEnd) }
func (c *ComponentRecord) BranchCoord() (geometry.Vec3, bool) { return c.Coord(prefixBranch) }
func (c *ComponentRecord) CentreCoord() (geometry.Vec3, bool) { return c.Coord(prefixCentre) }

// CachedPoints returns the cached point dictionary, if one has been stored.
func (c *ComponentRecord) CachedPoints() (PointDict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.points, c.cached
}

// StorePoints caches a computed point dictionary on the record.
func (c *ComponentRecord) StorePoints(pd PointDict) {
	c.mu.Lock()
	c.points = pd
	c.cached = true
	c.mu.Unlock()
}

// InvalidatePoints drops the cached point dictionary. Must be called before
// rebuilding topology if raw coordinates were changed.
func (c *ComponentRecord) InvalidatePoints() {
	c.mu.Lock()
	c.points = nil
	c.cached = false
	c.mu.Unlock()
}
