// Package config holds the conversion configuration: slot rules, derivation
// strategies, smart keywords and coordinate settings. Everything the pipeline
// does is driven from here; nothing downstream hardcodes slot identifiers.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline modes for the sequencer.
const (
	ModeSequential = "sequential"
	ModeRepair     = "repair"
)

// Derivation strategies for line-number / piping-class extraction.
const (
	StrategyToken = "token"
	StrategyRegex = "regex"
)

// Mixed-phase density preferences.
const (
	MixedPreferenceMixed  = "mixed"
	MixedPreferenceLiquid = "liquid"
)

// Config is the root conversion configuration.
type Config struct {
	Coordinate     CoordinateSettings      `yaml:"coordinateSettings" json:"coordinateSettings"`
	LineDerivation LineDerivation          `yaml:"lineDerivation" json:"lineDerivation"`
	SmartKeywords  map[string][]string     `yaml:"smartKeywords" json:"smartKeywords"`
	Linelist       LinelistSettings        `yaml:"linelist" json:"linelist"`
	Material       MaterialSettings        `yaml:"material" json:"material"`
	Weight         WeightSettings          `yaml:"weight" json:"weight"`
	PCFRules       map[string]PCFRule      `yaml:"pcfRules" json:"pcfRules"`
	CADefinitions  map[string]CADefinition `yaml:"caDefinitions" json:"caDefinitions"`
	SmartSlots     SmartSlots              `yaml:"smartSlots" json:"smartSlots"`
	// CustomColumnMap maps reference-table columns to output slots, for
	// user-defined injections beyond the smart attributes.
	CustomColumnMap map[string]string `yaml:"customColumnMap" json:"customColumnMap"`
}

// CoordinateSettings controls topology reconstruction.
type CoordinateSettings struct {
	// ContinuityTolerance is the endpoint bucket size: endpoints whose axes
	// round to the same multiple of it count as connected.
	ContinuityTolerance float64 `yaml:"continuityTolerance" json:"continuityTolerance"`
	// BranchTolerance is the distance below which a TEE neighbour's first
	// endpoint is taken to sit on the TEE branch point.
	BranchTolerance float64 `yaml:"branchTolerance" json:"branchTolerance"`
	// PipelineMode selects "sequential" (trust row order) or "repair"
	// (rebuild order from coordinates).
	PipelineMode string `yaml:"pipelineMode" json:"pipelineMode"`
}

// DeriveRule configures one token/regex derivation strategy.
type DeriveRule struct {
	Strategy  string `yaml:"strategy" json:"strategy"`
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Index     int    `yaml:"index,omitempty" json:"index,omitempty"`
	Regex     string `yaml:"regex,omitempty" json:"regex,omitempty"`
	Group     int    `yaml:"group,omitempty" json:"group,omitempty"`
}

// LineDerivation holds the two independent derivation rules.
type LineDerivation struct {
	LineNo      DeriveRule `yaml:"lineNo" json:"lineNo"`
	PipingClass DeriveRule `yaml:"pipingClass" json:"pipingClass"`
}

// LinelistSettings controls smart-attribute resolution against the linelist.
type LinelistSettings struct {
	// MixedPhasePreference selects the density column for "M..." phases:
	// "mixed" favours the explicit mixed value with liquid as fallback,
	// "liquid" the other way around.
	MixedPhasePreference string `yaml:"mixedPhasePreference" json:"mixedPhasePreference"`
	DefaultGasDensity    string `yaml:"defaultGasDensity" json:"defaultGasDensity"`
	DefaultLiquidDensity string `yaml:"defaultLiquidDensity" json:"defaultLiquidDensity"`
	// InsulationSpecDefault is injected into the insulation-spec slot
	// whenever a positive insulation thickness is resolved.
	InsulationSpecDefault string `yaml:"insulationSpecDefault" json:"insulationSpecDefault"`
}

// MaterialSettings names the columns of the piping-class master and the
// material code map.
type MaterialSettings struct {
	ClassColumn     string `yaml:"classColumn" json:"classColumn"`
	WallColumn      string `yaml:"wallColumn" json:"wallColumn"`
	CorrosionColumn string `yaml:"corrosionColumn" json:"corrosionColumn"`
	NameColumn      string `yaml:"nameColumn" json:"nameColumn"`
	MapDescColumn   string `yaml:"mapDescColumn" json:"mapDescColumn"`
	MapCodeColumn   string `yaml:"mapCodeColumn" json:"mapCodeColumn"`
}

// WeightSettings names the weight/rigid master columns and tolerances.
type WeightSettings struct {
	BoreColumn      string  `yaml:"boreColumn" json:"boreColumn"`
	LengthColumn    string  `yaml:"lengthColumn" json:"lengthColumn"`
	ToleranceColumn string  `yaml:"toleranceColumn" json:"toleranceColumn"`
	DescColumn      string  `yaml:"descColumn" json:"descColumn"`
	WeightColumn    string  `yaml:"weightColumn" json:"weightColumn"`
	ClassColumn     string  `yaml:"classColumn" json:"classColumn"`
	MaterialColumn  string  `yaml:"materialColumn" json:"materialColumn"`
	WallColumn      string  `yaml:"wallColumn" json:"wallColumn"`
	BoreEpsilon     float64 `yaml:"boreEpsilon" json:"boreEpsilon"`
	LengthTolerance float64 `yaml:"lengthTolerance" json:"lengthTolerance"`
}

// PCFRule lists the slots emitted for one output type, in order.
type PCFRule struct {
	CASlots []string `yaml:"caSlots" json:"caSlots"`
}

// CADefinition configures one output slot.
type CADefinition struct {
	CSVField string `yaml:"csvField" json:"csvField"`
	Unit     string `yaml:"unit,omitempty" json:"unit,omitempty"`
	// Default is accepted from older configuration files but a missing
	// source value always emits a placeholder ("0" / "Undefined") so
	// unresolved data stays visible downstream.
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
	// ZeroValue, when set, replaces a numerically zero source value.
	ZeroValue string  `yaml:"zeroValue,omitempty" json:"zeroValue,omitempty"`
	WriteOn   WriteOn `yaml:"writeOn" json:"writeOn"`
}

// SmartSlots designates which slot each resolved concept lands in. Empty
// entries disable the corresponding injection.
type SmartSlots struct {
	Pressure       string `yaml:"pressure" json:"pressure"`
	Temperature    string `yaml:"temperature" json:"temperature"`
	Insulation     string `yaml:"insulation" json:"insulation"`
	InsulationSpec string `yaml:"insulationSpec" json:"insulationSpec"`
	HydroPressure  string `yaml:"hydroPressure" json:"hydroPressure"`
	Density        string `yaml:"density" json:"density"`
	MaterialCode   string `yaml:"materialCode" json:"materialCode"`
	WallThickness  string `yaml:"wallThickness" json:"wallThickness"`
	Corrosion      string `yaml:"corrosion" json:"corrosion"`
	RigidType      string `yaml:"rigidType" json:"rigidType"`
	RigidWeight    string `yaml:"rigidWeight" json:"rigidWeight"`
}

// WriteOn is the per-slot emission predicate: all, none, all-except-support,
// or a fixed list of output types. In YAML it accepts either a scalar or a
// sequence.
type WriteOn struct {
	Mode  string   // "all", "none", "all-except-support", "list"
	Types []string // populated when Mode == "list"
}

const (
	writeAll           = "all"
	writeNone          = "none"
	writeAllButSupport = "all-except-support"
	writeList          = "list"
)

// UnmarshalYAML accepts `writeOn: all`, `writeOn: [PIPE, TEE]` and the single
// scalar type form `writeOn: PIPE`.
func (w *WriteOn) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		s := strings.TrimSpace(value.Value)
		switch strings.ToLower(s) {
		case writeAll, "":
			w.Mode = writeAll
		case writeNone:
			w.Mode = writeNone
		case writeAllButSupport, "all except support":
			w.Mode = writeAllButSupport
		default:
			w.Mode = writeList
			w.Types = []string{strings.ToUpper(s)}
		}
		return nil
	case yaml.SequenceNode:
		var types []string
		if err := value.Decode(&types); err != nil {
			return err
		}
		w.Mode = writeList
		w.Types = make([]string, 0, len(types))
		for _, t := range types {
			w.Types = append(w.Types, strings.ToUpper(strings.TrimSpace(t)))
		}
		return nil
	default:
		return fmt.Errorf("writeOn: unsupported YAML node kind %d", value.Kind)
	}
}

// MarshalYAML renders the compact scalar form where possible.
func (w WriteOn) MarshalYAML() (interface{}, error) {
	if w.Mode == writeList {
		return w.Types, nil
	}
	if w.Mode == "" {
		return writeAll, nil
	}
	return w.Mode, nil
}

// Applies reports whether a slot is emitted for the given output type.
func (w WriteOn) Applies(t string) bool {
	switch w.Mode {
	case writeNone:
		return false
	case writeAllButSupport:
		return !strings.EqualFold(t, "SUPPORT")
	case writeList:
		for _, candidate := range w.Types {
			if strings.EqualFold(candidate, t) {
				return true
			}
		}
		return false
	default: // "all" or unset
		return true
	}
}

// WriteOnAll and friends are constructors for programmatic config building.
func WriteOnAll() WriteOn              { return WriteOn{Mode: writeAll} }
func WriteOnNone() WriteOn             { return WriteOn{Mode: writeNone} }
func WriteOnAllExceptSupport() WriteOn { return WriteOn{Mode: writeAllButSupport} }
func WriteOnTypes(types ...string) WriteOn {
	upper := make([]string, 0, len(types))
	for _, t := range types {
		upper = append(upper, strings.ToUpper(t))
	}
	return WriteOn{Mode: writeList, Types: upper}
}

// Default returns the built-in configuration. It mirrors the conventions of
// the isometric deliverables the converter was written for; projects override
// it with a YAML file.
func Default() *Config {
	return &Config{
		Coordinate: CoordinateSettings{
			ContinuityTolerance: 0.5,
			BranchTolerance:     1.0,
			PipelineMode:        ModeRepair,
		},
		LineDerivation: LineDerivation{
			LineNo:      DeriveRule{Strategy: StrategyToken, Delimiter: "-", Index: 2},
			PipingClass: DeriveRule{Strategy: StrategyToken, Delimiter: "-", Index: 3},
		},
		SmartKeywords: map[string][]string{
			"line":          {"LINE NO", "LINE NUMBER", "LINE"},
			"service":       {"SERVICE", "FLUID CODE"},
			"sequence":      {"SEQUENCE", "SEQ NO", "SEQ"},
			"pressure":      {"OPERATING PRESSURE", "OPER PRESS", "PRESSURE"},
			"temperature":   {"OPERATING TEMPERATURE", "OPER TEMP", "TEMPERATURE", "TEMP"},
			"insulation":    {"INSULATION THICKNESS", "INSUL THK", "INSULATION"},
			"hydroPressure": {"HYDRO TEST PRESSURE", "HYDROTEST", "TEST PRESSURE"},
			"densityGas":    {"GAS DENSITY", "VAPOUR DENSITY", "VAPOR DENSITY"},
			"densityLiquid": {"LIQUID DENSITY", "LIQ DENSITY"},
			"densityMixed":  {"MIXED DENSITY", "TWO PHASE DENSITY"},
			"phase":         {"PHASE", "FLUID PHASE", "STATE"},
			"pipingClass":   {"PIPING CLASS", "PIPE CLASS", "CLASS"},
		},
		Linelist: LinelistSettings{
			MixedPhasePreference:  "mixed",
			DefaultGasDensity:     "1.3",
			DefaultLiquidDensity:  "1000",
			InsulationSpecDefault: "HC",
		},
		Material: MaterialSettings{
			ClassColumn:     "CLASS",
			WallColumn:      "WALL THICKNESS",
			CorrosionColumn: "CORROSION ALLOWANCE",
			NameColumn:      "MATERIAL",
			MapDescColumn:   "DESCRIPTION",
			MapCodeColumn:   "CODE",
		},
		Weight: WeightSettings{
			BoreColumn:      "SIZE",
			LengthColumn:    "LENGTH",
			ToleranceColumn: "TOLERANCE",
			DescColumn:      "DESCRIPTION",
			WeightColumn:    "WEIGHT",
			ClassColumn:     "CLASS",
			MaterialColumn:  "MATERIAL",
			WallColumn:      "WALL THICKNESS",
			BoreEpsilon:     0.1,
			LengthTolerance: 6.0,
		},
		PCFRules: map[string]PCFRule{
			"PIPE":           {CASlots: []string{"1", "2", "3", "4", "5", "6", "7", "9", "10"}},
			"BEND":           {CASlots: []string{"1", "2", "3", "4", "5", "6", "9"}},
			"TEE":            {CASlots: []string{"1", "2", "3", "4", "5", "6", "9"}},
			"VALVE":          {CASlots: []string{"1", "2", "3", "5", "6"}},
			"FLANGE":         {CASlots: []string{"1", "2", "3", "5", "6"}},
			"REDUCER":        {CASlots: []string{"1", "2", "3", "4", "5", "6"}},
			"OLET":           {CASlots: []string{"1", "2", "3", "4", "5", "6"}},
			"GASKET":         {CASlots: []string{"1", "2", "3"}},
			"INSTRUMENT":     {CASlots: []string{"1", "2", "3", "5"}},
			"SUPPORT":        {CASlots: []string{"8", "11"}},
			"MISC-COMPONENT": {CASlots: []string{"1", "2", "3"}},
		},
		CADefinitions: map[string]CADefinition{
			"1": {CSVField: "PRESSURE", Unit: "bar", WriteOn: WriteOnAllExceptSupport()},
			"2": {CSVField: "TEMPERATURE", Unit: "degC", WriteOn: WriteOnAllExceptSupport()},
			"3": {CSVField: "MATERIAL", WriteOn: WriteOnAllExceptSupport()},
			"4": {CSVField: "WALL-THICKNESS", Unit: "mm", WriteOn: WriteOnTypes("PIPE", "BEND", "TEE", "REDUCER", "OLET")},
			"5": {CSVField: "INSULATION-THICKNESS", Unit: "mm", ZeroValue: "UNINSULATED", WriteOn: WriteOnAllExceptSupport()},
			"6": {CSVField: "DENSITY", Unit: "kg/m3", WriteOn: WriteOnAllExceptSupport()},
			"7": {CSVField: "HYDRO-PRESSURE", Unit: "bar", WriteOn: WriteOnTypes("PIPE")},
			"8": {CSVField: "SUPPORT-TAG", WriteOn: WriteOnTypes("SUPPORT")},
			"9": {CSVField: "INSULATION-SPEC", WriteOn: WriteOnAllExceptSupport()},
			"10": {CSVField: "CORROSION", Unit: "mm", WriteOn: WriteOnTypes("PIPE")},
			"11": {CSVField: "WEIGHT", Unit: "kg", WriteOn: WriteOnTypes("SUPPORT")},
		},
		SmartSlots: SmartSlots{
			Pressure:       "1",
			Temperature:    "2",
			MaterialCode:   "3",
			WallThickness:  "4",
			Insulation:     "5",
			InsulationSpec: "9",
			Density:        "6",
			HydroPressure:  "7",
			Corrosion:      "10",
			RigidType:      "8",
			RigidWeight:    "11",
		},
		CustomColumnMap: map[string]string{},
	}
}

// Load reads a YAML configuration file on top of the defaults. Missing keys
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the configuration the pipeline cannot degrade
// around.
func (c *Config) Validate() error {
	switch c.Coordinate.PipelineMode {
	case ModeSequential, ModeRepair, "":
	default:
		return fmt.Errorf("coordinateSettings.pipelineMode: unknown mode %q", c.Coordinate.PipelineMode)
	}
	if c.Coordinate.ContinuityTolerance < 0 {
		return fmt.Errorf("coordinateSettings.continuityTolerance must not be negative")
	}
	for attr, rule := range map[string]DeriveRule{
		"lineDerivation.lineNo":      c.LineDerivation.LineNo,
		"lineDerivation.pipingClass": c.LineDerivation.PipingClass,
	} {
		switch rule.Strategy {
		case StrategyToken, StrategyRegex, "":
		default:
			return fmt.Errorf("%s.strategy: unknown strategy %q", attr, rule.Strategy)
		}
	}
	return nil
}
