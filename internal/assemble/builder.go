// Package assemble builds the per-component attribute blocks. Everything is
// driven by configuration: which slots a type emits, where each value comes
// from, and which resolved values override which slots.
package assemble

import (
	"fmt"
	"strconv"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/linelist"
	"github.com/isotools/pcfgen/internal/material"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/warn"
	"github.com/isotools/pcfgen/internal/weight"
)

// Placeholders emitted for missing source values. Deliberately conspicuous so
// unresolved data is visible in the deliverable instead of silently defaulted.
const (
	placeholderNumeric = "0"
	placeholderText    = "Undefined"
)

// Builder assembles attribute lines for one component at a time. The
// reference services are shared and read-only during a run, so a Builder may
// be used across components freely.
type Builder struct {
	cfg      *config.Config
	linelist *linelist.Service
	material *material.Service
	weight   *weight.Service
	sink     warn.Sink
}

// NewBuilder wires the assembler to its reference services. Any of the
// services may be nil; the corresponding injections are then skipped.
func NewBuilder(cfg *config.Config, ll *linelist.Service, mat *material.Service, wt *weight.Service, sink warn.Sink) *Builder {
	return &Builder{cfg: cfg, linelist: ll, material: mat, weight: wt, sink: sink}
}

// Build produces the ordered attribute lines for a component. A panic during
// assembly is isolated to this component: it is logged with the refno and an
// empty block is returned, so one bad row never aborts the run.
func (b *Builder) Build(c *models.ComponentRecord) (lines []models.AttributeLine) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			refno := ""
			if c != nil {
				refno = c.Refno
			}
			if b.sink != nil {
				b.sink.Warn(warn.Event("assemble", "build",
					fmt.Sprintf("attribute assembly failed: %v", r),
					map[string]string{"refno": refno}))
			}
		}
	}()

	rule, ok := b.cfg.PCFRules[string(c.Type)]
	if !ok || len(rule.CASlots) == 0 {
		return nil
	}

	overrides := b.materialOverrides(c)
	smart, custom := b.referenceValues(c)
	b.rigidValues(c, smart)

	for _, slot := range rule.CASlots {
		def, ok := b.cfg.CADefinitions[slot]
		if !ok {
			continue
		}
		if !def.WriteOn.Applies(string(c.Type)) {
			continue
		}
		lines = append(lines, b.slotLine(c, slot, def, overrides, smart, custom))
	}
	return lines
}

// slotLine resolves one slot value under the precedence rules:
// material override, then smart injection, then custom column mapping, then
// the standard CSV-sourced value.
func (b *Builder) slotLine(c *models.ComponentRecord, slot string, def config.CADefinition, overrides, smart, custom map[string]string) models.AttributeLine {
	if v, ok := overrides[slot]; ok && v != "" {
		return models.AttributeLine{Slot: slot, Value: v, Unit: def.Unit}
	}
	if v, ok := smart[slot]; ok && v != "" {
		return models.AttributeLine{Slot: slot, Value: v, Unit: def.Unit}
	}
	if v, ok := custom[slot]; ok && v != "" {
		return models.AttributeLine{Slot: slot, Value: v, Unit: def.Unit}
	}

	v := c.Field(def.CSVField)
	numeric := def.Unit != ""
	if v == "" {
		if numeric {
			return models.AttributeLine{Slot: slot, Value: placeholderNumeric, Unit: def.Unit}
		}
		return models.AttributeLine{Slot: slot, Value: placeholderText}
	}
	if numeric && def.ZeroValue != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
			// The zero override is a text marker; the unit stays off.
			return models.AttributeLine{Slot: slot, Value: def.ZeroValue}
		}
	}
	return models.AttributeLine{Slot: slot, Value: v, Unit: def.Unit}
}

// materialOverrides resolves the piping-class attributes and binds them to
// their designated slots. The weight master is the fallback source for
// material and wall thickness when the class master yields nothing.
func (b *Builder) materialOverrides(c *models.ComponentRecord) map[string]string {
	out := map[string]string{}
	slots := b.cfg.SmartSlots

	var class string
	if b.material != nil {
		var ok bool
		class, ok = b.material.ExtractClass(c.Name())
		if ok {
			attrs := b.material.Resolve(class)
			put(out, slots.MaterialCode, attrs.MaterialCode)
			put(out, slots.WallThickness, attrs.WallThickness)
			put(out, slots.Corrosion, attrs.Corrosion)
		}
	}

	if b.weight != nil && class != "" && (out[slots.MaterialCode] == "" || out[slots.WallThickness] == "") {
		if nb, ok := c.NominalBore(); ok {
			if m, ok := b.weight.ResolveMaterial(nb, class); ok {
				if out[slots.MaterialCode] == "" {
					put(out, slots.MaterialCode, m.Material)
				}
				if out[slots.WallThickness] == "" {
					put(out, slots.WallThickness, m.WallThickness)
				}
			}
		}
	}
	return out
}

// referenceValues resolves the linelist row once, binding the smart
// attributes and the user's custom column mappings to their slots. A positive
// insulation thickness additionally injects the configured insulation spec
// default into its related slot.
func (b *Builder) referenceValues(c *models.ComponentRecord) (smart, custom map[string]string) {
	smart = map[string]string{}
	custom = map[string]string{}
	if b.linelist == nil {
		return smart, custom
	}
	row, ok := b.linelist.ResolveComponent(c)
	if !ok {
		return smart, custom
	}

	sv := b.linelist.Extract(row)
	slots := b.cfg.SmartSlots
	put(smart, slots.Pressure, sv.Pressure)
	put(smart, slots.Temperature, sv.Temperature)
	put(smart, slots.Insulation, sv.Insulation)
	put(smart, slots.HydroPressure, sv.HydroPressure)
	put(smart, slots.Density, sv.Density)

	if thickness, err := strconv.ParseFloat(sv.Insulation, 64); err == nil && thickness > 0 {
		put(smart, slots.InsulationSpec, b.cfg.Linelist.InsulationSpecDefault)
	}

	for column, slot := range b.cfg.CustomColumnMap {
		put(custom, slot, row.Get(column))
	}
	return smart, custom
}

// rigidValues injects the weight-master rigid type for supports.
func (b *Builder) rigidValues(c *models.ComponentRecord, smart map[string]string) {
	if b.weight == nil || c.Type != models.TypeSupport {
		return
	}
	nb, okNB := c.NominalBore()
	length, okLen := c.Length()
	if !okNB || !okLen {
		return
	}
	if rt, ok := b.weight.ResolveRigidType(nb, length); ok {
		put(smart, b.cfg.SmartSlots.RigidType, rt.Description)
		put(smart, b.cfg.SmartSlots.RigidWeight, rt.Weight)
	}
}

func put(m map[string]string, slot, value string) {
	if slot == "" || value == "" {
		return
	}
	m[slot] = value
}
