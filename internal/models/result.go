package models

import (
	"fmt"
	"time"
)

// AttributeLine is one COMPONENT-ATTRIBUTE output line before rendering.
type AttributeLine struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Render produces the literal exchange-format line:
// "<indent>COMPONENT-ATTRIBUTE<N>  <value>[ <unit>]".
func (a AttributeLine) Render(indent string) string {
	if a.Unit != "" {
		return fmt.Sprintf("%sCOMPONENT-ATTRIBUTE%s  %s %s", indent, a.Slot, a.Value, a.Unit)
	}
	return fmt.Sprintf("%sCOMPONENT-ATTRIBUTE%s  %s", indent, a.Slot, a.Value)
}

// ComponentBlock is the assembled output for one component, in emission
// order.
type ComponentBlock struct {
	Refno string          `json:"refno"`
	Type  OutputType      `json:"type"`
	Lines []AttributeLine `json:"lines"`
}

// ConversionResult is the product of one conversion run.
type ConversionResult struct {
	RunID    string           `json:"runId"`
	Blocks   []ComponentBlock `json:"blocks"`
	Orphans  []string         `json:"orphans"`
	Warnings []WarningEvent   `json:"warnings"`
	Elapsed  time.Duration    `json:"elapsedNs"`
}
