// Package pipeline wires the conversion stages together: rows in, ordered
// attribute blocks out.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/isotools/pcfgen/internal/assemble"
	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/linelist"
	"github.com/isotools/pcfgen/internal/material"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/topology"
	"github.com/isotools/pcfgen/internal/warn"
	"github.com/isotools/pcfgen/internal/weight"
)

// Converter runs conversions. It is synchronous: one Run call does the whole
// pipeline and returns the result. The reference services are shared and
// read-only for the duration of a run.
type Converter struct {
	cfg      *config.Config
	linelist *linelist.Service
	material *material.Service
	weight   *weight.Service
	sink     warn.Sink
}

// NewConverter assembles a converter from its collaborators. sink receives
// every warning as it happens; the run result additionally carries them all.
func NewConverter(cfg *config.Config, ll *linelist.Service, mat *material.Service, wt *weight.Service, sink warn.Sink) *Converter {
	return &Converter{cfg: cfg, linelist: ll, material: mat, weight: wt, sink: sink}
}

// Run converts one component set. Every warning emitted during the run is
// tagged with the run ID and collected onto the result; nothing in the
// pipeline aborts the run.
func (c *Converter) Run(records []*models.ComponentRecord) *models.ConversionResult {
	start := time.Now()
	runID := uuid.New().String()

	collector := warn.NewCollector()
	sink := warn.WithContext{
		Next: warn.Tee{collector, c.sink},
		Ctx:  map[string]string{"run": runID},
	}

	index := make(map[string]*models.ComponentRecord, len(records))
	for _, r := range records {
		index[r.Refno] = r
	}

	seq := topology.RunSequence(records, c.cfg, sink)
	builder := assemble.NewBuilder(c.cfg, c.linelist, c.material, c.weight, sink)

	blocks := make([]models.ComponentBlock, 0, len(seq.Ordered))
	for _, refno := range seq.Ordered {
		rec, ok := index[refno]
		if !ok {
			continue
		}
		blocks = append(blocks, models.ComponentBlock{
			Refno: refno,
			Type:  rec.Type,
			Lines: builder.Build(rec),
		})
	}

	return &models.ConversionResult{
		RunID:    runID,
		Blocks:   blocks,
		Orphans:  seq.Orphans,
		Warnings: collector.Events(),
		Elapsed:  time.Since(start),
	}
}
