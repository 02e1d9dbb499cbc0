package topology

import (
	"fmt"
	"strings"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/warn"
)

// rigidStartMarker flags a component as a traversal start node. Sheets are
// hand-typed, so the comparison is trimmed and case-insensitive.
const rigidStartMarker = "START"

// Sequence is the sequencer output: emission order, orphans and, in repair
// mode, the topology graph the order came from.
type Sequence struct {
	Ordered []string
	Orphans []string
	Graph   *Graph
}

// RunSequence dispatches on the configured pipeline mode. Sequential mode
// trusts the source row order and skips graph construction entirely; repair
// mode (the default) rebuilds order from coordinates.
func RunSequence(records []*models.ComponentRecord, cfg *config.Config, sink warn.Sink) *Sequence {
	if cfg.Coordinate.PipelineMode == config.ModeSequential {
		var ordered []string
		for _, c := range records {
			if !c.Skip {
				ordered = append(ordered, c.Refno)
			}
		}
		return &Sequence{Ordered: ordered}
	}

	g := BuildGraph(records, cfg.Coordinate.ContinuityTolerance)
	starts := startNodes(records, sink)
	result := Traverse(g, starts, cfg.Coordinate.BranchTolerance, sink)

	if len(result.Orphans) > 0 && sink != nil {
		sink.Warn(warn.Event("topology", "traverse",
			fmt.Sprintf("%d components were never reached; check their coordinates", len(result.Orphans)),
			map[string]string{"orphans": strings.Join(result.Orphans, ",")}))
	}

	return &Sequence{Ordered: result.Ordered, Orphans: result.Orphans, Graph: g}
}

// startNodes selects the traversal start components: everything flagged
// rigid=START in row order, else the first non-skipped row as a heuristic
// fallback, which is warned about because nothing guarantees it is a valid
// pipeline start.
func startNodes(records []*models.ComponentRecord, sink warn.Sink) []string {
	var starts []string
	for _, c := range records {
		if c.Skip {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(c.Rigid()), rigidStartMarker) {
			starts = append(starts, c.Refno)
		}
	}
	if len(starts) > 0 {
		return starts
	}

	for _, c := range records {
		if c.Skip {
			continue
		}
		if sink != nil {
			sink.Warn(warn.Event("topology", "startNodes",
				"no component is flagged rigid=START; falling back to the first row",
				map[string]string{"refno": c.Refno}))
		}
		return []string{c.Refno}
	}
	return nil
}
