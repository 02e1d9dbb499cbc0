package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/warn"
)

func pipe(refno, name string, x1, y1, z1, x2, y2, z2 float64) *models.ComponentRecord {
	return component(refno, name, "PIPE", x1, y1, z1, x2, y2, z2)
}

func component(refno, name, typ string, x1, y1, z1, x2, y2, z2 float64) *models.ComponentRecord {
	return models.NewComponentRecord(refno, map[string]string{
		models.FieldName: name,
		models.FieldType: typ,
		"START-X":        fmt.Sprint(x1), "START-Y": fmt.Sprint(y1), "START-Z": fmt.Sprint(z1),
		"END-X": fmt.Sprint(x2), "END-Y": fmt.Sprint(y2), "END-Z": fmt.Sprint(z2),
	})
}

func tee(refno string, x1, x2, bx, by float64) *models.ComponentRecord {
	return models.NewComponentRecord(refno, map[string]string{
		models.FieldName: refno,
		models.FieldType: "TEE",
		"START-X":        fmt.Sprint(x1), "START-Y": "0", "START-Z": "0",
		"END-X": fmt.Sprint(x2), "END-Y": "0", "END-Z": "0",
		"BRANCH-X": fmt.Sprint(bx), "BRANCH-Y": fmt.Sprint(by), "BRANCH-Z": "0",
	})
}

// teeNetwork is a main run P1-T1-P2-P3 along X with a branch B1-B2 leaving
// T1's branch point at (150,0,0) in +Y.
func teeNetwork() []*models.ComponentRecord {
	p1 := pipe("P1", "P1", 0, 0, 0, 100, 0, 0)
	p1.Raw[models.FieldRigid] = "START"
	return []*models.ComponentRecord{
		p1,
		tee("T1", 100, 200, 150, 0),
		pipe("P2", "P2", 200, 0, 0, 300, 0, 0),
		pipe("P3", "P3", 300, 0, 0, 400, 0, 0),
		pipe("B1", "B1", 150, 0, 0, 150, 100, 0),
		pipe("B2", "B2", 150, 100, 0, 150, 200, 0),
	}
}

func TestBuildPointsTypeRules(t *testing.T) {
	support := models.NewComponentRecord("S1", map[string]string{
		models.FieldType: "SUPPORT",
		"CENTRE-X":       "1", "CENTRE-Y": "2", "CENTRE-Z": "3",
		"START-X": "9", "START-Y": "9", "START-Z": "9",
	})
	pd := BuildPoints(support)
	assert.Len(t, pd, 1)
	assert.Contains(t, pd, models.PointCentre)

	olet := models.NewComponentRecord("O1", map[string]string{
		models.FieldType: "OLET",
		"CENTRE-X":       "1", "CENTRE-Y": "0", "CENTRE-Z": "0",
		"BRANCH-X": "1", "BRANCH-Y": "5", "BRANCH-Z": "0",
	})
	pd = BuildPoints(olet)
	assert.Len(t, pd, 2)
	assert.Contains(t, pd, models.PointCentre)
	assert.Contains(t, pd, models.PointBranch)

	teeRec := tee("T1", 0, 10, 5, 1)
	pd = BuildPoints(teeRec)
	assert.Len(t, pd, 3)

	pipeRec := pipe("P1", "P1", 0, 0, 0, 1, 0, 0)
	pd = BuildPoints(pipeRec)
	assert.Len(t, pd, 2)
	assert.NotContains(t, pd, models.PointBranch)
}

func TestPointsCached(t *testing.T) {
	c := pipe("P1", "P1", 0, 0, 0, 1, 0, 0)
	first := Points(c)
	cached, ok := c.CachedPoints()
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestGraphSingleEdgeWithinTolerance(t *testing.T) {
	// Two components share one point to within 0.5: exactly one edge.
	a := pipe("A", "A", 0, 0, 0, 100, 0, 0)
	b := pipe("B", "B", 100.2, 0.1, -0.1, 200, 0, 0)
	g := BuildGraph([]*models.ComponentRecord{a, b}, 0.5)

	assert.True(t, g.HasEdge("A", "B"))
	assert.Len(t, g.Adjacency["A"], 1)
	assert.Len(t, g.Adjacency["B"], 1)
}

func TestGraphEdgeAcrossCellBoundary(t *testing.T) {
	// A shared point only 0.15 apart, but straddling a quantization cell
	// edge at 100.0: the neighbourhood scan must still connect it.
	a := pipe("A", "A", 0, 0, 0, 99.9, 0, 0)
	b := pipe("B", "B", 100.05, 0, 0, 200, 0, 0)
	g := BuildGraph([]*models.ComponentRecord{a, b}, 0.5)
	assert.True(t, g.HasEdge("A", "B"))
}

func TestGraphEdgeAtExactToleranceAcrossZero(t *testing.T) {
	// Endpoints exactly one tolerance apart on either side of zero.
	a := pipe("A", "A", -100, 0, 0, -0.25, 0, 0)
	b := pipe("B", "B", 0.25, 0, 0, 100, 0, 0)
	g := BuildGraph([]*models.ComponentRecord{a, b}, 0.5)
	assert.True(t, g.HasEdge("A", "B"))
}

func TestGraphNoEdgeBeyondTolerance(t *testing.T) {
	// Adjacent cells alone are not enough; the actual distance decides.
	a := pipe("A", "A", 0, 0, 0, 100, 0, 0)
	b := pipe("B", "B", 100.6, 0, 0, 200, 0, 0)
	g := BuildGraph([]*models.ComponentRecord{a, b}, 0.5)
	assert.False(t, g.HasEdge("A", "B"))
}

func TestGraphAdjacencySymmetric(t *testing.T) {
	g := BuildGraph(teeNetwork(), 0.5)
	for a, neighbors := range g.Adjacency {
		for b := range neighbors {
			assert.True(t, g.HasEdge(b, a), "edge %s-%s must be symmetric", a, b)
		}
	}
}

func TestGraphSkipsSkippedComponents(t *testing.T) {
	a := pipe("A", "A", 0, 0, 0, 100, 0, 0)
	b := pipe("B", "B", 100, 0, 0, 200, 0, 0)
	b.Skip = true
	g := BuildGraph([]*models.ComponentRecord{a, b}, 0.5)
	assert.NotContains(t, g.Nodes, "B")
	assert.Empty(t, g.Adjacency["A"])
}

func TestGraphNoCoordinatesIsolates(t *testing.T) {
	a := pipe("A", "A", 0, 0, 0, 100, 0, 0)
	bare := models.NewComponentRecord("N1", map[string]string{models.FieldType: "PIPE"})
	g := BuildGraph([]*models.ComponentRecord{a, bare}, 0.5)
	assert.Contains(t, g.Nodes, "N1")
	assert.Empty(t, g.Adjacency["N1"])
}

func TestTraverseMainRunBeforeBranch(t *testing.T) {
	records := teeNetwork()
	g := BuildGraph(records, 0.5)
	res := Traverse(g, []string{"P1"}, 1.0, warn.NewCollector())

	require.Equal(t, []string{"P1", "T1", "P2", "P3", "B1", "B2"}, res.Ordered,
		"the full main run must be emitted before the branch starts")
	assert.Empty(t, res.Orphans)
}

func TestTraversePartition(t *testing.T) {
	// An unreachable pipe far away becomes an orphan; ordered+orphans
	// partition the non-skip set.
	records := append(teeNetwork(), pipe("X1", "X1", 9000, 9000, 9000, 9100, 9000, 9000))
	g := BuildGraph(records, 0.5)
	res := Traverse(g, []string{"P1"}, 1.0, warn.NewCollector())

	total := map[string]int{}
	for _, r := range res.Ordered {
		total[r]++
	}
	for _, r := range res.Orphans {
		total[r]++
	}
	assert.Len(t, total, len(records))
	for refno, n := range total {
		assert.Equal(t, 1, n, "refno %s appears in exactly one of ordered/orphans", refno)
	}
	assert.Equal(t, []string{"X1"}, res.Orphans)
}

func TestTraverseAmbiguousBranchWarns(t *testing.T) {
	// Two neighbours both start on the branch point.
	records := []*models.ComponentRecord{
		pipe("P1", "P1", 0, 0, 0, 100, 0, 0),
		tee("T1", 100, 200, 150, 0),
		pipe("B1", "B1", 150, 0, 0, 150, 100, 0),
		pipe("B2", "B2", 150.2, 0, 0, 150, -100, 0),
	}
	records[0].Raw[models.FieldRigid] = "START"
	g := BuildGraph(records, 0.5)
	collector := warn.NewCollector()
	Traverse(g, []string{"P1"}, 1.0, collector)

	found := false
	for _, e := range collector.Events() {
		if e.Operation == "classifyBranch" {
			found = true
		}
	}
	assert.True(t, found, "ambiguous branch classification must be reported")
}

func TestRunSequenceSequentialMode(t *testing.T) {
	cfg := config.Default()
	cfg.Coordinate.PipelineMode = config.ModeSequential

	records := teeNetwork()
	records[2].Skip = true // P2
	seq := RunSequence(records, cfg, warn.NewCollector())

	assert.Equal(t, []string{"P1", "T1", "P3", "B1", "B2"}, seq.Ordered)
	assert.Empty(t, seq.Orphans)
	assert.Nil(t, seq.Graph)
}

func TestRunSequenceRepairMode(t *testing.T) {
	cfg := config.Default()
	collector := warn.NewCollector()
	seq := RunSequence(teeNetwork(), cfg, collector)

	require.NotNil(t, seq.Graph)
	assert.Equal(t, []string{"P1", "T1", "P2", "P3", "B1", "B2"}, seq.Ordered)
	assert.Zero(t, collector.Len(), "a clean run with a START marker warns about nothing")
}

func TestStartFallbackWarns(t *testing.T) {
	records := teeNetwork()
	records[0].Raw[models.FieldRigid] = "" // no START marker anywhere
	collector := warn.NewCollector()
	seq := RunSequence(records, config.Default(), collector)

	assert.NotEmpty(t, seq.Ordered)
	found := false
	for _, e := range collector.Events() {
		if e.Operation == "startNodes" {
			found = true
			assert.Equal(t, "P1", e.Context["refno"])
		}
	}
	assert.True(t, found)
}

func TestOrphanWarningListsRefnos(t *testing.T) {
	records := append(teeNetwork(), pipe("X1", "X1", 9000, 9000, 9000, 9100, 9000, 9000))
	collector := warn.NewCollector()
	RunSequence(records, config.Default(), collector)

	found := false
	for _, e := range collector.Events() {
		if e.Operation == "traverse" {
			found = true
			assert.Contains(t, e.Context["orphans"], "X1")
		}
	}
	assert.True(t, found)
}
