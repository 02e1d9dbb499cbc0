package topology

import (
	"sort"

	"github.com/isotools/pcfgen/internal/geometry"
	"github.com/isotools/pcfgen/internal/models"
)

// Node is one graph vertex: the component and its connection points.
type Node struct {
	Record *models.ComponentRecord
	Points models.PointDict
}

// Graph is the reconstructed connectivity of one component set. Adjacency is
// symmetric by construction; EndpointIndex groups refnos by quantized
// coordinate cell. A graph is built once per run and rebuilt, never patched,
// when rows or tolerance change.
type Graph struct {
	Nodes         map[string]*Node
	Adjacency     map[string]map[string]struct{}
	EndpointIndex map[string][]string
}

// endpointRef pairs a component with one of its connection points, for the
// bucketed candidate scan.
type endpointRef struct {
	refno string
	at    geometry.Vec3
}

// BuildGraph constructs the topology graph. Endpoints are quantized into
// tolerance cells; candidate pairs come from each cell plus its adjacent
// cells and are confirmed by actual distance, so two points closer than the
// tolerance connect even when quantization puts them in different cells.
// Components with no coordinates stay isolated and surface later as orphans.
func BuildGraph(records []*models.ComponentRecord, tolerance float64) *Graph {
	g := &Graph{
		Nodes:         map[string]*Node{},
		Adjacency:     map[string]map[string]struct{}{},
		EndpointIndex: map[string][]string{},
	}
	cells := map[geometry.Bucket][]endpointRef{}

	for _, c := range records {
		if c.Skip {
			continue
		}
		pd := Points(c)
		g.Nodes[c.Refno] = &Node{Record: c, Points: pd}
		g.Adjacency[c.Refno] = map[string]struct{}{}

		seen := map[geometry.Bucket]bool{}
		for _, v := range pd {
			b := geometry.BucketOf(v, tolerance)
			cells[b] = append(cells[b], endpointRef{refno: c.Refno, at: v})
			if seen[b] {
				continue
			}
			seen[b] = true
			g.EndpointIndex[b.Key()] = append(g.EndpointIndex[b.Key()], c.Refno)
		}
	}

	for b, members := range cells {
		for _, nb := range b.Neighborhood() {
			for _, e := range members {
				for _, o := range cells[nb] {
					if o.refno == e.refno {
						continue
					}
					if e.at.DistanceTo(o.at) <= tolerance {
						g.addEdge(e.refno, o.refno)
					}
				}
			}
		}
	}
	return g
}

func (g *Graph) addEdge(a, b string) {
	if a == b {
		return
	}
	g.Adjacency[a][b] = struct{}{}
	g.Adjacency[b][a] = struct{}{}
}

// Neighbors returns the adjacent refnos in sorted order, so traversal
// tie-breaking is deterministic across runs.
func (g *Graph) Neighbors(refno string) []string {
	adj := g.Adjacency[refno]
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether two refnos are connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.Adjacency[a][b]
	return ok
}
