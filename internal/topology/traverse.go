package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/warn"
)

// Result is the traversal outcome: emission order plus the non-skip refnos
// that were never reached. Every non-skip refno lands in exactly one of the
// two.
type Result struct {
	Ordered []string
	Orphans []string
}

// Traverse walks the graph depth-first from the given start nodes.
//
// The worklist is an explicit stack (front = most recently discovered) plus a
// separate branch FIFO. Neighbours of a TEE are classified: the one whose own
// first endpoint lies within branchTolerance of the TEE's branch point starts
// a branch and is deferred to the queue; the rest continue the main run and
// go onto the stack. The stack is drained completely before a branch is
// popped, so the whole main run, and then each branch in turn, is emitted
// contiguously.
func Traverse(g *Graph, starts []string, branchTolerance float64, sink warn.Sink) *Result {
	visited := map[string]bool{}
	var ordered []string
	var stack []string
	var branchQueue []string

	pending := append([]string(nil), starts...)
	nextStart := func() (string, bool) {
		for len(pending) > 0 {
			s := pending[0]
			pending = pending[1:]
			if !visited[s] {
				return s, true
			}
		}
		return "", false
	}

	for {
		var cur string
		switch {
		case len(stack) > 0:
			cur = stack[0]
			stack = stack[1:]
		case len(branchQueue) > 0:
			cur = branchQueue[0]
			branchQueue = branchQueue[1:]
		default:
			s, ok := nextStart()
			if !ok {
				goto done
			}
			cur = s
		}

		if visited[cur] {
			continue
		}
		node, ok := g.Nodes[cur]
		if !ok {
			continue
		}
		visited[cur] = true
		ordered = append(ordered, cur)

		var unvisited []string
		for _, n := range g.Neighbors(cur) {
			if !visited[n] {
				unvisited = append(unvisited, n)
			}
		}
		if len(unvisited) == 0 {
			continue
		}

		if node.Record.Type == models.TypeTee {
			main, branch := classifyTeeNeighbors(g, node, unvisited, branchTolerance, sink)
			stack = append(main, stack...)
			branchQueue = append(branchQueue, branch...)
		} else {
			stack = append(unvisited, stack...)
		}
	}

done:
	var orphans []string
	for refno := range g.Nodes {
		if !visited[refno] {
			orphans = append(orphans, refno)
		}
	}
	sort.Strings(orphans)
	return &Result{Ordered: ordered, Orphans: orphans}
}

// classifyTeeNeighbors splits a TEE's unvisited neighbours into main-run
// continuations and the branch start. A neighbour is a branch candidate when
// its first endpoint sits within tolerance of the TEE's branch point; when
// several qualify the closest wins and the ambiguity is reported, since it
// usually means overlapping coordinates in the source.
func classifyTeeNeighbors(g *Graph, tee *Node, neighbors []string, tolerance float64, sink warn.Sink) (main, branch []string) {
	branchPt, ok := tee.Points[models.PointBranch]
	if !ok {
		return neighbors, nil
	}

	type candidate struct {
		refno string
		dist  float64
	}
	var candidates []candidate
	for _, n := range neighbors {
		node, ok := g.Nodes[n]
		if !ok {
			continue
		}
		end1, ok := node.Points[models.PointEnd1]
		if !ok {
			// SUPPORTs and OLETs connect through their centre.
			end1, ok = node.Points[models.PointCentre]
		}
		if !ok {
			continue
		}
		if d := end1.DistanceTo(branchPt); d <= tolerance {
			candidates = append(candidates, candidate{refno: n, dist: d})
		}
	}

	if len(candidates) == 0 {
		return neighbors, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.dist < best.dist {
			best = c
		}
	}
	if len(candidates) > 1 && sink != nil {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.refno)
		}
		sink.Warn(warn.Event("topology", "classifyBranch",
			fmt.Sprintf("tee %s has %d equally plausible branch starts; picking closest", tee.Record.Refno, len(candidates)),
			map[string]string{
				"tee":        tee.Record.Refno,
				"candidates": strings.Join(names, ","),
				"picked":     best.refno,
			}))
	}

	for _, n := range neighbors {
		if n == best.refno {
			branch = append(branch, n)
		} else {
			main = append(main, n)
		}
	}
	return main, branch
}
