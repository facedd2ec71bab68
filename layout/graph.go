package layout

import (
	"fmt"
	"math"
	"sync"

	"github.com/quartercastle/vector"
	"golang.org/x/exp/constraints"
)

type Graph struct {
	Nodes    []*Node `json:"nodes"`
	Edges    []*Edge `json:"edges"`
	embedder *SpringEmbedder
	grid     *SpatialGrid
}

type Node struct {
	Name string `json:"name"`
	// X, Y are optional seed coordinates in [0,1]. They are only used if both
	// are set.
	X     *float64      `json:"x,omitempty"`
	Y     *float64      `json:"y,omitempty"`
	Pos   vector.Vector `json:"pos,omitempty"`
	force vector.Vector
}

// Edge connects two nodes by their index. Self-loops and parallel edges are
// allowed, a self-loop never moves its node.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

func NewGraph(nodes []*Node, edges []*Edge, embedder *SpringEmbedder) (*Graph, error) {
	for _, edge := range edges {
		for _, index := range []int{edge.Source, edge.Target} {
			if index < 0 || index >= len(nodes) {
				return nil, &ConfigError{
					Field:  "edge",
					Value:  fmt.Sprintf("%d->%d", edge.Source, edge.Target),
					Reason: fmt.Sprintf("node index out of range [0,%d)", len(nodes)),
				}
			}
		}
	}
	for index, node := range nodes {
		if (node.X != nil && !finite(*node.X)) || (node.Y != nil && !finite(*node.Y)) {
			return nil, &ConfigError{Field: "node", Value: index, Reason: "seed coordinates must be finite"}
		}
	}
	for _, node := range nodes {
		node.force = vector.Vector{0, 0}
	}
	return &Graph{
		Nodes:    nodes,
		Edges:    edges,
		embedder: embedder,
		grid:     NewSpatialGrid(embedder.conf.Params.CellSize),
	}, nil
}

// ApplyForce runs a single tick: it accumulates repulsion and attraction per
// node and moves all nodes accordingly. It returns the largest displacement
// of this tick.
func (g *Graph) ApplyForce() float64 {
	g.resetForce()
	g.repulsionGrid()
	g.attractionByEdgesForce()
	return g.updatePositions()
}

func clamp[T constraints.Float](in, lo, hi T) T {
	if math.IsNaN(float64(in)) {
		return in
	}
	if in > hi {
		return hi
	} else if in < lo {
		return lo
	}
	return in
}

func VectorClampVector(v, min, max vector.Vector) vector.Vector {
	return vector.Vector{
		clamp(v.X(), min.X(), max.X()),
		clamp(v.Y(), min.Y(), max.Y()),
	}
}

func (g *Graph) updatePositions() float64 {
	conf := &g.embedder.conf
	boundsMin, boundsMax := conf.Rect.Min(), conf.Rect.Max()
	maxDisp := 0.0
	for _, node := range g.Nodes {
		vector.In(node.force).Scale(conf.Params.Step)
		d := clampDisplacement(node.force, conf.Params.MaxDisplacement)
		maxDisp = math.Max(maxDisp, d)
		node.Pos = VectorClampVector(node.Pos.Add(node.force), boundsMin, boundsMax)
	}
	return maxDisp
}

func (g *Graph) resetForce() {
	for _, node := range g.Nodes {
		node.force[0], node.force[1] = 0, 0
	}
}

func (g *Graph) attractionByEdgesForce() {
	for _, edge := range g.Edges {
		from := g.Nodes[edge.Source]
		to := g.Nodes[edge.Target]
		force := g.embedder.calculateAttractionForce(from.Pos, to.Pos)
		vector.In(from.force).Add(force)
		vector.In(to.force).Sub(force)
	}
}

// repulsionGrid builds the spatial grid and adds the repulsion force to every
// node. With Parallelization > 0 the nodes are split into contiguous ranges,
// one per goroutine. Every goroutine only reads the grid and positions, and
// only writes the force of the nodes in its own range.
func (g *Graph) repulsionGrid() {
	g.grid.Build(g.Nodes)
	calculateForce := func(lo, hi int) {
		tmp := vector.Vector{0, 0}
		scratch := []int{}
		for i := lo; i < hi; i++ {
			scratch = g.embedder.repulsionForNode(g.Nodes[i].force, tmp, i, g.Nodes, g.grid, scratch)
		}
	}
	p := g.embedder.conf.Parallelization
	total := len(g.Nodes)
	if p <= 0 || total < 2 {
		calculateForce(0, total)
		return
	}
	if p > total {
		p = total
	}
	wg := sync.WaitGroup{}
	wg.Add(p)
	for i := 0; i < p; i++ {
		go func(i int) {
			defer wg.Done()
			calculateForce(i*total/p, (i+1)*total/p)
		}(i)
	}
	wg.Wait()
}
