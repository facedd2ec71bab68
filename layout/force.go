package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

// calculateRepulsionForce adds the force with which a node at b pushes away a
// node at a to totalForce. The magnitude is c3/sqrt(d), directed from b to a.
// Coinciding nodes do not repel each other, as there is no direction to push
// them apart.
func (se *SpringEmbedder) calculateRepulsionForce(totalForce, tmp, a, b vector.Vector) {
	p := &se.conf.Params
	// tmp := a.Sub(b), without allocating
	tmp[0], tmp[1] = a[0]-b[0], a[1]-b[1]
	dist := tmp.Magnitude() + p.Epsilon
	scale := p.Repulsion / math.Sqrt(dist)
	vector.In(tmp).Scale(1 / dist).Scale(scale)
	vector.In(totalForce).Add(tmp)
}

// calculateAttractionForce returns the spring force along the edge from a
// node at from to a node at to, which pulls from towards to. The magnitude
// c1*ln(d/c2) is negative for edges shorter than c2, which pushes the nodes
// apart instead. The logarithm grows slowly enough that long edges do not
// collapse the layout in a single tick.
func (se *SpringEmbedder) calculateAttractionForce(from, to vector.Vector) vector.Vector {
	p := &se.conf.Params
	delta := to.Sub(from)
	dist := delta.Magnitude() + p.Epsilon
	scale := p.Attraction * math.Log(dist/p.IdealLength)
	return delta.Scale(scale / dist)
}

// repulsionForNode adds the repulsion of all other nodes within
// NeighborRadius cells of node i to force. The scratch slice is reused for
// the neighbor lookup and returned for the next call.
func (se *SpringEmbedder) repulsionForNode(force, tmp vector.Vector, i int, nodes []*Node, grid *SpatialGrid, scratch []int) []int {
	scratch = grid.Neighbors(nodes[i].Pos, se.conf.Params.NeighborRadius, scratch[:0])
	for _, j := range scratch {
		if j == i {
			continue
		}
		se.calculateRepulsionForce(force, tmp, nodes[i].Pos, nodes[j].Pos)
	}
	return scratch
}

// clampDisplacement scales disp down to a magnitude of at most maxDisp,
// keeping its direction, and returns the resulting magnitude.
func clampDisplacement(disp vector.Vector, maxDisp float64) float64 {
	d := disp.Magnitude()
	if d > maxDisp {
		vector.In(disp).Scale(maxDisp / d)
		return maxDisp
	}
	return d
}
