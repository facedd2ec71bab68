package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

type cellKey struct {
	I, J int
}

// CellKey returns the integer coordinates of the cell containing pos, for
// square cells of side cellSize. Floor division is used on both axes, so
// (-0.5, 3) with cellSize 1 lands in cell (-1, 3).
func CellKey(pos vector.Vector, cellSize float64) (int, int) {
	return int(math.Floor(pos.X() / cellSize)), int(math.Floor(pos.Y() / cellSize))
}

// SpatialGrid is a spatial hash of node indices. It restricts repulsion to
// nodes in nearby cells, which approximates the near-field force in O(n) per
// tick instead of comparing all pairs of nodes. Nodes further away than
// NeighborRadius cells do not repel each other at all.
//
// Nodes move every tick, possibly across more than one cell, so the grid is
// rebuilt from scratch with Build before each repulsion pass.
type SpatialGrid struct {
	CellSize float64
	cells    map[cellKey][]int
}

func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		CellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// Clear empties all cells, but keeps their allocated capacity.
func (g *SpatialGrid) Clear() {
	for key, cell := range g.cells {
		g.cells[key] = cell[:0]
	}
}

// Insert adds the node index at position pos.
func (g *SpatialGrid) Insert(index int, pos vector.Vector) {
	i, j := CellKey(pos, g.CellSize)
	key := cellKey{I: i, J: j}
	g.cells[key] = append(g.cells[key], index)
}

// Build replaces the contents of the grid with the current positions of
// nodes. Indices inside a cell are in ascending order.
func (g *SpatialGrid) Build(nodes []*Node) {
	g.Clear()
	for index, node := range nodes {
		g.Insert(index, node.Pos)
	}
}

// Cell returns the node indices stored in cell (i, j).
func (g *SpatialGrid) Cell(i, j int) []int {
	return g.cells[cellKey{I: i, J: j}]
}

// Neighbors appends to dst the indices of all nodes in the (2r+1)² cells
// around the cell of pos and returns the extended slice. Cells are visited
// with dx in the outer and dy in the inner loop, which keeps the result, and
// thus the force accumulation order, deterministic. The node located at pos
// itself is part of the result.
func (g *SpatialGrid) Neighbors(pos vector.Vector, radius int, dst []int) []int {
	ci, cj := CellKey(pos, g.CellSize)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			dst = append(dst, g.cells[cellKey{I: ci + dx, J: cj + dy}]...)
		}
	}
	return dst
}
