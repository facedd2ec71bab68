package model

import (
	"github.com/pkg/errors"
	"github.com/suxatcode/learn-graph-layout/layout"
)

type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

type Node struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	// X and Y are optional seed coordinates, normalized to [0,1].
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Position *Vector  `json:"position,omitempty"`
}

type Edge struct {
	ID   string `json:"id,omitempty"`
	From string `json:"from"`
	To   string `json:"to"`
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Validate returns an error for null entries in g.Nodes or g.Edges, as
// decoded from json `null`.
func (g *Graph) Validate() error {
	for i, node := range g.Nodes {
		if node == nil {
			return errors.Errorf("node %d is null", i)
		}
	}
	for i, edge := range g.Edges {
		if edge == nil {
			return errors.Errorf("edge %d is null", i)
		}
	}
	return nil
}

// Vertices implements layout.GraphSource. Nodes keep the order of g.Nodes.
func (g *Graph) Vertices() []layout.Vertex[string] {
	vertices := make([]layout.Vertex[string], 0, len(g.Nodes))
	for _, node := range g.Nodes {
		vertices = append(vertices, layout.Vertex[string]{ID: node.ID, X: node.X, Y: node.Y})
	}
	return vertices
}

// Links implements layout.GraphSource.
func (g *Graph) Links() []layout.Link[string] {
	links := make([]layout.Link[string], 0, len(g.Edges))
	for _, edge := range g.Edges {
		links = append(links, layout.Link[string]{Source: edge.From, Target: edge.To})
	}
	return links
}

// SetPositions assigns positions to all nodes found in positions and returns
// the number of nodes without a position.
func (g *Graph) SetPositions(positions map[string]layout.Position) int {
	missing := 0
	for _, node := range g.Nodes {
		pos, ok := positions[node.ID]
		if !ok {
			node.Position = nil
			missing++
			continue
		}
		node.Position = &Vector{X: pos.X, Y: pos.Y}
	}
	return missing
}
