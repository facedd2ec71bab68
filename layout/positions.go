package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Position is the final location of a vertex on the canvas. It is encoded as
// a two-element JSON array [x, y].
type Position struct {
	X, Y float64
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	// pointers tell a null coordinate apart from 0
	xy := []*float64{}
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("position must have 2 coordinates, got %d", len(xy))
	}
	for i, c := range xy {
		if c == nil {
			return fmt.Errorf("coordinate %d of position is null", i)
		}
	}
	p.X, p.Y = *xy[0], *xy[1]
	return nil
}

// Vertex is a vertex as supplied by an external graph. ID is never
// interpreted, only compared. X and Y are optional seed coordinates in [0,1].
type Vertex[ID comparable] struct {
	ID   ID
	X, Y *float64
}

type Link[ID comparable] struct {
	Source, Target ID
}

// GraphSource is implemented by graphs that can be laid out. Vertices must
// return the same order on every call for layouts to be reproducible.
type GraphSource[ID comparable] interface {
	Vertices() []Vertex[ID]
	Links() []Link[ID]
}

// StaticGraph is a GraphSource backed by slices.
type StaticGraph[ID comparable] struct {
	V []Vertex[ID]
	L []Link[ID]
}

func (g StaticGraph[ID]) Vertices() []Vertex[ID] { return g.V }
func (g StaticGraph[ID]) Links() []Link[ID]      { return g.L }

// ComputePositions lays out g and returns a freshly allocated map with one
// entry per vertex. Vertices are indexed in the order returned by
// g.Vertices().
func ComputePositions[ID comparable](ctx context.Context, se *SpringEmbedder, g GraphSource[ID]) (map[ID]Position, Stats, error) {
	vertices := g.Vertices()
	nodes := make([]*Node, 0, len(vertices))
	lookup := make(map[ID]int, len(vertices))
	for index, v := range vertices {
		if _, exists := lookup[v.ID]; exists {
			return nil, Stats{}, &ConfigError{Field: "vertex", Value: v.ID, Reason: "duplicate vertex id"}
		}
		if (v.X != nil && !finite(*v.X)) || (v.Y != nil && !finite(*v.Y)) {
			return nil, Stats{}, &ConfigError{Field: "vertex", Value: v.ID, Reason: "seed coordinates must be finite"}
		}
		lookup[v.ID] = index
		nodes = append(nodes, &Node{Name: fmt.Sprint(v.ID), X: v.X, Y: v.Y})
	}
	links := g.Links()
	edges := make([]*Edge, 0, len(links))
	for _, link := range links {
		source, ok := lookup[link.Source]
		if !ok {
			return nil, Stats{}, &ConfigError{Field: "link", Value: link.Source, Reason: "unknown source vertex"}
		}
		target, ok := lookup[link.Target]
		if !ok {
			return nil, Stats{}, &ConfigError{Field: "link", Value: link.Target, Reason: "unknown target vertex"}
		}
		edges = append(edges, &Edge{Source: source, Target: target})
	}
	nodes, stats, err := se.ComputeLayout(ctx, nodes, edges)
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return nil, stats, err
	}
	positions := make(map[ID]Position, len(nodes))
	for index, v := range vertices {
		positions[v.ID] = Position{X: nodes[index].Pos.X(), Y: nodes[index].Pos.Y()}
	}
	return positions, stats, err
}
