// Spring embedder in the style of Eades (1984), see
// https://cs.brown.edu/people/rtamassi/gdhandbook/chapters/force-directed.pdf
package layout

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/quartercastle/vector"
)

// Params are the constants of the spring embedder. They do not change while
// a layout is computed.
type Params struct {
	// Attraction (c1) scales the logarithmic spring force along edges.
	Attraction float64 `toml:"c1" json:"c1"`
	// IdealLength (c2) is the edge length at which the spring force vanishes.
	IdealLength float64 `toml:"c2" json:"c2"`
	// Repulsion (c3) scales the c3/sqrt(d) force between nearby nodes.
	Repulsion float64 `toml:"c3" json:"c3"`
	// Step (c4) converts the net force on a node into its displacement.
	Step       float64 `toml:"c4" json:"c4"`
	Iterations int     `toml:"iters" json:"iters"`
	// MaxDisplacement caps how far a node may move in a single tick.
	//	=> without it, nodes at almost equal positions are thrown across the
	//	   whole canvas by the singularities of both force laws
	MaxDisplacement float64 `toml:"max_disp" json:"max_disp"`
	// Epsilon is added to every distance to keep the force laws finite.
	Epsilon float64 `toml:"eps" json:"eps"`
	// CellSize is the side of a SpatialGrid cell, usually close to IdealLength.
	CellSize float64 `toml:"cell_size" json:"cell_size"`
	// NeighborRadius is the number of cells searched for repulsing nodes in
	// each direction, i.e. 1 => 3x3 cells, 2 => 5x5 cells.
	NeighborRadius int `toml:"neighbor_radius" json:"neighbor_radius"`
}

var DefaultParams = Params{
	Attraction:      2.0,
	IdealLength:     120.0,
	Repulsion:       1.0,
	Step:            0.10,
	Iterations:      150,
	MaxDisplacement: 10.0,
	Epsilon:         1e-6,
	CellSize:        140.0,
	NeighborRadius:  1,
}

// ConfigError reports a layout configuration that cannot be simulated.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid layout config %s=%v: %s", e.Field, e.Value, e.Reason)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate returns a *ConfigError for the first parameter that is out of
// range. Zero iterations are allowed and leave nodes at their initial
// positions.
func (p Params) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"c1", p.Attraction},
		{"c2", p.IdealLength},
		{"c3", p.Repulsion},
		{"c4", p.Step},
		{"max_disp", p.MaxDisplacement},
		{"eps", p.Epsilon},
		{"cell_size", p.CellSize},
	} {
		if !finite(f.value) {
			return &ConfigError{Field: f.name, Value: f.value, Reason: "must be finite"}
		}
	}
	switch {
	case p.IdealLength <= 0:
		return &ConfigError{Field: "c2", Value: p.IdealLength, Reason: "must be positive"}
	case p.Iterations < 0:
		return &ConfigError{Field: "iters", Value: p.Iterations, Reason: "must not be negative"}
	case p.MaxDisplacement <= 0:
		return &ConfigError{Field: "max_disp", Value: p.MaxDisplacement, Reason: "must be positive"}
	case p.Epsilon <= 0:
		return &ConfigError{Field: "eps", Value: p.Epsilon, Reason: "must be positive"}
	case p.CellSize <= 0:
		return &ConfigError{Field: "cell_size", Value: p.CellSize, Reason: "must be positive"}
	case p.NeighborRadius < 0:
		return &ConfigError{Field: "neighbor_radius", Value: p.NeighborRadius, Reason: "must not be negative"}
	}
	return nil
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r *Rect) Contains(pos vector.Vector) bool {
	return pos.X() >= r.X && pos.X() <= r.X+r.Width && pos.Y() >= r.Y && pos.Y() <= r.Y+r.Height
}

func (r *Rect) Min() vector.Vector {
	return vector.Vector{r.X, r.Y}
}

func (r *Rect) Max() vector.Vector {
	return vector.Vector{r.X + r.Width, r.Y + r.Height}
}

// seedMargin keeps nodes with seed coordinates off the border of the canvas.
const seedMargin = 20.0

type Config struct {
	// Rect is the canvas. All positions stay inside of it after every tick.
	Rect   Rect
	Seed   int64
	Params Params
	// Parallelization is the number of goroutines computing the repulsion
	// force. Each goroutine owns a contiguous range of nodes, so results do
	// not depend on this value. 0 computes repulsion on the calling goroutine.
	Parallelization int
	// Trace is called after the positions of all nodes were updated, once per
	// tick. nodes must not be modified.
	Trace func(iteration int, nodes []*Node)
}

var DefaultConfig = Config{
	Rect:   Rect{X: 0, Y: 0, Width: 1200, Height: 800},
	Seed:   123,
	Params: DefaultParams,
}

// SpringEmbedder computes positions for graph nodes, such that nodes
// connected by an edge are about Params.IdealLength apart and unconnected
// nodes are pushed away from each other.
type SpringEmbedder struct {
	conf Config
}

func NewSpringEmbedder(conf Config) (*SpringEmbedder, error) {
	se := &SpringEmbedder{}
	if err := se.ApplyConfig(conf); err != nil {
		return nil, err
	}
	return se, nil
}

// ApplyConfig replaces the configuration. A zero canvas width or height
// falls back to the one of DefaultConfig.Rect, and zero-valued Params fall
// back to DefaultParams.
func (se *SpringEmbedder) ApplyConfig(conf Config) error {
	if conf.Rect.Width == 0.0 {
		conf.Rect.Width = DefaultConfig.Rect.Width
	}
	if conf.Rect.Height == 0.0 {
		conf.Rect.Height = DefaultConfig.Rect.Height
	}
	if conf.Params == (Params{}) {
		conf.Params = DefaultParams
	}
	if conf.Rect.Width < 0 || !finite(conf.Rect.Width) {
		return &ConfigError{Field: "width", Value: conf.Rect.Width, Reason: "must be positive"}
	}
	if conf.Rect.Height < 0 || !finite(conf.Rect.Height) {
		return &ConfigError{Field: "height", Value: conf.Rect.Height, Reason: "must be positive"}
	}
	if err := conf.Params.Validate(); err != nil {
		return err
	}
	se.conf = conf
	return nil
}

func (se *SpringEmbedder) Config() Config {
	return se.conf
}

func randomVectorInside(rect Rect, rndSource func() float64) vector.Vector {
	return vector.Vector{
		rect.X + rndSource()*rect.Width,
		rect.Y + rndSource()*rect.Height,
	}
}

func seedVectorInside(rect Rect, x, y float64) vector.Vector {
	return vector.Vector{
		rect.X + x*(rect.Width-2*seedMargin) + seedMargin,
		rect.Y + y*(rect.Height-2*seedMargin) + seedMargin,
	}
}

type Stats struct {
	Iterations int
	TotalTime  time.Duration
	// MaxDisplacement is the largest distance a node was moved by forces in
	// a single tick, before it was clamped to the canvas.
	MaxDisplacement float64
}

// InitializeNodes assigns the initial position of every node. Nodes with
// both seed coordinates are mapped from [0,1]² onto the canvas, all others
// are placed uniformly at random. The random source is seeded with
// Config.Seed on every call and consumed in the order of nodes, so the result
// only depends on the order of nodes, never on a global generator.
func (se *SpringEmbedder) InitializeNodes(nodes []*Node) {
	rnd := rand.New(rand.NewSource(se.conf.Seed))
	for _, node := range nodes {
		if node.X != nil && node.Y != nil {
			node.Pos = seedVectorInside(se.conf.Rect, *node.X, *node.Y)
		} else {
			node.Pos = randomVectorInside(se.conf.Rect, rnd.Float64)
		}
	}
}

// ComputeLayout initializes nodes and runs exactly Params.Iterations ticks of
// the simulation. There is no convergence check. If ctx is done before all
// ticks ran, the positions reached so far are returned along with ctx.Err().
func (se *SpringEmbedder) ComputeLayout(ctx context.Context, nodes []*Node, edges []*Edge) ([]*Node, Stats, error) {
	startTime := time.Now()
	stats := Stats{}
	graph, err := NewGraph(nodes, edges, se)
	if err != nil {
		return nodes, stats, err
	}
	if len(graph.Nodes) == 0 {
		return graph.Nodes, stats, nil
	}
	se.InitializeNodes(graph.Nodes)
	for stats.Iterations < se.conf.Params.Iterations {
		select {
		case <-ctx.Done():
			stats.TotalTime = time.Since(startTime)
			return graph.Nodes, stats, ctx.Err()
		default:
			// continue looping
		}
		disp := graph.ApplyForce()
		stats.MaxDisplacement = math.Max(stats.MaxDisplacement, disp)
		if se.conf.Trace != nil {
			se.conf.Trace(stats.Iterations, graph.Nodes)
		}
		stats.Iterations += 1
	}
	stats.TotalTime = time.Since(startTime)
	return graph.Nodes, stats, nil
}
