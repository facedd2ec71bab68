package controller

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/graph/model"
	"github.com/suxatcode/learn-graph-layout/layout"
	"golang.org/x/crypto/blake2b"
)

// Layouter is an interface for integration of the graph embedding
// computation with the layout storage.
//
//go:generate mockgen -destination layouter_mock.go -package controller . Layouter
type Layouter interface {
	// GetNodePositions assigns node positions from a past graph embedding
	// run stored under name. The embedding is only computed if no layout is
	// stored for this exact graph.
	GetNodePositions(ctx context.Context, name string, g *model.Graph) error
	// Reload re-runs graph embedding and stores the result under name. This
	// is a synchronous call and will take some time.
	Reload(ctx context.Context, name string, g *model.Graph) (*db.Record, layout.Stats, error)
}

// NewLayouter returns an implementation of the Layouter interface.
func NewLayouter(store db.Store, conf layout.Config) (Layouter, error) {
	return NewSpringLayouter(store, conf)
}

// implements Layouter
type SpringLayouter struct {
	store    db.Store
	embedder *layout.SpringEmbedder
}

func NewSpringLayouter(store db.Store, conf layout.Config) (*SpringLayouter, error) {
	embedder, err := layout.NewSpringEmbedder(conf)
	if err != nil {
		return nil, err
	}
	return &SpringLayouter{store: store, embedder: embedder}, nil
}

// Fingerprint identifies g together with the embedder configuration. Two
// calls of Reload with the same fingerprint produce the same positions.
func (l *SpringLayouter) Fingerprint(g *model.Graph) string {
	h, _ := blake2b.New256(nil)
	conf := l.embedder.Config()
	fmt.Fprintf(h, "rect=%v seed=%d params=%+v\n", conf.Rect, conf.Seed, conf.Params)
	for _, node := range g.Nodes {
		fmt.Fprintf(h, "node %q", node.ID)
		writeOptional(h, node.X)
		writeOptional(h, node.Y)
		io.WriteString(h, "\n")
	}
	for _, edge := range g.Edges {
		fmt.Fprintf(h, "edge %q %q\n", edge.From, edge.To)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeOptional(w io.Writer, f *float64) {
	if f == nil {
		io.WriteString(w, " -")
		return
	}
	fmt.Fprintf(w, " %v", *f)
}

func (l *SpringLayouter) meta(name string, g *model.Graph) map[string]interface{} {
	conf := l.embedder.Config()
	return map[string]interface{}{
		db.MetaName:        name,
		db.MetaVertexCount: len(g.Nodes),
		db.MetaWidth:       conf.Rect.Width,
		db.MetaHeight:      conf.Rect.Height,
		db.MetaSeed:        conf.Seed,
		db.MetaFingerprint: l.Fingerprint(g),
	}
}

// Compute runs the graph embedding and returns the resulting layout
// document without storing it.
func (l *SpringLayouter) Compute(ctx context.Context, name string, g *model.Graph) (*db.Record, layout.Stats, error) {
	if err := g.Validate(); err != nil {
		return nil, layout.Stats{}, err
	}
	pos, stats, err := layout.ComputePositions[string](ctx, l.embedder, g)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("graph layout '%s' failed: %v", name, err)
		return nil, stats, err
	}
	log.Ctx(ctx).Info().Msgf(
		"graph layout '%s' finished: stats{nodes: %d, iterations: %d, time: %d ms, max displacement: %.3f}",
		name,
		len(g.Nodes),
		stats.Iterations,
		stats.TotalTime.Milliseconds(),
		stats.MaxDisplacement,
	)
	return db.NewRecord(pos, l.meta(name, g)), stats, nil
}

func (l *SpringLayouter) Reload(ctx context.Context, name string, g *model.Graph) (*db.Record, layout.Stats, error) {
	if err := db.ValidName(name); err != nil {
		return nil, layout.Stats{}, err
	}
	record, stats, err := l.Compute(ctx, name, g)
	if err != nil {
		return nil, stats, err
	}
	if err := l.store.SaveLayout(ctx, name, record); err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return nil, stats, errors.Wrapf(err, "failed to store layout '%s'", name)
	}
	g.SetPositions(record.Pos)
	return record, stats, nil
}

func (l *SpringLayouter) GetNodePositions(ctx context.Context, name string, g *model.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	record, err := l.store.LoadLayout(ctx, name)
	if errors.Is(err, db.ErrLayoutNotFound) {
		log.Ctx(ctx).Debug().Msgf("no layout '%s' stored, computing it", name)
		_, _, err = l.Reload(ctx, name, g)
		return err
	}
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return err
	}
	if record.MetaString(db.MetaFingerprint) != l.Fingerprint(g) {
		log.Ctx(ctx).Debug().Msgf("layout '%s' is outdated, recomputing it", name)
		_, _, err = l.Reload(ctx, name, g)
		return err
	}
	if missing := g.SetPositions(record.Pos); missing > 0 {
		log.Ctx(ctx).Warn().Msgf("layout '%s' is missing %d nodes", name, missing)
	}
	return nil
}
