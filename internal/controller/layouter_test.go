package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/graph/model"
	"github.com/suxatcode/learn-graph-layout/layout"
)

func newTestGraph() *model.Graph {
	x, y := 0.5, 0.5
	return &model.Graph{
		Nodes: []*model.Node{{ID: "1", X: &x, Y: &y}, {ID: "2"}, {ID: "3"}},
		Edges: []*model.Edge{{From: "1", To: "2"}, {From: "2", To: "3"}},
	}
}

func newTestLayouter(t *testing.T) (*SpringLayouter, *db.MockStore) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)
	conf := layout.DefaultConfig
	conf.Params.Iterations = 20
	l, err := NewSpringLayouter(store, conf)
	assert.NoError(t, err)
	return l, store
}

func TestNewLayouter_invalidConfig(t *testing.T) {
	conf := layout.DefaultConfig
	conf.Params.Epsilon = -1
	_, err := NewLayouter(nil, conf)
	configErr := &layout.ConfigError{}
	assert.True(t, errors.As(err, &configErr))
	assert.Equal(t, "eps", configErr.Field)
}

func TestSpringLayouter_Fingerprint(t *testing.T) {
	l, _ := newTestLayouter(t)
	assert := assert.New(t)
	g := newTestGraph()
	fp := l.Fingerprint(g)
	assert.Len(fp, 64)
	assert.Equal(fp, l.Fingerprint(newTestGraph()), "stable")

	g.Edges = g.Edges[:1]
	assert.NotEqual(fp, l.Fingerprint(g), "edges change the fingerprint")
	g = newTestGraph()
	g.Nodes[1].X = g.Nodes[0].X
	assert.NotEqual(fp, l.Fingerprint(g), "a partial seed changes the fingerprint")

	other, _ := newTestLayouter(t)
	conf := other.embedder.Config()
	conf.Seed = 7
	assert.NoError(other.embedder.ApplyConfig(conf))
	assert.NotEqual(fp, other.Fingerprint(newTestGraph()), "config changes the fingerprint")
}

func TestSpringLayouter_Reload(t *testing.T) {
	l, store := newTestLayouter(t)
	ctx := context.Background()
	g := newTestGraph()
	var saved *db.Record
	store.EXPECT().SaveLayout(gomock.Any(), "chain", gomock.Any()).DoAndReturn(
		func(ctx context.Context, name string, record *db.Record) error {
			saved = record
			return nil
		},
	)
	record, stats, err := l.Reload(ctx, "chain", g)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(20, stats.Iterations)
	assert.Same(saved, record)
	assert.Len(record.Pos, 3)
	assert.Equal("chain", record.Meta[db.MetaName])
	assert.Equal(3, record.Meta[db.MetaVertexCount])
	assert.Equal(1200.0, record.Meta[db.MetaWidth])
	assert.Equal(800.0, record.Meta[db.MetaHeight])
	assert.Equal(int64(123), record.Meta[db.MetaSeed])
	assert.Equal(l.Fingerprint(g), record.MetaString(db.MetaFingerprint))
	for _, node := range g.Nodes {
		if assert.NotNil(node.Position, node.ID) {
			assert.Equal(record.Pos[node.ID].X, node.Position.X)
			assert.Equal(record.Pos[node.ID].Y, node.Position.Y)
		}
	}

	g2 := newTestGraph()
	store.EXPECT().SaveLayout(gomock.Any(), "chain", gomock.Any()).Return(nil)
	record2, _, err := l.Reload(ctx, "chain", g2)
	assert.NoError(err)
	assert.Equal(record.Pos, record2.Pos, "deterministic")
}

func TestSpringLayouter_Reload_errors(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		Name    string
		Graph   *model.Graph
		Layout  string
		Prepare func(store *db.MockStore)
		Check   func(assert *assert.Assertions, err error)
	}{
		{
			Name:   "unknown edge endpoint",
			Graph:  &model.Graph{Nodes: []*model.Node{{ID: "1"}}, Edges: []*model.Edge{{From: "1", To: "x"}}},
			Layout: "a",
			Check: func(assert *assert.Assertions, err error) {
				configErr := &layout.ConfigError{}
				assert.True(errors.As(err, &configErr))
				assert.Equal("link", configErr.Field)
			},
		},
		{
			Name:   "null node",
			Graph:  &model.Graph{Nodes: []*model.Node{{ID: "1"}, nil}},
			Layout: "a",
			Check: func(assert *assert.Assertions, err error) {
				assert.EqualError(err, "node 1 is null")
			},
		},
		{
			Name:   "invalid name",
			Graph:  newTestGraph(),
			Layout: "../a",
			Check: func(assert *assert.Assertions, err error) {
				assert.Error(err)
			},
		},
		{
			Name:   "store fails",
			Graph:  newTestGraph(),
			Layout: "a",
			Prepare: func(store *db.MockStore) {
				store.EXPECT().SaveLayout(gomock.Any(), "a", gomock.Any()).Return(errors.New("disk full"))
			},
			Check: func(assert *assert.Assertions, err error) {
				assert.ErrorContains(err, "disk full")
			},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			l, store := newTestLayouter(t)
			if test.Prepare != nil {
				test.Prepare(store)
			}
			record, _, err := l.Reload(ctx, test.Layout, test.Graph)
			assert := assert.New(t)
			assert.Nil(record)
			test.Check(assert, err)
		})
	}
}

func TestSpringLayouter_GetNodePositions(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		Name           string
		Prepare        func(l *SpringLayouter, store *db.MockStore)
		ExpectErr      bool
		ExpectPosition *model.Vector
	}{
		{
			Name: "stored layout is used",
			Prepare: func(l *SpringLayouter, store *db.MockStore) {
				store.EXPECT().LoadLayout(gomock.Any(), "g").Return(&db.Record{
					Meta: map[string]interface{}{db.MetaFingerprint: l.Fingerprint(newTestGraph())},
					Pos: map[string]layout.Position{
						"1": {X: 1, Y: 1}, "2": {X: 2, Y: 2}, "3": {X: 3, Y: 3},
					},
				}, nil)
			},
			ExpectPosition: &model.Vector{X: 1, Y: 1},
		},
		{
			Name: "missing layout is computed",
			Prepare: func(l *SpringLayouter, store *db.MockStore) {
				store.EXPECT().LoadLayout(gomock.Any(), "g").Return(nil, db.ErrLayoutNotFound)
				store.EXPECT().SaveLayout(gomock.Any(), "g", gomock.Any()).Return(nil)
			},
		},
		{
			Name: "outdated layout is recomputed",
			Prepare: func(l *SpringLayouter, store *db.MockStore) {
				store.EXPECT().LoadLayout(gomock.Any(), "g").Return(&db.Record{
					Meta: map[string]interface{}{db.MetaFingerprint: "old"},
					Pos:  map[string]layout.Position{"1": {X: 1, Y: 1}},
				}, nil)
				store.EXPECT().SaveLayout(gomock.Any(), "g", gomock.Any()).Return(nil)
			},
		},
		{
			Name: "load error",
			Prepare: func(l *SpringLayouter, store *db.MockStore) {
				store.EXPECT().LoadLayout(gomock.Any(), "g").Return(nil, errors.New("connection refused"))
			},
			ExpectErr: true,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			l, store := newTestLayouter(t)
			test.Prepare(l, store)
			g := newTestGraph()
			err := l.GetNodePositions(ctx, "g", g)
			assert := assert.New(t)
			if test.ExpectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			for _, node := range g.Nodes {
				assert.NotNil(node.Position, node.ID)
			}
			if test.ExpectPosition != nil {
				assert.Equal(test.ExpectPosition, g.Nodes[0].Position)
			}
		})
	}
}

func TestSpringLayouter_Compute(t *testing.T) {
	// no store is needed to compute a layout
	l, err := NewSpringLayouter(nil, layout.Config{Params: layout.Params{Iterations: 0}})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(layout.DefaultParams.Iterations, l.embedder.Config().Params.Iterations, "zero params fall back to defaults")
	x, y := 0.0, 1.0
	g := &model.Graph{Nodes: []*model.Node{{ID: "only", X: &x, Y: &y}}}
	record, _, err := l.Compute(context.Background(), "", g)
	assert.NoError(err)
	assert.Equal(map[string]layout.Position{"only": {X: 20, Y: 780}}, record.Pos, "a single node only moves by clamping")
	assert.Nil(g.Nodes[0].Position, "graph is left untouched")
}
