package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/graph/model"
	"github.com/suxatcode/learn-graph-layout/internal/app"
	"github.com/suxatcode/learn-graph-layout/internal/controller"
	"github.com/suxatcode/learn-graph-layout/layout"
)

type runOptions struct {
	in, out, params, name string
	width, height         float64
	seed                  int64
	parallelization       int
}

func newRunCmd() *cobra.Command {
	opts := runOptions{
		width:           layout.DefaultConfig.Rect.Width,
		height:          layout.DefaultConfig.Rect.Height,
		seed:            layout.DefaultConfig.Seed,
		parallelization: runtime.NumCPU(),
	}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute a layout for a graph",
		Long: `Compute a layout for a graph.

The graph is read as json: {"nodes": [{"id": "a", "x": 0.1, "y": 0.9}], "edges": [{"from": "a", "to": "b"}]}.
The optional x and y of a node are seed coordinates in [0,1]. The layout is
written as {"meta": {...}, "pos": {"a": [x, y]}}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "graph json file (default: stdin)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "layout output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "toml file with layout parameters")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "layout", "layout name stored in the metadata")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "canvas width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "canvas height")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "seed of the random initial placement")
	cmd.Flags().IntVar(&opts.parallelization, "parallel", opts.parallelization, "goroutines computing repulsion")
	return cmd
}

func readGraph(r io.Reader) (*model.Graph, error) {
	g := &model.Graph{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(g); err != nil {
		return nil, errors.Wrap(err, "invalid graph")
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid graph")
	}
	return g, nil
}

func runLayout(ctx context.Context, stdin io.Reader, stdout io.Writer, opts runOptions) error {
	if opts.in != "" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		stdin = f
	}
	g, err := readGraph(stdin)
	if err != nil {
		return err
	}
	params, err := app.LoadParams(opts.params)
	if err != nil {
		return err
	}
	conf := layout.Config{
		Rect:            layout.Rect{Width: opts.width, Height: opts.height},
		Seed:            opts.seed,
		Params:          params,
		Parallelization: opts.parallelization,
		Trace: func(iteration int, nodes []*layout.Node) {
			if iteration%25 == 0 {
				log.Ctx(ctx).Debug().Msgf("iteration %d of %d", iteration, params.Iterations)
			}
		},
	}
	layouter, err := controller.NewSpringLayouter(nil, conf)
	if err != nil {
		return err
	}
	record, _, err := layouter.Compute(ctx, opts.name, g)
	if err != nil {
		return err
	}
	if opts.out != "" {
		return db.WriteRecordFile(opts.out, record)
	}
	data, err := db.EncodeRecord(record)
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(data, '\n'))
	return err
}
