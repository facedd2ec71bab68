package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/suxatcode/learn-graph-layout/db"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show layout.json",
		Short: "Print metadata and bounding box of a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := db.ReadRecordFile(args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

func printRecord(w io.Writer, record *db.Record) {
	for _, key := range db.SortedKeys(record.Meta) {
		fmt.Fprintf(w, "%s: %v\n", key, record.Meta[key])
	}
	fmt.Fprintf(w, "nodes: %d\n", len(record.Pos))
	if minX, minY, maxX, maxY, ok := record.Bounds(); ok {
		fmt.Fprintf(w, "bounds: [%.2f, %.2f] - [%.2f, %.2f]\n", minX, minY, maxX, maxY)
	}
}
