package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/models"
)

func newQueryCmd() *cobra.Command {
	var (
		database string
		explore  bool
		ticks    int
		seed     uint64
		workers  int
		timeout  time.Duration
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "query <typeql>",
		Short: "Run a query, lay out the answer graph and print it",
		Long: `Run a read query against a database, wait for every answer, run the force
layout for up to --ticks steps and print the positioned graph.

Use --format json|d3|dot|mermaid for graph output, table for a vertex listing
or quiet for counts. Pass - as the query to read it from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQueryArg(args[0])
			if err != nil {
				return err
			}

			req := models.QueryRequest{Database: database, Query: query, Explore: explore}
			if err := req.Validate(); err != nil {
				return err
			}
			if !validGraphFormat(flagFmt) {
				return fmt.Errorf("unsupported format: %s", flagFmt)
			}

			log, err := newLogger(logLevel, false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			l := loader.New(loader.NewDriverOpener(newDriver()), workers, log)
			snap, err := layoutQuery(ctx, l, loader.Request{Database: req.Database, Query: req.Query, Explore: req.Explore}, seed, ticks, log)
			if err != nil {
				return err
			}

			return writeGraph(os.Stdout, snap, flagFmt)
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "Database to query (required)")
	cmd.Flags().BoolVar(&explore, "explore", false, "Also fetch owned attributes, role players and type edges")
	cmd.Flags().IntVar(&ticks, "ticks", 300, "Maximum layout steps")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Layout seed")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent follow-up queries when exploring")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Query timeout")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

// readQueryArg returns arg, or stdin when arg is "-".
func readQueryArg(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := readAllLimited(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}
	return string(data), nil
}

// maxQueryBytes bounds queries read from stdin.
const maxQueryBytes = 1 << 16

func readAllLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxQueryBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxQueryBytes {
		return nil, fmt.Errorf("query exceeds %d bytes", maxQueryBytes)
	}
	return data, nil
}
