package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/stream"
	"github.com/graphstudio/studio/internal/tui"
)

func newVisualiseCmd() *cobra.Command {
	var (
		database      string
		explore       bool
		seed          uint64
		workers       int
		frameInterval time.Duration
		drainInterval time.Duration
		logFile       string
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:     "visualise <typeql>",
		Aliases: []string{"visualize", "vis"},
		Short:   "Run a query and watch its answer graph lay out in the terminal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQueryArg(args[0])
			if err != nil {
				return err
			}

			req := models.QueryRequest{Database: database, Query: query, Explore: explore}
			if err := req.Validate(); err != nil {
				return err
			}

			log, closeLog, err := fileLogger(logFile, logLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			s := stream.New()
			b := graph.NewBuilder(s)
			l := loader.New(loader.NewDriverOpener(newDriver()), workers, log)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			loaded := make(chan struct{})
			go func() {
				defer close(loaded)
				err := l.Run(ctx, loader.Request{Database: req.Database, Query: req.Query, Explore: req.Explore}, b, s)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Warn("query failed")
				}
			}()

			m := tui.New(tui.Config{
				Title:         req.Database,
				SimulationID:  uuid.NewString(),
				Seed:          seed,
				Stream:        s,
				FrameInterval: frameInterval,
				DrainInterval: drainInterval,
				Log:           log,
			})
			runErr := tui.Run(m)

			cancel()
			<-loaded
			return runErr
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "Database to query (required)")
	cmd.Flags().BoolVar(&explore, "explore", false, "Also fetch owned attributes, role players and type edges")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Layout seed")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent follow-up queries when exploring")
	cmd.Flags().DurationVar(&frameInterval, "frame-interval", simulation.DefaultFrameInterval, "Time between layout frames")
	cmd.Flags().DurationVar(&drainInterval, "drain-interval", simulation.DefaultDrainInterval, "Time between stream drains")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: discard)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}
