package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the TypeDB server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			if err := newDriver().Health(ctx); err != nil {
				return fmt.Errorf("typedb at %s is not reachable: %w", flagAddress, err)
			}
			elapsed := time.Since(start).Round(time.Millisecond)

			switch flagFmt {
			case fmtQuiet:
				fmt.Fprintln(os.Stdout, "ok")
			case fmtTable:
				formatTable(os.Stdout, []string{"ADDRESS", "STATUS", "LATENCY"}, [][]string{{flagAddress, "ok", elapsed.String()}})
			default:
				return formatJSON(os.Stdout, map[string]string{
					"address": flagAddress,
					"status":  "ok",
					"latency": elapsed.String(),
				})
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the server")
	return cmd
}
