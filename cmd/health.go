package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/parallel"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "health",
		Aliases: []string{"status", "doctor"},
		Short:   "Check the backend and local configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			w := cmd.OutOrStdout()
			ui.Banner(w, "health")
			fmt.Fprintf(w, "  %s  %s\n", ui.Brand.Sprintf("%-10s", "Version"), version)
			fmt.Fprintf(w, "  %s  %s/%s %s\n", ui.Brand.Sprintf("%-10s", "Platform"), runtime.GOOS, runtime.GOARCH, runtime.Version())
			fmt.Fprintf(w, "  %s  %s\n", ui.Brand.Sprintf("%-10s", "Config"), configFile())
			fmt.Fprintf(w, "  %s  %s\n\n", ui.Brand.Sprintf("%-10s", "Backend"), e.client.BaseURL())

			results := parallel.Run(cmd.Context(), w, probes(e.client), 4)
			if n := parallel.Failed(results); n > 0 {
				fmt.Fprintln(w)
				return fmt.Errorf("%d of %d checks failed", n, len(results))
			}
			return nil
		},
	}
}

func probes(c *api.Client) []parallel.Task {
	return []parallel.Task{
		{Name: "backend", Fn: func(ctx context.Context) (string, error) {
			h, err := c.Health(ctx)
			if err != nil {
				return "", errors.New(api.UserMessage(err))
			}
			if h.Message != "" {
				return h.Status + " · " + h.Message, nil
			}
			return h.Status, nil
		}},
		{Name: "search", Fn: func(ctx context.Context) (string, error) {
			resp, err := c.Search(ctx, "Hoi An", 3)
			if err != nil {
				return "", errors.New(api.UserMessage(err))
			}
			return fmt.Sprintf("%d matches", len(resp.Matches)), nil
		}},
	}
}
