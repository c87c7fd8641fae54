package cmd

import (
	"fmt"

	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/msalah0e/tripgraph/internal/viewer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graph views to a local browser",
		Long: `Start the local graph viewer.

  tripgraph serve                       # listen on the configured address
  tripgraph serve --addr 127.0.0.1:9000

Routes:
  /                     open a graph by entering IDs
  /graph?ids=a,b        graph page with the settled layout
  /graph.svg?ids=a,b    the layout as SVG
  /graph.json?ids=a,b   nodes and edges as JSON
  /healthz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			cfg := viewer.DefaultConfig()
			cfg.Addr = e.cfg.Viewer.Addr
			if addr != "" {
				cfg.Addr = addr
			}
			cfg.Render = renderOptions(e)
			cfg.Backend = e.client.BaseURL()

			loader := nav.NewLoader(e.client, nav.WithLoaderLogger(e.logger.Named("nav")))
			srv := viewer.New(cfg, loader,
				viewer.WithMetrics(e.metrics.Registry()),
				viewer.WithLogger(e.logger.Named("viewer")),
			)

			w := cmd.OutOrStdout()
			return srv.Run(cmd.Context(), func(bound string) {
				ui.Banner(w, "graph viewer")
				fmt.Fprintf(w, "  Listening on %s\n", ui.Info.Sprint("http://"+bound))
				fmt.Fprintf(w, "  Backend      %s\n", ui.Subtle.Sprint(e.client.BaseURL()))
				fmt.Fprintf(w, "  %s\n", ui.Subtle.Sprint("Press Ctrl+C to stop"))
				e.logger.Debug("viewer ready", zap.String("addr", bound))
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
