package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/msalah0e/tripgraph/internal/selection"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	var (
		format        string
		output        string
		width, height int
	)

	cmd := &cobra.Command{
		Use:     "graph [id,id...]",
		Aliases: []string{"kg"},
		Short:   "Visualize the relationships between entities",
		Long: `Open the graph view for a list of entity IDs, or export it.

IDs may be given as separate arguments or comma-separated. With no IDs the
graph view shows its empty state.

  tripgraph graph hoi_an quang_nam
  tripgraph graph hoi_an,quang_nam --format dot | dot -Tpng > graph.png
  tripgraph graph hoi_an,quang_nam --format svg -o graph.svg
  tripgraph graph hoi_an --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := selection.ParseIDs(strings.Join(args, ","))
			if format == "tui" {
				return runTUI(cmd, graphURL(ids))
			}

			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			loader := nav.NewLoader(e.client)
			model, err := loader.Fetch(cmd.Context(), ids)
			if err != nil {
				return fmt.Errorf("graph: %s", api.UserMessage(err))
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return exportGraph(cmd.Context(), w, model, format, renderOptions(e), width, height)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tui", "Output: tui, dot, json or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the export to a file instead of stdout")
	cmd.Flags().IntVar(&width, "width", 960, "SVG width in pixels")
	cmd.Flags().IntVar(&height, "height", 640, "SVG height in pixels")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletionFunc)
	return cmd
}

func exportGraph(ctx context.Context, w io.Writer, model *graphmodel.Model, format string, opts render.Options, width, height int) error {
	switch format {
	case "dot":
		_, err := io.WriteString(w, model.ExportDOT())
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model)
	case "svg":
		svg := render.NewSVG(width, height)
		r := render.New(model, opts)
		defer r.Dispose()
		if err := r.Mount(svg); err != nil {
			return err
		}
		if err := r.Settle(ctx, 2000); err != nil && !errors.Is(err, render.ErrNotSettled) {
			return err
		}
		_, err := io.WriteString(w, svg.Render())
		return err
	}
	return fmt.Errorf("unknown format %q (use tui, dot, json or svg)", format)
}
