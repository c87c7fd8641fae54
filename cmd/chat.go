package cmd

import (
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/msalah0e/tripgraph/internal/selection"
	"github.com/msalah0e/tripgraph/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "chat",
		Aliases: []string{"ui", "tui"},
		Short:   "Interactive chat with a graph view",
		Long: `Open the interactive client.

Ask questions in the chat view. Answers list matching entities and graph
facts; add them to the selection with tab and space, then press ctrl+g to
open the selection as a graph. Logs go to the log file (see tripgraph config path).

  tripgraph chat
  tripgraph chat -v          # debug-level log file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, nav.ChatPath)
		},
	}
}

func runTUI(cmd *cobra.Command, startURL string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	e.logger.Info("starting interactive client",
		zap.String("version", version),
		zap.String("api", e.client.BaseURL()),
		zap.String("start", startURL),
	)
	return tui.Run(cmd.Context(), tui.Options{
		Client:   e.client,
		Logger:   e.logger,
		Render:   renderOptions(e),
		Markdown: e.cfg.UI.Markdown,
		Style:    e.cfg.UI.Style,
		StartURL: startURL,
	})
}

func renderOptions(e *env) render.Options {
	opts := render.DefaultOptions()
	opts.Physics = e.cfg.Layout
	opts.Logger = e.logger.Named("render")
	return opts
}

func graphURL(ids []string) string {
	return nav.GraphURL(selection.New(ids...))
}
