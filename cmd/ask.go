package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/chat"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var (
		plain bool
		style string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Long: `Send a single chat turn and print the answer, the matching entities and
the graph facts. The printed IDs can be passed to tripgraph graph.

  tripgraph ask "What is there to see around Hoi An?"
  tripgraph ask --plain "Beaches near Da Nang"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			session := chat.NewSession(e.client, chat.WithLogger(e.logger.Named("chat")))
			if err := session.Send(cmd.Context(), strings.Join(args, " ")); err != nil {
				return fmt.Errorf("ask: %s", userMessage(err))
			}
			latest, _ := session.Latest()

			w := cmd.OutOrStdout()
			if style == "" {
				style = e.cfg.UI.Style
			}
			fmt.Fprintln(w, renderAnswer(latest.Content, plain || !e.cfg.UI.Markdown, style))

			if len(latest.Matches) > 0 {
				ui.Brand.Fprintln(w, "Matches")
				printMatches(w, latest.Matches)
				fmt.Fprintln(w)
			}
			if len(latest.Facts) > 0 {
				ui.Brand.Fprintln(w, "Graph facts")
				rows := make([][]string, 0, len(latest.Facts))
				for _, f := range latest.Facts {
					rows = append(rows, []string{f.Source, f.Rel, f.TargetID, f.TargetName})
				}
				ui.Table(w, []string{"SOURCE", "RELATION", "TARGET", "NAME"}, rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print the answer without markdown rendering")
	cmd.Flags().StringVar(&style, "style", "", "Markdown style (overrides config)")
	_ = cmd.RegisterFlagCompletionFunc("style", styleCompletionFunc)
	return cmd
}

func renderAnswer(md string, plain bool, style string) string {
	if plain {
		return md
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func userMessage(err error) string {
	if errors.Is(err, chat.ErrRejected) {
		return "question is empty"
	}
	return api.UserMessage(err)
}
