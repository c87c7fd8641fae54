package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entities without generating an answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			query := strings.Join(args, " ")
			resp, err := e.client.Search(cmd.Context(), query, topK)
			if err != nil {
				return fmt.Errorf("search: %s", api.UserMessage(err))
			}

			w := cmd.OutOrStdout()
			ui.Banner(w, fmt.Sprintf("search %q", query))
			if len(resp.Matches) == 0 {
				fmt.Fprintln(w, "  No matches.")
				return nil
			}
			printMatches(w, resp.Matches)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of matches to return")
	return cmd
}

func printMatches(w io.Writer, matches []api.Match) {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			m.ID,
			m.DisplayName(),
			m.EntityType(),
			m.Locality(),
			fmt.Sprintf("%.1f%%", m.Score*100),
		})
	}
	ui.Table(w, []string{"ID", "NAME", "TYPE", "CITY", "SCORE"}, rows)
}
