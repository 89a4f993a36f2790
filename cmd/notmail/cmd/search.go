package cmd

import (
	"fmt"
	"strings"

	"github.com/notmail/notmail/internal/notmuch"
	"github.com/notmail/notmail/internal/tui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search messages and print the thread index",
	Long: `Run a notmuch search and print the flattened thread index, one row
per message, the same rows the interactive client shows.

Examples:
  notmail search tag:inbox
  notmail search from:alice@example.com
  notmail search 'subject:"quarterly report" and tag:unread'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		runner := notmuch.NewRunner(cfg.Notmuch.Binary)
		forest, err := runner.Search(cmd.Context(), query)
		if err != nil {
			return err
		}

		rows := tui.Flatten(forest, cfg.UI.TitleWidth)
		out := cmd.OutOrStdout()
		for _, row := range rows {
			fmt.Fprintln(out, tui.FormatLine(row, cfg.UI.TitleWidth))
		}
		if len(rows) == 0 {
			logger.Info("no messages matched", "query", query)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
