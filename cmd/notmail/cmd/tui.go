package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/notmail/notmail/internal/htmltext"
	"github.com/notmail/notmail/internal/notmuch"
	"github.com/notmail/notmail/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive mail client",
	Long: `Open the interactive terminal client.

Navigation:
  ↑/k, ↓/j    Move up/down
  PgUp/PgDn   Page up/down
  gg / G      Jump to top / bottom
  Enter       Open message / view attachment
  l           Edit the search string
  m           Compose a new message
  q           Quit (close the reading view)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal; the interactive client needs one")
	}

	// While the TUI owns the screen, logs either go to a file or nowhere.
	if cfg.UI.LogFile != "" {
		f, err := tea.LogToFile(cfg.UI.LogFile, "notmail")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}

	runner := notmuch.NewRunner(cfg.Notmuch.Binary)
	conv := htmltext.New(cfg.View.Converter, cfg.View.Lynx, cfg.View.WrapWidth)

	model := tui.New(runner, conv, tui.Options{
		Config:  cfg,
		Version: Version,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
