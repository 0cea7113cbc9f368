package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridsnake/internal/platform/tui"
	"github.com/vovakirdan/gridsnake/internal/storage"
)

var boardCmd = &cobra.Command{
	Use:   "board [source]",
	Short: "Browse the scoreboard",
	Long: `Open an interactive scoreboard with one tab per source.

Examples:
  snake board
  snake board greedy`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBoard,
}

func runBoard(_ *cobra.Command, args []string) {
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := storage.Open(appConfig.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening episode database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	initial := storage.SourceHuman
	if len(args) == 1 {
		initial = args[0]
	}

	if err := tui.RunScoreboard(store, width, height, initial); err != nil {
		fmt.Fprintf(os.Stderr, "Error running scoreboard: %v\n", err)
		os.Exit(1)
	}
}
