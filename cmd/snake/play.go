package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridsnake/internal/games/snake"
	"github.com/vovakirdan/gridsnake/internal/platform/tui"
	"github.com/vovakirdan/gridsnake/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play snake in this terminal",
	Long: `Start a game in the current terminal.

The snake moves one cell every few frames and wraps around the board
edges. Eating the apple grows it by one; running into itself ends the game.

Controls:
  Arrows/WASD/HJKL - Steer
  P/Space          - Pause
  R                - Restart (after game over)
  Esc/B            - Leave a paused or finished game
  Ctrl+S           - Save a text screenshot
  Q/Ctrl+C         - Quit

Examples:
  snake play
  snake play --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := storage.Open(appConfig.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open episode database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	// Info lines would land on the alternate screen.
	playLogger := logger.WithPrefix("snake-play")
	if playLogger.GetLevel() < log.WarnLevel {
		playLogger.SetLevel(log.WarnLevel)
	}

	runErr := tui.Run(snake.New(), store, runtimeConfig(width, height), playLogger)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
