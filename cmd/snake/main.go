// snake is a deterministic 16x16 toroidal snake for the terminal, with a
// headless batch runner for scripted and learning agents.
//
// Usage:
//
//	snake play               - Play in this terminal
//	snake serve              - Start SSH server for remote play
//	snake run                - Run a batch of headless episodes with an agent
//	snake scores [source]    - Show the longest snakes
//	snake board              - Browse the scoreboard
//	snake agents             - List registered agents
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.snake/config.yaml, ./configs/snake.yaml)
//	--seed <value>      - RNG seed for reproducible games (0 = time based)
//	--db <path>         - Episode database path
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import agents to register them
	_ "github.com/vovakirdan/gridsnake/internal/agents"
	"github.com/vovakirdan/gridsnake/internal/config"
	"github.com/vovakirdan/gridsnake/internal/core"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	appConfig config.Config
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake - a 16x16 wraparound snake for terminals and agents",
	Long: `Snake is a deterministic grid snake on a 16x16 torus. Play it in your
terminal, serve it over SSH, or run batches of headless episodes with
scripted agents to produce training transitions.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play
  run      - Run headless episodes with an agent
  scores   - Show the longest snakes
  board    - Browse the scoreboard
  agents   - List registered agents

Examples:
  snake play --seed 42
  snake run --agent greedy --episodes 500 --out transitions.jsonl
  snake scores greedy
  snake serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to episode database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(agentsCmd)
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake",
		Level:           level,
	})

	appConfig = cfg
	logger.Debug("configuration loaded", "command", cmd.Name(), "db", cfg.Storage.DBPath)
	return nil
}

// runtimeConfig builds the driver configuration for a screen of the given size.
func runtimeConfig(width, height int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:       width,
		ScreenH:       height,
		TickRate:      appConfig.Driver.TargetFPS,
		FramesPerTick: appConfig.Driver.FramesPerTick,
		CellW:         appConfig.Display.CellWidth,
		CellH:         appConfig.Display.CellHeight,
		Seed:          flagSeed,
	}
}
