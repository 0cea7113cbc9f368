package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridsnake/internal/registry"
	"github.com/vovakirdan/gridsnake/internal/sim"
	"github.com/vovakirdan/gridsnake/internal/storage"
)

var (
	flagAgent    string
	flagEpisodes int
	flagWorkers  int
	flagMaxTicks int
	flagOut      string
	flagSave     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run headless episodes with an agent",
	Long: `Play a batch of episodes without a display, one goroutine per worker.

Episode i is seeded with seed+i, so a batch is reproducible for a fixed
--seed regardless of --workers. Every transition can be written as one
JSON object per line for offline training.

Examples:
  snake run --agent greedy --episodes 1000
  snake run --agent random --seed 7 --out transitions.jsonl
  snake run --agent greedy --save        # Record results on the scoreboard`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagAgent, "agent", "", "Agent name (see 'snake agents', overrides config)")
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Number of episodes (overrides config)")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Parallel workers (overrides config)")
	runCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", -1, "Truncate episodes after N ticks, 0 = never (overrides config)")
	runCmd.Flags().StringVar(&flagOut, "out", "", "Write transitions as JSON lines to this file")
	runCmd.Flags().BoolVar(&flagSave, "save", false, "Save episode results to the database")
}

func runRun(_ *cobra.Command, _ []string) {
	simCfg := appConfig.Sim
	if flagAgent != "" {
		simCfg.Agent = flagAgent
	}
	if flagEpisodes > 0 {
		simCfg.Episodes = flagEpisodes
	}
	if flagWorkers > 0 {
		simCfg.Workers = flagWorkers
	}
	if flagMaxTicks >= 0 {
		simCfg.MaxTicks = flagMaxTicks
	}

	factory, err := registry.FactoryFor(simCfg.Agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'snake agents' to see available agents.")
		os.Exit(1)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	stats := &sim.StatsCollector{}
	collectors := []sim.Collector{stats}

	var jsonl *sim.JSONLCollector
	var out *bufio.Writer
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", flagOut, err)
			os.Exit(1)
		}
		defer f.Close()
		out = bufio.NewWriter(f)
		jsonl = sim.NewJSONLCollector(out)
		collectors = append(collectors, jsonl)
	}

	batch := &sim.Batch{
		Episodes:  simCfg.Episodes,
		Workers:   simCfg.Workers,
		BaseSeed:  seed,
		MaxTicks:  simCfg.MaxTicks,
		NewPolicy: factory,
		Collector: sim.Collectors(collectors...),
		Logger:    logger.WithPrefix("sim"),
	}

	if flagSave {
		store, err := storage.Open(appConfig.Storage.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening episode database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		batch.Sink = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting run", "agent", simCfg.Agent, "episodes", simCfg.Episodes,
		"workers", simCfg.Workers, "seed", seed)

	_, runErr := batch.Run(ctx)

	if out != nil {
		if err := out.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", flagOut, err)
			os.Exit(1)
		}
		if err := jsonl.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", flagOut, err)
			os.Exit(1)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Run interrupted.")
		} else {
			fmt.Fprintf(os.Stderr, "Error running episodes: %v\n", runErr)
		}
		os.Exit(1)
	}

	printSummary(batch.RunID, simCfg.Agent, seed, stats.Summary())
	if jsonl != nil {
		fmt.Printf("Wrote %d transitions to %s\n", jsonl.Written(), flagOut)
	}
	if flagSave {
		fmt.Printf("Saved; list with 'snake scores --run %s'\n", batch.RunID)
	}
}

func printSummary(runID, agent string, seed int64, s sim.Summary) {
	fmt.Printf("Run %s - %s\n", runID, agent)
	fmt.Println()
	fmt.Printf("  %-12s %d\n", "Seed", seed)
	fmt.Printf("  %-12s %d\n", "Episodes", s.Episodes)
	fmt.Printf("  %-12s %d died, %d filled, %d truncated\n", "Outcomes", s.Died, s.Filled, s.Truncated)
	fmt.Printf("  %-12s %d\n", "Best length", s.BestLength)
	fmt.Printf("  %-12s %.2f\n", "Mean length", s.MeanLength)
	fmt.Printf("  %-12s %.1f\n", "Mean ticks", s.MeanTicks)
	fmt.Printf("  %-12s %.3f\n", "Mean reward", s.MeanReward)
}
