package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridsnake/internal/storage"
)

var (
	flagScoresRun   string
	flagScoresClear string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [source]",
	Short: "Show the longest snakes",
	Long: `Without arguments, summarize every source (human and each agent).
With a source, display its top 10 episodes.

Examples:
  snake scores
  snake scores human
  snake scores greedy
  snake scores --run 6f1c...       # Episodes saved by one 'snake run --save'
  snake scores --clear random      # Forget every random-agent episode`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresRun, "run", "", "List the episodes of one run ID")
	scoresCmd.Flags().StringVar(&flagScoresClear, "clear", "", "Delete every episode of a source")
	scoresCmd.MarkFlagsMutuallyExclusive("run", "clear")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(appConfig.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening episode database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagScoresClear != "":
		err = clearSource(os.Stdout, store, flagScoresClear)
	case flagScoresRun != "":
		err = printRun(os.Stdout, store, flagScoresRun)
	case len(args) == 0:
		err = printAllStats(os.Stdout, store)
	default:
		err = printTop(os.Stdout, store, args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printTop(w io.Writer, store *storage.Store, source string) error {
	episodes, err := store.TopEpisodes(source, 10)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Longest snakes - %s\n\n", source)

	if len(episodes) == 0 {
		fmt.Fprintln(w, "No episodes recorded yet.")
		fmt.Fprintln(w)
		if source == storage.SourceHuman {
			fmt.Fprintln(w, "Play 'snake play' to set the first record!")
		} else {
			fmt.Fprintf(w, "Run 'snake run --agent %s --save' to record some.\n", source)
		}
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-6s  %-7s  %-10s  %s\n", "Rank", "Length", "Ticks", "Outcome", "Date")
	fmt.Fprintf(w, "  %-4s  %-6s  %-7s  %-10s  %s\n", "----", "------", "-----", "-------", "----")

	for i, e := range episodes {
		dateStr := e.CreatedAt.Format("2006-01-02 15:04")
		fmt.Fprintf(w, "  %-4d  %-6d  %-7d  %-10s  %s\n", i+1, e.Length, e.Ticks, e.Outcome, dateStr)
	}

	fmt.Fprintln(w)
	if best, err := store.BestLength(source); err == nil {
		fmt.Fprintf(w, "Best: %d\n", best)
	}
	return nil
}

// printRun lists the episodes of one batch run in the order they were saved.
func printRun(w io.Writer, store *storage.Store, runID string) error {
	episodes, err := store.RunEpisodes(runID)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		fmt.Fprintf(w, "No episodes saved for run %s.\n", runID)
		return nil
	}

	fmt.Fprintf(w, "Run %s - %s\n\n", runID, episodes[0].Source)
	fmt.Fprintf(w, "  %-7s  %-20s  %-6s  %-7s  %-10s  %s\n", "Episode", "Seed", "Length", "Ticks", "Outcome", "Reward")
	fmt.Fprintf(w, "  %-7s  %-20s  %-6s  %-7s  %-10s  %s\n", "-------", "----", "------", "-----", "-------", "------")
	for i, e := range episodes {
		fmt.Fprintf(w, "  %-7d  %-20d  %-6d  %-7d  %-10s  %.0f\n", i, e.Seed, e.Length, e.Ticks, e.Outcome, e.Reward)
	}
	return nil
}

func clearSource(w io.Writer, store *storage.Store, source string) error {
	if err := store.ClearEpisodes(source); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared episodes for %s.\n", source)
	return nil
}

func printAllStats(w io.Writer, store *storage.Store) error {
	stats, err := store.AllStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "No episodes recorded yet.")
		return nil
	}

	sources := make([]string, 0, len(stats))
	for src := range stats {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	fmt.Fprintf(w, "  %-12s  %-8s  %-6s  %-8s  %-6s  %s\n", "Source", "Episodes", "Best", "Avg", "Filled", "Last played")
	fmt.Fprintf(w, "  %-12s  %-8s  %-6s  %-8s  %-6s  %s\n", "------", "--------", "----", "---", "------", "-----------")
	for _, src := range sources {
		st := stats[src]
		fmt.Fprintf(w, "  %-12s  %-8d  %-6d  %-8.1f  %-6d  %s\n",
			src, st.Episodes, st.BestLength, st.AvgLength, st.Filled, st.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
