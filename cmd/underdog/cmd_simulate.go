package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/okian/underdog/internal/format"
	"github.com/okian/underdog/internal/simulate"
	"github.com/spf13/cobra"
)

var simulateFlags struct {
	url         string
	rounds      int
	rps         float64
	timeout     time.Duration
	seed        int64
	replayEvery int
	keep        bool
	verbose     bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play random rounds against a running server and verify every report",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.url, "url", "http://localhost:9080", "Base URL of the underdog server")
	f.IntVar(&simulateFlags.rounds, "rounds", 100, "Number of rounds to play")
	f.Float64Var(&simulateFlags.rps, "rps", 0, "Rounds per second; 0 plays as fast as possible")
	f.DurationVar(&simulateFlags.timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.Int64Var(&simulateFlags.seed, "seed", 0, "Generator seed; 0 picks one from the clock")
	f.IntVar(&simulateFlags.replayEvery, "replay-every", 10, "Replay every Nth round ID; 0 disables")
	f.BoolVar(&simulateFlags.keep, "keep", false, "Keep the session after the run")
	f.BoolVar(&simulateFlags.verbose, "verbose", false, "Log every round")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	seed := simulateFlags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	stats, err := simulate.Run(cmd.Context(), &simulate.Config{
		BaseURL:     simulateFlags.url,
		Rounds:      simulateFlags.rounds,
		RPS:         simulateFlags.rps,
		Timeout:     simulateFlags.timeout,
		Seed:        seed,
		ReplayEvery: simulateFlags.replayEvery,
		Keep:        simulateFlags.keep,
		Verbose:     simulateFlags.verbose,
	})
	if stats != nil {
		printSimulation(cmd.OutOrStdout(), stats, seed, tableMode())
	}
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	return nil
}

func printSimulation(out io.Writer, stats *simulate.Stats, seed int64, m format.Mode) {
	fmt.Fprintln(out, format.KeyValues("Simulation", [][2]any{
		{"Session", stats.SessionID},
		{"Seed", seed},
		{"Rounds played", stats.RoundsPlayed},
		{"Replays", stats.Replays},
		{"Duplicates", stats.Duplicates},
		{"Reports verified", stats.Verified},
		{"All excluded", stats.AllExcluded},
		{"Failed", stats.Failed},
		{"Duration", stats.Duration.Round(time.Millisecond)},
	}, m))

	names := make([]string, 0, len(stats.Wins)+len(stats.Recommended))
	for name := range stats.Wins {
		names = append(names, name)
	}
	for name := range stats.Recommended {
		if _, ok := stats.Wins[name]; !ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	slices.Sort(names)

	w := format.NewTable(m)
	w.AppendHeader(table.Row{"Competitor", "Wins", "Recommended"})
	for _, name := range names {
		w.AppendRow(table.Row{name, stats.Wins[name], stats.Recommended[name]})
	}
	fmt.Fprintln(out, format.Render(w, m))
}
