package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	service "github.com/okian/underdog/internal/app"
	"github.com/okian/underdog/internal/config"
	"github.com/okian/underdog/internal/domain/analysis"
	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/format"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errBadFlag = errors.New("bad flag")

var analyzeFlags struct {
	file   string
	recent []string
	counts []string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one set of inputs offline",
	Long: "Analyze reads the recent winners and per-competitor win counts from a YAML\n" +
		"file and/or flags, validates them and prints the recommendation.\n\n" +
		"Input file format:\n\n" +
		"  recent: [A, B, C, D, E, F, A, B, C, D]\n" +
		"  counts:\n" +
		"    A: 20\n" +
		"    B: 20\n",
	Example: "  underdog analyze --file inputs.yaml\n" +
		"  underdog analyze --recent A,B,C,D,E,F,A,B,C,D --count A=20 --count B=20 ...",
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.file, "file", "", "YAML file with recent and counts")
	f.StringSliceVar(&analyzeFlags.recent, "recent", nil, "Recent winners, oldest first (comma separated); overrides the file")
	f.StringArrayVar(&analyzeFlags.counts, "count", nil, "Win count as name=n (repeatable); overrides the file per name")
}

// analyzeInput is the YAML shape accepted by --file.
type analyzeInput struct {
	Recent []string       `yaml:"recent"`
	Counts map[string]int `yaml:"counts"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	in, err := readAnalyzeInput(analyzeFlags.file, analyzeFlags.recent, analyzeFlags.counts)
	if err != nil {
		return err
	}

	svc, err := offlineService(cliConfig)
	if err != nil {
		return err
	}

	counts := make(map[model.Competitor]int, len(in.Counts))
	for name, n := range in.Counts {
		counts[model.Competitor(name)] = n
	}
	rep, err := svc.Analyze(cmd.Context(), model.Competitors(in.Recent...), counts)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), format.Report(rep, tableMode()))
	return err
}

// readAnalyzeInput merges the optional file with flag overrides.
func readAnalyzeInput(path string, recent, counts []string) (analyzeInput, error) {
	var in analyzeInput
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if in.Counts == nil {
		in.Counts = make(map[string]int)
	}

	if len(recent) > 0 {
		in.Recent = make([]string, len(recent))
		for i, r := range recent {
			in.Recent[i] = strings.TrimSpace(r)
		}
	}
	for _, kv := range counts {
		name, raw, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return in, fmt.Errorf("%w: --count %q must be name=n", errBadFlag, kv)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return in, fmt.Errorf("%w: --count %q: %w", errBadFlag, kv, err)
		}
		in.Counts[name] = n
	}
	return in, nil
}

// offlineService builds an unstarted service; Analyze needs no store.
func offlineService(cfg *config.Config) (*service.Service, error) {
	if cfg == nil {
		cfg = config.New(context.Background())
	}
	roster, err := cfg.BuildRoster()
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithRoster(roster),
		service.WithWindowSizes(cfg.RecentSize, cfg.WindowSize),
		service.WithAnalyzer(analysis.NewAnalyzer(
			analysis.WithRecencyDepth(cfg.RecencyDepth),
			analysis.WithStreakThreshold(cfg.StreakThreshold),
			analysis.WithLowWinThreshold(cfg.LowWinThreshold),
		)),
		service.WithSource(service.SourceCLI),
	), nil
}
