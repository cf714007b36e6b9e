package main

import (
	"fmt"
	"os"

	"github.com/okian/underdog/internal/config"
	"github.com/okian/underdog/internal/format"
	"github.com/okian/underdog/pkg/logger"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	markdown bool
}

// cliConfig is loaded once before any subcommand runs.
var cliConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "underdog",
	Short: "Recommend competitors unlikely to be due for a win",
	Long: "underdog excludes competitors who won recently, hold a winning streak or lead\n" +
		"the aggregate window, and recommends everyone else.\n\n" +
		"Roster and thresholds come from UNDERDOG_* environment variables or the YAML\n" +
		"file named by UNDERDOG_CONFIG.",
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.Version = version
}

func tableMode() format.Mode {
	if rootFlags.markdown {
		return format.Markdown
	}
	return format.ASCII
}

// initLogging sends logs to stderr so tables on stdout stay clean.
func initLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := logger.InitWithFormat(cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	cliConfig = cfg
	return logger.SetLevelString(cfg.LogLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
