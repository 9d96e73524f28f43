package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trendcloud/internal/config"
	"trendcloud/internal/logger"
)

var (
	logLevel string
	pretty   bool

	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wordcloud",
	Short: "Aggregate hashtag documents and lay them out as a word cloud",
	Long: `wordcloud reads hashtag trend documents from disk, merges them into
scored entries and optionally lays one page out on a canvas.

Scoring and layout defaults come from the same environment variables as the
API server (SCORE_*, LAYOUT_*, TREND_POLICY).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		log = logger.NewCLI(logLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Indent JSON output")

	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(layoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
