package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tubepulse",
		Short: "Rank a YouTube channel's videos by engagement and suggest topics",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(ingestCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(reportCmd())

	return root
}

func ingestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch a channel's recent videos into the flat file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts)
		},
	}

	cmd.Flags().StringVar(&opts.channelID, "channel", "", "channel id (default: from config)")
	cmd.Flags().StringVar(&opts.outPath, "out", "data/videos.csv", "output CSV path")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "max videos to fetch (default: from config)")
	cmd.Flags().BoolVar(&opts.fromFeed, "from-feed", false, "use the keyless channel feed instead of the Data API")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score, rank and suggest topics for ingested videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputPath, "input", "data/videos.csv", "ingested CSV to analyze")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "also write the full ranking as CSV")
	cmd.Flags().BoolVar(&opts.save, "save", false, "archive the run in the database")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "send the run summary to configured alert destinations")
	cmd.Flags().IntVar(&opts.top, "top", 10, "ranked videos to print")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "abort on the first malformed row instead of skipping")
	return cmd
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show archived analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "show one run by id (default: latest)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list archived runs instead of showing one")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	return cmd
}
