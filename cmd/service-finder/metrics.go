package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/randalmurphal/service-finder/internal/metrics"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Analyze usage metrics",
	Long:  `Analyze query metrics from the JSONL log.`,
	RunE:  runMetrics,
}

var (
	metricsSince       string
	metricsZeroResults bool
	metricsJSON        bool
)

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "last", "7d", "Time period (e.g., 1h, 24h, 7d, 30d)")
	metricsCmd.Flags().BoolVar(&metricsZeroResults, "zero-results", false, "Show only zero-result queries")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	duration, err := parseDuration(metricsSince)
	if err != nil {
		return fmt.Errorf("invalid time period: %w", err)
	}

	metricsPath := metrics.DefaultPath()
	if _, err := os.Stat(metricsPath); os.IsNotExist(err) {
		fmt.Println("No metrics data found. Run some searches to generate metrics.")
		return nil
	}

	analyzer := metrics.NewAnalyzer(metricsPath)

	if metricsZeroResults {
		queries, err := analyzer.GetZeroResultQueries(duration)
		if err != nil {
			return err
		}

		if metricsJSON {
			data, err := json.MarshalIndent(queries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode queries: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Zero-result queries (last %s):\n\n", metricsSince)
		if len(queries) == 0 {
			fmt.Println("  No zero-result queries found.")
		}
		for _, q := range queries {
			fmt.Printf("  - %q (%d times)\n", q.Query, q.Count)
		}
		return nil
	}

	summary, err := analyzer.Analyze(duration)
	if err != nil {
		return err
	}

	if metricsJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Metrics Summary (last %s):\n\n", metricsSince)
	fmt.Printf("  Total searches:      %d\n", summary.TotalSearches)
	fmt.Printf("  Avg latency:         %dms\n", summary.AvgLatencyMs)
	fmt.Printf("  Cache hits:          %d\n", summary.CacheHits)
	fmt.Printf("  Zero-result queries: %d\n", summary.ZeroResultCount)
	fmt.Printf("  Clarified:           %d\n", summary.ClarifiedCount)
	fmt.Printf("  With suggestions:    %d\n", summary.SuggestedCount)
	fmt.Printf("  Errors:              %d\n", summary.ErrorCount)
	fmt.Println()

	if len(summary.SearchesByIntent) > 0 {
		intents := make([]string, 0, len(summary.SearchesByIntent))
		for in := range summary.SearchesByIntent {
			intents = append(intents, in)
		}
		sort.Strings(intents)

		fmt.Println("  Searches by intent:")
		for _, in := range intents {
			fmt.Printf("    - %s: %d\n", in, summary.SearchesByIntent[in])
		}
		fmt.Println()
	}
	if len(summary.TopQueries) > 0 {
		fmt.Println("  Top queries:")
		for _, q := range summary.TopQueries {
			fmt.Printf("    - %q (%d times)\n", q.Query, q.Count)
		}
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	// Handle day suffix
	if len(s) > 0 && s[len(s)-1] == 'd' {
		var d int
		if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &d); err == nil {
			return time.Duration(d) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
