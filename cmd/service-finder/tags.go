package main

import (
	"fmt"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the catalog tag vocabulary",
	Long: `List every distinct tag in the catalog in first-seen order.
With --match, show only tags that fuzzy-match the pattern, best first.`,
	RunE: runTags,
}

var tagsMatch string

func init() {
	tagsCmd.Flags().StringVar(&tagsMatch, "match", "", "Fuzzy filter pattern")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Paths)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, tag := range filterTags(cat.Vocabulary(), tagsMatch) {
		fmt.Fprintln(out, tag)
	}
	return nil
}

// filterTags returns vocab unchanged for an empty pattern, otherwise the
// fuzzy matches ordered by match quality.
func filterTags(vocab []string, pattern string) []string {
	if pattern == "" {
		return vocab
	}
	matches := fuzzy.Find(pattern, vocab)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
