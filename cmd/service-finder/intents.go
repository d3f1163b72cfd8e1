package main

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/service-finder/internal/search"
	"github.com/spf13/cobra"
)

var intentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "List configured intents in precedence order",
	RunE:  runIntents,
}

func init() {
	rootCmd.AddCommand(intentsCmd)
}

func runIntents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, in := range search.NewClassifier(cfg.Intents).Intents() {
		fmt.Fprintf(out, "%d. %s\n", in.Order+1, in.ID)
		fmt.Fprintf(out, "   triggers: %s\n", strings.Join(in.Triggers, ", "))
		if len(in.Expand) > 0 {
			fmt.Fprintf(out, "   expands:  %s\n", strings.Join(in.Expand, ", "))
		}
		fmt.Fprintf(out, "   message:  %s\n", in.Message)
	}
	return nil
}
