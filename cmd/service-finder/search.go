package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/randalmurphal/service-finder/internal/search"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Find services matching a question",
	Long: `Run a query through the full pipeline and print the answer.
With no query, lists the first catalog entries.`,
	Example: `  service-finder search pay water bill
  service-finder search --json "report pothole"`,
	RunE: runSearch,
}

var searchJSON bool

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Logging.Level)

	svc, cleanup, err := openService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Find(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		return writeResultJSON(out, res)
	}

	printResult(out, res)
	return nil
}

func writeResultJSON(w io.Writer, res *search.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printResult(w io.Writer, res *search.Result) {
	fmt.Fprintln(w, res.Message)
	fmt.Fprintln(w, res.Meta)
	fmt.Fprintln(w)

	if res.Clarifier != nil {
		fmt.Fprintln(w, res.Clarifier.Prompt)
		for _, opt := range res.Clarifier.Options {
			fmt.Fprintf(w, "  - %s  (try: %q)\n", opt.Label, opt.Query)
		}
		fmt.Fprintln(w)
	}

	for i, r := range res.Results {
		e := r.Entry
		fmt.Fprintf(w, "%2d. %s", i+1, e.Name)
		if e.Org != "" {
			fmt.Fprintf(w, " (%s)", e.Org)
		}
		if r.Score != nil {
			fmt.Fprintf(w, "  [%.2f]", *r.Score)
		}
		fmt.Fprintln(w)

		if e.Summary != "" {
			fmt.Fprintf(w, "    %s\n", e.Summary)
		}
		if link := e.PrimaryLink(); link != nil {
			fmt.Fprintf(w, "    %s: %s\n", link.Label, link.URL)
		}
		if uri := e.PhoneURI(); uri != "" {
			fmt.Fprintf(w, "    Phone: %s (%s)\n", e.Contact.Phone, uri)
		}
		if len(r.MatchedOn) > 0 {
			fmt.Fprintf(w, "    Matched on: %s\n", strings.Join(r.MatchedOn, ", "))
		}
	}

	if len(res.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(res.Suggestions, ", "))
	}
}
