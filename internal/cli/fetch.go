package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/trending"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		languages   string
		limit       int
		timeframe   string
		noCache     bool
		interactive bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Aggregate trending repositories",
		Long: `Fetch trending repository listings for the requested languages and
time window, enrich each entry through the GitHub API, and print the
merged ranking. Set GITHUB_TOKEN (or GITHUB_PAT) to raise the API
quota from 60 to 5000 calls per hour.`,
		Example: `  trendtower fetch
  trendtower fetch --languages python,go --limit 20
  trendtower fetch -l rust -t weekly --json
  trendtower fetch -l go,typescript --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := trending.NewRequest(splitLanguages(languages), limit, timeframe)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			svc := c.newService(githubToken(), noCache)
			prog := newProgress(c.Logger)
			result, err := svc.FetchTrending(cmd.Context(), req)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			prog.done(fmt.Sprintf("Aggregated %d repositories", result.Retrieved))

			if asJSON {
				return printResultJSON(result)
			}
			if interactive {
				return browseResult(result)
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&languages, "languages", "l", "", "comma-separated languages (default: all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "total number of entries (default 10, max 100)")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "time window: daily (default), weekly, monthly")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse results in an interactive table")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

// splitLanguages turns the --languages flag into a raw language list.
func splitLanguages(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printResultJSON(result *trending.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printResult(result *trending.Result) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Trending repositories (%s)", result.Timeframe)))
	printDetail("languages: %s", strings.Join(result.Languages, ", "))
	fmt.Println()

	for _, entry := range result.Entries {
		fmt.Println(StyleNumber.Render(fmt.Sprintf("%3d.", entry.Rank)) +
			" " + StyleValue.Render(entry.FullName) +
			" " + StyleDim.Render(entryStats(entry)))
		if entry.Description != "" {
			printDetail("%s", entry.Description)
		}
	}

	if len(result.Partial) > 0 {
		fmt.Println()
		printWarning("no listing available for: %s", strings.Join(result.Partial, ", "))
	}
	if result.Retrieved < result.RequestedLimit {
		printDetail("%d of %d requested entries available", result.Retrieved, result.RequestedLimit)
	}
}

// entryStats renders the one-line stats suffix for an entry.
func entryStats(entry trending.Entry) string {
	parts := []string{fmt.Sprintf("★ %d", entry.StarsTotal)}
	if entry.StarsInPeriod != nil {
		parts = append(parts, fmt.Sprintf("+%d %s", *entry.StarsInPeriod, entry.PeriodLabel))
	}
	if lang := entry.PrimaryLanguage; lang != "" {
		parts = append(parts, lang)
	}
	if !entry.DetailEnriched {
		parts = append(parts, "listing only")
	}
	return strings.Join(parts, " · ")
}
