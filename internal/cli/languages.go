package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trendtower/pkg/trending"
)

// languagesCommand creates the languages command.
func (c *CLI) languagesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "Print the supported language catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog := trending.Languages()

			if asJSON {
				data, err := json.MarshalIndent(catalog, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(StyleTitle.Render("Supported languages"))
			for _, info := range catalog.Languages {
				printKeyValue(info.ID, info.DisplayName)
			}
			fmt.Println()
			printDetail("default: %s, limit %d, timeframe %s",
				catalog.Default, catalog.DefaultLimit, catalog.DefaultTimeframe)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}
