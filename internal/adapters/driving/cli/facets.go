package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

var (
	facetsFlags intentFlags
	facetsJSON  bool
)

var facetsCmd = &cobra.Command{
	Use:   "facets [query]",
	Short: "Show facet counts for a search",
	Long: `Runs a search and prints the facet values with their counts.

Selected values (given with --facet) are marked with [x]. Use the values
shown here with 'mbsearch search --facet Field=Value'.`,
	RunE: runFacets,
}

func init() {
	facetsFlags.register(facetsCmd.Flags(), false)
	facetsCmd.Flags().BoolVar(&facetsJSON, "json", false, "output facets as JSON")
	rootCmd.AddCommand(facetsCmd)
}

func runFacets(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNoSearchService
	}

	intent, err := facetsFlags.intent(args)
	if err != nil {
		return err
	}

	page, err := searchService.Search(cmd.Context(), intent)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if facetsJSON {
		return outputJSON(cmd, page.Facets)
	}
	outputFacets(cmd, page.Facets)
	return nil
}

func outputFacets(cmd *cobra.Command, buckets []domain.FacetBucket) {
	if len(buckets) == 0 {
		cmd.Println("No facets returned.")
		return
	}

	p := message.NewPrinter(language.English)
	for _, bucket := range buckets {
		cmd.Printf("%s (%s)\n", bucket.Label, bucket.Name)
		if len(bucket.Values) == 0 {
			cmd.Println("  (none)")
		}
		for _, v := range bucket.Values {
			mark := "[ ]"
			if v.Selected {
				mark = "[x]"
			}
			cmd.Println(p.Sprintf("  %s %s (%d)", mark, v.Value, v.Count))
		}
		cmd.Println()
	}
}
