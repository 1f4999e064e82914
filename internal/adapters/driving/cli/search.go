package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

var (
	searchFlags intentFlags
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search schedule items",
	Long: `Searches the MBS index and prints one page of results.

The query may be empty to list every item. Quoted phrases, -exclusions
and other simple query syntax pass through unchanged.

Examples:
  mbsearch search knee arthroscopy
  mbsearch search --facet CategoryDescription="Therapeutic Procedures" --sort "ScheduleFee desc"
  mbsearch search --fuzzy 2 colonoscopy
  mbsearch search --mode semantic "consultation longer than 40 minutes"`,
	RunE: runSearch,
}

func init() {
	searchFlags.register(searchCmd.Flags(), true)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the page as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNoSearchService
	}

	intent, err := searchFlags.intent(args)
	if err != nil {
		return err
	}

	page, err := searchService.Search(cmd.Context(), intent)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, page)
	}
	return outputSearchTable(cmd, page)
}

// outputJSON prints v as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, page *domain.SearchPage) error {
	if len(page.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	p := message.NewPrinter(language.English)
	first, last := page.Range()
	cmd.Println(p.Sprintf("Showing %d-%d of %d results (page %d of %d)",
		first, last, page.Count, page.Page, page.TotalPages()))
	cmd.Println()

	for _, answer := range page.Answers {
		cmd.Printf("Answer (%.0f%%): %s\n\n", answer.Score*100, answer.Text)
	}

	for i := range page.Results {
		r := &page.Results[i]
		header := fmt.Sprintf("  [%s] %s", r.ItemNum, r.ScheduleFee)
		if r.IsNew() {
			header += "  NEW"
		}
		cmd.Println(header)
		if r.CategoryDescription != "" {
			cmd.Printf("      %s\n", classification(r.ScheduleItem))
		}
		text := r.Caption
		if text == "" {
			text = r.Description
		}
		if text != "" {
			cmd.Printf("      %s\n", strings.TrimSpace(text))
		}
		cmd.Println()
	}
	return nil
}

// classification renders "Category > Group" for an item.
func classification(item domain.ScheduleItem) string {
	if item.GroupDescription == "" {
		return item.CategoryDescription
	}
	return item.CategoryDescription + " > " + item.GroupDescription
}
