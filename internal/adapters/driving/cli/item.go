package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

var (
	itemJSON bool
	itemRaw  bool
)

var itemCmd = &cobra.Command{
	Use:   "item <number>",
	Short: "Show one schedule item",
	Long: `Looks up a schedule item by item number and prints its details.

Terminal output is rendered as formatted markdown. When piped, or with
--raw, the markdown is printed as is.`,
	Args: cobra.ExactArgs(1),
	RunE: runItem,
}

func init() {
	itemCmd.Flags().BoolVar(&itemJSON, "json", false, "output the item as JSON")
	itemCmd.Flags().BoolVar(&itemRaw, "raw", false, "output raw markdown without rendering")
	rootCmd.AddCommand(itemCmd)
}

func runItem(cmd *cobra.Command, args []string) error {
	if itemService == nil {
		return errNoItemService
	}

	num := strings.TrimSpace(args[0])
	item, err := itemService.Get(cmd.Context(), num)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("item %s not found", num)
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if itemJSON {
		return outputJSON(cmd, item)
	}

	doc := itemMarkdown(item)
	if !itemRaw && term.IsTerminal(int(os.Stdout.Fd())) {
		rendered, renderErr := glamour.Render(doc, "dark")
		if renderErr == nil {
			cmd.Print(rendered)
			return nil
		}
	}
	cmd.Print(doc)
	return nil
}

// itemMarkdown renders an item as a markdown detail panel.
func itemMarkdown(item *domain.ScheduleItem) string {
	var b strings.Builder

	title := "Item " + item.ItemNum.String()
	if item.IsNew() {
		title += " (New)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if alias := item.ItemNumAlias.String(); alias != "" && alias != item.ItemNum.String() {
		fmt.Fprintf(&b, "Also known as **%s**\n\n", alias)
	}

	fmt.Fprintf(&b, "**Schedule fee:** %s\n\n", item.ScheduleFee)

	b.WriteString("## Description\n\n")
	b.WriteString(strings.TrimSpace(item.Description))
	b.WriteString("\n\n")
	if summary := strings.TrimSpace(item.HumanReadableDescription); summary != "" {
		b.WriteString("> " + summary + "\n\n")
	}

	b.WriteString("## Classification\n\n")
	writeRow(&b, "Category", codeLabel(item.Category.String(), item.CategoryDescription))
	writeRow(&b, "Group", codeLabel(item.Group.String(), item.GroupDescription))
	writeRow(&b, "Sub-group", item.SubGroup.String())
	writeRow(&b, "Sub-heading", item.SubHeading.String())
	writeRow(&b, "Item type", item.ItemType)
	b.WriteString("\n")

	b.WriteString("## Fee Information\n\n")
	b.WriteString("| | Amount |\n|---|---|\n")
	fmt.Fprintf(&b, "| Schedule fee | %s |\n", item.ScheduleFee)
	fmt.Fprintf(&b, "| Benefit 75%% | %s |\n", item.Benefit75)
	fmt.Fprintf(&b, "| Benefit 85%% | %s |\n", item.Benefit85)
	fmt.Fprintf(&b, "| Benefit 100%% | %s |\n", item.Benefit100)
	b.WriteString("\n")
	writeRow(&b, "Fee type", item.FeeType)
	writeRow(&b, "Benefit type", item.BenefitType)
	writeRow(&b, "Provider type", item.ProviderType)
	b.WriteString("\n")

	b.WriteString("## Dates\n\n")
	writeRow(&b, "Item start", item.ItemStartDate)
	writeRow(&b, "Item end", item.ItemEndDate)
	writeRow(&b, "Fee start", item.FeeStartDate)

	return b.String()
}

// writeRow writes a "- **label:** value" line when value is set.
func writeRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, value)
}

// codeLabel renders "code - description", or whichever part is set.
func codeLabel(code, description string) string {
	switch {
	case code == "":
		return description
	case description == "":
		return code
	default:
		return code + " - " + description
	}
}
