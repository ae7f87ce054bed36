package client

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mwantia/mugenvault/pkg/rules"
	"github.com/spf13/cobra"
)

func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule vocabulary",
		Long:  "Shows which fields smart collection rules can filter on and which comparisons each field allows.",
	}

	cmd.AddCommand(NewRulesFieldsCommand())

	return cmd
}

func NewRulesFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List filterable fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tTYPE\tAPPLIES TO\tCOMPARISONS")

			for _, field := range rules.Fields() {
				var comparisons []string
				for _, c := range rules.LegalComparisons(field) {
					comparisons = append(comparisons, c.String())
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", field, field.ValueType(), field.Kinds(), strings.Join(comparisons, ", "))
			}
			return w.Flush()
		},
	}

	return cmd
}

// parseRule splits a textual rule of the form "<field> <comparison> [value]".
// The value keeps any inner whitespace.
func parseRule(text string) (field, comparison, value string, err error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("rule '%s' must have the form '<field> <comparison> [value]'", text)
	}

	field, comparison = parts[0], parts[1]

	rest := strings.TrimSpace(text)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, field))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, comparison))

	return field, comparison, rest, nil
}
