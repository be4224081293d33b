package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/exclude"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules <file>",
	Short: "Validate and display an exclusion rules file",
	Long: `Rules parses an exclusion rules file, reports problems, and prints
the rule list in evaluation order.

Rules are evaluated first-match-wins. A rule with treat_as_valid: true
turns matching links into WORKING results; otherwise matches are
reported SKIPPED.

Example:
  linksentry rules exclusions.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := exclude.LoadRules(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%d rule(s), evaluated in order:\n\n", len(rules))
		for i, rule := range rules {
			verdict := "skip"
			if rule.TreatAsValid {
				verdict = "treat as valid"
			}
			fmt.Printf("%3d. [%s] %q -> %s", i+1, rule.MatchType, rule.Pattern, verdict)
			if rule.Reason != "" {
				fmt.Printf(" (%s)", rule.Reason)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
