package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored tasks against the hierarchy invariants",
	Long: `Reports malformed ids, duplicates, ids that do not extend their parent's id,
gaps in sibling numbering and orphans. Run 'arbor renumber' to repair gaps.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			violations, err := app.Manager.Check(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintln(out, "Tree is valid! ✅")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "%s %s: %s\n", v.Kind, v.TaskID, v.Message)
			}
			return fmt.Errorf("%d violation(s) found", len(violations))
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
