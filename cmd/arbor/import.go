package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	arborloam "github.com/aretw0/arbor/pkg/adapters/loam"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory of markdown tasks",
	Long: `Reads every markdown file in dir (frontmatter: id, parent, title, status)
and inserts the resulting tree after the existing roots. Imported ids are
renumbered to fit the workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := arborloam.Open(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *cli.App) error {
			n, err := app.Manager.Import(cmd.Context(), src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s) from %s\n", n, args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
