package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the task tree as a Mermaid or Graphviz diagram",
	Long: `Prints the hierarchy (solid edges) and dependencies (dotted edges).
Use --focus to highlight one task in Mermaid output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		focus, _ := cmd.Flags().GetString("focus")
		return withApp(cmd, func(app *cli.App) error {
			ctx := cmd.Context()
			forest, _, err := app.Manager.Forest(ctx)
			if err != nil {
				return err
			}
			deps, err := app.Manager.Dependencies(ctx)
			if err != nil {
				return err
			}

			switch format {
			case "mermaid":
				var overlay *graph.Overlay
				if focus != "" {
					overlay = &graph.Overlay{Focus: focus}
				}
				fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(forest, deps, overlay))
			case "dot":
				fmt.Fprint(cmd.OutOrStdout(), graph.GenerateDOT(forest, deps))
			default:
				return fmt.Errorf("unknown format %q (mermaid or dot)", format)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or dot")
	graphCmd.Flags().String("focus", "", "Task id to highlight")
}
