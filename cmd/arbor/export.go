package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
)

// exportDocument is what `arbor export` writes.
type exportDocument struct {
	Tasks        []domain.Task       `json:"tasks" yaml:"tasks"`
	Dependencies []domain.Dependency `json:"dependencies" yaml:"dependencies"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump tasks and dependencies as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withApp(cmd, func(app *cli.App) error {
			ctx := cmd.Context()
			tasks, err := app.Manager.Tasks(ctx)
			if err != nil {
				return err
			}
			deps, err := app.Manager.Dependencies(ctx)
			if err != nil {
				return err
			}
			doc := exportDocument{Tasks: tasks, Dependencies: deps}
			if doc.Tasks == nil {
				doc.Tasks = []domain.Task{}
			}
			if doc.Dependencies == nil {
				doc.Dependencies = []domain.Dependency{}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
}
