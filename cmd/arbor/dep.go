package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependencies between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id> <depends-on-id>",
	Short: "Record that a task waits on another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			if err := app.Manager.AddDependency(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s\n", args[0], args[1])
			return nil
		})
	},
}

var depRmCmd = &cobra.Command{
	Use:   "rm <task-id> <depends-on-id>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			if err := app.Manager.RemoveDependency(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s no longer depends on %s\n", args[0], args[1])
			return nil
		})
	},
}

var depLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			deps, err := app.Manager.Dependencies(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range deps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", d.TaskID, d.DependsOnID)
			}
			return nil
		})
	},
}

func init() {
	depCmd.AddCommand(depAddCmd, depRmCmd, depLsCmd)
	rootCmd.AddCommand(depCmd)
}
