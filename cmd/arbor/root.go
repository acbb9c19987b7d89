package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor keeps a hierarchical task tree with dotted-decimal ids",
	Long: `Arbor manages a tree of tasks addressed by ids like 1, 1.2 and 1.2.3.
Inserting, deleting and moving tasks renumbers the affected subtrees so that
sibling ids always stay gapless.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Workspace directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <dir>/.arbor/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// openApp builds the workspace for cmd from the persistent flags.
func openApp(cmd *cobra.Command, quiet bool) (*cli.App, error) {
	dir, _ := cmd.Flags().GetString("dir")
	cfgPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Open(cli.Options{Dir: dir, ConfigPath: cfgPath, Debug: debug, Quiet: quiet && !debug})
}

// withApp opens the workspace, runs fn and closes it.
func withApp(cmd *cobra.Command, fn func(app *cli.App) error) error {
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
