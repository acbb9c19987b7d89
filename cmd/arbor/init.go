package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .arbor/config.yaml in the workspace",
	Long: `Writes a default configuration. The store driver can be chosen with
--driver (file, sqlite, redis or memory).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		driver, _ := cmd.Flags().GetString("driver")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		force, _ := cmd.Flags().GetBool("force")

		path := filepath.Join(dir, config.DefaultPath)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.Default()
		cfg.Store.Driver = driver
		cfg.Store.RedisAddr = redisAddr
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized arbor workspace in %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("driver", config.DriverFile, "Store driver: file, sqlite, redis or memory")
	initCmd.Flags().String("redis-addr", "", "Redis address for the redis driver")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}
