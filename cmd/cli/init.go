package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/config"
)

func initCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap the artifact directory and project config",
		Long: `Create the artifact directory tree and write a default .coderef.yaml
project config.

Examples:
  coderef init               # Initialize the current directory
  coderef init -p ./webapp   # Initialize a specific project
  coderef init --force       # Overwrite an existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := validateDirPath(path)
			if err != nil {
				return err
			}

			cfg := config.DefaultProjectConfig()
			for _, dir := range []string{"", "exports", "reports", "diagrams"} {
				p := filepath.Join(root, cfg.Output.Dir, dir)
				if err := os.MkdirAll(p, 0o755); err != nil {
					return fmt.Errorf("failed to create %s: %w", p, err)
				}
			}
			fmt.Printf("Created %s/\n", filepath.Join(root, cfg.Output.Dir))

			if projectConfigExists(root) && !force {
				fmt.Println("Config already exists, skipping (use --force to overwrite)")
				return nil
			}
			if err := config.SaveProjectConfig(root, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("Wrote %s\n", filepath.Join(root, ".coderef.yaml"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func projectConfigExists(root string) bool {
	for _, name := range []string{".coderef.yaml", ".coderef.yml"} {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}
