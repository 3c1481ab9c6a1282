package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/report"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "coderef",
		Short:   "coderef - code element scanning and dependency analysis",
		Long:    `coderef scans a codebase for functions, classes, components, and hooks, detects the relationships between them, and generates the index, graph, context, and report artifacts under .coderef/.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(contextCmd())
	rootCmd.AddCommand(entrypointsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(diagramCmd())
	rootCmd.AddCommand(jobCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("coderef %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// validateDirPath resolves a directory argument to an absolute path
func validateDirPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}

	return abs, nil
}

// resolveOutputDir picks the artifact directory: the flag wins, then the
// project config, then the .coderef default.
func resolveOutputDir(root, flag string) string {
	if flag != "" {
		return flag
	}
	cfg, err := config.LoadProjectConfig(root)
	if err != nil || cfg.Output.Dir == "" {
		return ".coderef"
	}
	return cfg.Output.Dir
}

// loadIndex reads the element index a previous scan wrote.
func loadIndex(root, outDir string) (*report.IndexDocument, error) {
	path := filepath.Join(root, outDir, "index.json")
	doc, err := report.LoadIndex(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no index found at %s - run 'coderef scan' first", path)
		}
		return nil, err
	}
	return doc, nil
}
