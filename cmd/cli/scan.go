package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/detect"
	"github.com/srwlli/dashboard-sub004/internal/patterns"
	"github.com/srwlli/dashboard-sub004/internal/report"
	"github.com/srwlli/dashboard-sub004/internal/scanner"
)

func scanCmd() *cobra.Command {
	var (
		path      string
		languages []string
		include   []string
		exclude   []string
		outputDir string
		parallel  bool
		workers   int
		noAST     bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a codebase and build the element index",
		Long: `Scan source files for functions, classes, components, and hooks, detect
their calls, imports, and exports, and write the element index.

Examples:
  coderef scan                          # Scan the current directory
  coderef scan -p ./webapp              # Scan a specific directory
  coderef scan -l ts -l tsx             # Restrict to TypeScript
  coderef scan --exclude '**/legacy/**' # Add an exclusion pattern
  coderef scan --parallel --workers 8   # Scan file batches concurrently`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			root, err := validateDirPath(path)
			if err != nil {
				return err
			}

			cfg, err := config.LoadProjectConfig(root)
			if err != nil {
				return fmt.Errorf("failed to load project config: %w", err)
			}
			cfg.Merge(&config.ProjectConfig{
				Languages: languages,
				Include:   include,
				Exclude:   exclude,
				Scan:      config.ScanConfig{Parallel: parallel, Workers: workers},
				Output:    config.OutputConfig{Dir: outputDir},
			})
			if noAST {
				cfg.Scan.AST = false
			}

			s := scanner.New(patterns.NewRegistry())
			result, err := s.Scan(ctx, root, cfg.Languages, scanOptions(cfg))
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			ann := detect.NewAnnotator(root).Annotate(ctx, result.Files, result.Elements)
			doc := report.NewIndex(root, cfg.Languages, result, ann, time.Now())

			indexPath := filepath.Join(root, cfg.Output.Dir, "index.json")
			if err := doc.WriteFile(indexPath); err != nil {
				return err
			}

			if jsonOut {
				data, err := doc.Encode()
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}

			printScanSummary(doc, indexPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Language selectors to scan (ts, tsx, js, jsx, py)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Glob patterns to restrict the scan to")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Glob patterns to skip (replaces the config excludes)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Scan file batches concurrently")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count for parallel scans (0 = CPU count)")
	cmd.Flags().BoolVar(&noAST, "no-ast", false, "Skip tree-sitter parsing, regex extraction only")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the index as JSON instead of a summary")

	return cmd
}

// scanOptions translates the merged project config into scanner options.
func scanOptions(cfg *config.ProjectConfig) scanner.Options {
	opts := scanner.DefaultOptions()
	opts.Include = cfg.Include
	if len(cfg.Exclude) > 0 {
		opts.Exclude = cfg.Exclude
	}
	opts.Recursive = cfg.Scan.Recursive
	opts.UseAST = cfg.Scan.AST
	opts.RegexFallback = cfg.Scan.RegexFallback
	opts.Parallel = cfg.Scan.Parallel
	opts.Workers = cfg.Scan.Workers
	return opts
}

func printScanSummary(doc *report.IndexDocument, indexPath string) {
	fmt.Printf("Scanned %d/%d files in %dms\n",
		doc.Stats.ScannedFiles, doc.Stats.TotalFiles, doc.Stats.DurationMs)
	fmt.Printf("  Elements: %d\n", doc.Stats.TotalElements)

	byType := make(map[string]int)
	for _, el := range doc.Elements {
		byType[string(el.Type)]++
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("    %-10s %d\n", t, byType[t])
	}

	if len(doc.Errors) > 0 {
		fmt.Printf("  Errors:   %d\n", len(doc.Errors))
		for i, e := range doc.Errors {
			if i == 5 {
				fmt.Printf("    ... and %d more\n", len(doc.Errors)-5)
				break
			}
			fmt.Printf("    %s: %s\n", e.Path, e.Message)
		}
	}

	fmt.Printf("\nIndex written to %s\n", indexPath)
}
