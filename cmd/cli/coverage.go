package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/report"
)

func coverageCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		threshold float64
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report how completely the codebase was indexed",
		Long: `Report how completely the scan covered the codebase: file and export
coverage, relationship coverage, autofill rate, and orphaned elements
that nothing references.

Examples:
  coderef coverage                 # Print the coverage summary
  coderef coverage --threshold 60  # Fail when autofill rate is below 60%
  coderef coverage --json          # Emit the coverage report as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := validateDirPath(path)
			if err != nil {
				return err
			}
			outDir := resolveOutputDir(root, outputDir)

			idx, err := loadIndex(root, outDir)
			if err != nil {
				return err
			}

			rep := report.Coverage(idx, idx.BuildGraph(), time.Now())

			reportPath := filepath.Join(root, outDir, "reports", "coverage.json")
			if err := rep.WriteFile(reportPath); err != nil {
				return err
			}

			if jsonOut {
				data, err := rep.Encode()
				if err != nil {
					return err
				}
				fmt.Print(string(data))
			} else {
				printCoverage(rep, reportPath)
			}

			if threshold > 0 && rep.AutoFillRate < threshold {
				return fmt.Errorf("autofill rate %.1f%% below threshold %.1f%%", rep.AutoFillRate, threshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum autofill rate, 0 disables the check")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the coverage report as JSON")

	return cmd
}

func printCoverage(rep *report.CoverageReport, reportPath string) {
	fmt.Printf("Files:     %d/%d with elements (%.1f%%)\n",
		rep.FilesWithElements, rep.TotalFiles, rep.FileCoverage)
	fmt.Printf("Exports:   %d/%d elements exported (%.1f%%)\n",
		rep.ExportedElements, rep.TotalElements, rep.ExportCoverage)
	fmt.Printf("Relations: %.1f%% of elements with calls or imports\n", rep.RelationCoverage)
	fmt.Printf("Autofill:  %.1f%%\n", rep.AutoFillRate)
	fmt.Printf("Entry points: %d\n", rep.EntryPoints.Total)

	if rep.OrphanCount > 0 {
		fmt.Printf("Orphans:   %d elements nothing references\n", rep.OrphanCount)
		for i, o := range rep.Orphans {
			if i == 5 {
				fmt.Printf("    ... and %d more\n", rep.OrphanCount-5)
				break
			}
			fmt.Printf("    %s (%s:%d)\n", o.Name, o.File, o.Line)
		}
	}

	fmt.Printf("\nReport written to %s\n", reportPath)
}
