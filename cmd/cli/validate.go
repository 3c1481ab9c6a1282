package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/report"
)

func validateCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check index and graph consistency",
		Long: `Check the element index and dependency graph for consistency problems:
dangling edges, duplicate elements, missing files, and unresolved calls.
Exits non-zero when errors are found, making it suitable for CI.

Examples:
  coderef validate               # Validate the current project's artifacts
  coderef validate --json        # Emit the validation report as JSON`,
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

			rep := report.Validate(idx, idx.BuildGraph(), time.Now())

			reportPath := filepath.Join(root, outDir, "reports", "validation.json")
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
				printValidation(rep, reportPath)
			}

			if !rep.Valid {
				return fmt.Errorf("validation failed: %d errors", rep.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the validation report as JSON")

	return cmd
}

func printValidation(rep *report.ValidationReport, reportPath string) {
	if rep.Valid {
		fmt.Printf("✅ Index is consistent (%d warnings)\n", rep.Warnings)
	} else {
		fmt.Printf("❌ %d errors, %d warnings\n", rep.Errors, rep.Warnings)
	}
	for _, issue := range rep.Issues {
		loc := issue.File
		if loc == "" {
			loc = issue.NodeID
		}
		fmt.Printf("  [%s] %s: %s", issue.Severity, issue.Code, issue.Message)
		if loc != "" {
			fmt.Printf(" (%s)", loc)
		}
		fmt.Println()
	}
	fmt.Printf("\nReport written to %s\n", reportPath)
}
