package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/report"
)

func contextCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		element   string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Generate per-element context from the graph",
		Long: `Combine the element index with the dependency graph into a context
document describing each element's imports, exports, consumers, and
dependencies, written as both JSON and Markdown.

Examples:
  coderef context                      # Write context.json and context.md
  coderef context --element useAuth    # Print context for one element
  coderef context --element src/api.ts # Elements can be looked up by file`,
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

			doc := report.NewContext(idx, nil, time.Now())

			if element != "" {
				filtered := doc.Filter(element)
				if len(filtered.Elements) == 0 {
					return fmt.Errorf("element not found: %s", element)
				}
				if jsonOut {
					data, err := filtered.Encode()
					if err != nil {
						return err
					}
					fmt.Print(string(data))
					return nil
				}
				fmt.Print(string(filtered.Markdown()))
				return nil
			}

			if jsonOut {
				data, err := doc.Encode()
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}

			jsonPath := filepath.Join(root, outDir, "context.json")
			mdPath := filepath.Join(root, outDir, "context.md")
			if err := doc.WriteFile(jsonPath); err != nil {
				return err
			}
			if err := doc.WriteMarkdown(mdPath); err != nil {
				return err
			}

			fmt.Printf("Context for %d elements\n", len(doc.Elements))
			fmt.Printf("Written to %s\n", jsonPath)
			fmt.Printf("       and %s\n", mdPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().StringVarP(&element, "element", "e", "", "Show context for a single element by name or file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of writing files")

	return cmd
}
