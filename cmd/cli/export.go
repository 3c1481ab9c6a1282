package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the dependency graph from the index",
		Long: `Build the dependency graph from a previously written element index and
write it to graph.json and exports/graph.json.

Examples:
  coderef export                 # Export the graph for the current directory
  coderef export -p ./webapp     # Export for a specific project
  coderef export --json          # Print the graph document to stdout`,
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

			graph := idx.BuildGraph()
			doc := graph.Snapshot(idx.ProjectPath, time.Now())

			if jsonOut {
				data, err := doc.Encode()
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}

			graphPath := filepath.Join(root, outDir, "graph.json")
			exportPath := filepath.Join(root, outDir, "exports", "graph.json")
			if err := doc.WriteFiles(graphPath, exportPath); err != nil {
				return err
			}

			fmt.Printf("Graph: %d nodes, %d edges (autofill %.1f%%)\n",
				graph.NodeCount(), graph.EdgeCount(), graph.AverageAutoFill())
			fmt.Printf("Written to %s\n", graphPath)
			fmt.Printf("       and %s\n", exportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the graph document instead of writing files")

	return cmd
}
