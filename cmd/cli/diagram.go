package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/render"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func diagramCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		format    string
		title     string
		direction string
		maxNodes  int
		edges     []string
		toStdout  bool
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Render the dependency graph as a diagram",
		Long: `Render the dependency graph in Mermaid or Graphviz DOT format and write
it under the diagrams directory.

Examples:
  coderef diagram                          # Mermaid diagram of the full graph
  coderef diagram --format dot             # Graphviz DOT output
  coderef diagram --edges imports          # Only import edges
  coderef diagram --max-nodes 50 --stdout  # Print a trimmed diagram`,
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

			edgeTypes, err := parseEdgeTypes(edges)
			if err != nil {
				return err
			}

			renderer, err := render.NewRegistry().Get(format)
			if err != nil {
				return err
			}

			if title == "" {
				title = filepath.Base(idx.ProjectPath)
			}
			out, err := renderer.Render(idx.BuildGraph(), render.Options{
				Title:     title,
				Edges:     edgeTypes,
				MaxNodes:  maxNodes,
				Direction: direction,
			})
			if err != nil {
				return fmt.Errorf("failed to render diagram: %w", err)
			}

			if toStdout {
				fmt.Print(out)
				return nil
			}

			diagramPath := filepath.Join(root, outDir, "diagrams", "graph"+renderer.FileExtension())
			if err := os.MkdirAll(filepath.Dir(diagramPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(diagramPath, []byte(out), 0o644); err != nil {
				return err
			}
			fmt.Printf("Diagram written to %s\n", diagramPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Diagram format (mermaid, dot)")
	cmd.Flags().StringVar(&title, "title", "", "Diagram title (default project directory name)")
	cmd.Flags().StringVar(&direction, "direction", "", "Layout direction (LR, TD)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "Limit the diagram to the first N nodes, 0 = all")
	cmd.Flags().StringSliceVar(&edges, "edges", nil, "Edge types to include (imports, reexports, calls, depends-on)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the diagram instead of writing a file")

	return cmd
}

var knownEdgeTypes = map[model.EdgeType]bool{
	model.EdgeImports:   true,
	model.EdgeReexports: true,
	model.EdgeCalls:     true,
	model.EdgeDependsOn: true,
}

func parseEdgeTypes(names []string) ([]model.EdgeType, error) {
	var types []model.EdgeType
	for _, name := range names {
		et := model.EdgeType(name)
		if !knownEdgeTypes[et] {
			return nil, fmt.Errorf("unknown edge type: %s (valid: imports, reexports, calls, depends-on)", name)
		}
		types = append(types, et)
	}
	return types, nil
}
