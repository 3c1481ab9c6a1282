package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/detect"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func entrypointsCmd() *cobra.Command {
	var (
		path      string
		outputDir string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:     "entrypoints",
		Aliases: []string{"entry"},
		Short:   "Detect likely entry points in the scanned code",
		Long: `Detect likely entry points among the scanned elements using naming and
file-location heuristics (main, handlers, commands, CLI files).

Examples:
  coderef entrypoints              # List entry points for the current project
  coderef entrypoints --json       # Emit entry points and stats as JSON`,
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

			entries, stats := detect.DetectEntryPoints(idx.Elements)

			if jsonOut {
				out := struct {
					EntryPoints []model.ElementData    `json:"entryPoints"`
					Stats       detect.EntryPointStats `json:"stats"`
				}{EntryPoints: entries, Stats: stats}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Println("No entry points detected")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tFILE\tLINE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Name, e.Type, e.File, e.Line)
			}
			w.Flush()

			fmt.Printf("\n%d entry points", stats.Total)
			methods := make([]string, 0, len(stats.ByMethod))
			for m := range stats.ByMethod {
				methods = append(methods, m)
			}
			sort.Strings(methods)
			for _, m := range methods {
				fmt.Printf(", %d by %s", stats.ByMethod[m], m)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Path to the project root")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Artifact directory (default .coderef)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit entry points as JSON")

	return cmd
}
