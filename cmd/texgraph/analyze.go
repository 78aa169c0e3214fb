package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/texgraph/internal/analysis"
	"github.com/dgallion1/texgraph/internal/category"
	"github.com/spf13/cobra"
)

var (
	flagChapters   []string
	flagKinds      []string
	flagNonreduced bool
	flagCategories string
	flagOut        string
	flagReport     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <root.tex>",
	Short: "Analyze a project and write graph artifacts",
	Long: `Analyze expands the project rooted at the given main file, builds the
statement dependency graph, and writes <out>.dot and <out>.tex next to the
root file. Edges are transitively reduced unless --nonreduced is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analysis.Run(analysis.Options{
			Root:         args[0],
			Chapters:     flagChapters,
			Kinds:        flagKinds,
			Reduce:       !flagNonreduced,
			CategoryFile: flagCategories,
		})
		if err != nil {
			return err
		}

		outDir := filepath.Dir(args[0])
		dotPath := filepath.Join(outDir, flagOut+".dot")
		tikzPath := filepath.Join(outDir, flagOut+".tex")
		if err := os.WriteFile(dotPath, []byte(res.DOT), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(tikzPath, []byte(res.TikZ), 0o644); err != nil {
			return err
		}
		if flagReport {
			reportPath := filepath.Join(outDir, flagOut+".md")
			if err := os.WriteFile(reportPath, []byte(res.Report), 0o644); err != nil {
				return err
			}
			fmt.Println("report:", reportPath)
		}

		counts := res.CountsByKind()
		for _, kind := range category.Order {
			if counts[kind] > 0 {
				fmt.Printf("%s: %d\n", kind, counts[kind])
			}
		}
		fmt.Printf("edges: %d\n", len(res.Graph.Edges))
		for _, cycle := range res.Cycles {
			fmt.Fprintln(os.Stderr, "warning: dependency cycle:", cycle)
		}
		fmt.Println("dot:", dotPath)
		fmt.Println("tikz:", tikzPath)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&flagChapters, "chapters", nil, "chapter ordinals or titles to scan (default: all)")
	analyzeCmd.Flags().StringSliceVar(&flagKinds, "kinds", nil, "categories to include (default: all 8)")
	analyzeCmd.Flags().BoolVar(&flagNonreduced, "nonreduced", false, "keep all edges, skip transitive reduction")
	analyzeCmd.Flags().StringVar(&flagCategories, "categories", "", "TOML file overriding the category table")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "dep_graph", "base name for output files")
	analyzeCmd.Flags().BoolVar(&flagReport, "report", false, "also write a Markdown run report")
}
